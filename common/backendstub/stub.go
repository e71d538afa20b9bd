package backendstub

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"imagesearch/common/models"
)

// Catalog is the canned data the stub answers with
type Catalog struct {
	Predictions []models.Prediction
	Category    string
	Similar     []models.ImageEntry
	// ByKeyword maps a lower-case keyword to the images a query containing it returns
	ByKeyword map[string][]models.ImageEntry
}

// DefaultCatalog returns a small catalog of placeholder images
func DefaultCatalog() Catalog {
	return Catalog{
		Predictions: []models.Prediction{
			{Category: "tabby cat", Confidence: 0.8731},
			{Category: "tiger cat", Confidence: 0.0912},
			{Category: "Egyptian cat", Confidence: 0.0204},
		},
		Category: "animals",
		Similar: []models.ImageEntry{
			{URL: "https://picsum.photos/id/40/300/300", Description: "Grey cat looking up"},
			{URL: "https://picsum.photos/id/219/300/300", Description: "Tiger resting in the grass"},
			{URL: "https://picsum.photos/id/237/300/300", Description: "Black puppy on wooden floor"},
		},
		ByKeyword: map[string][]models.ImageEntry{
			"mountain": {
				{URL: "https://picsum.photos/id/29/300/300", Description: "Mountain range at dawn"},
				{URL: "https://picsum.photos/id/1018/300/300", Description: "Snowy peaks above a valley"},
			},
			"sea": {
				{URL: "https://picsum.photos/id/1011/300/300", Description: "Canoe on a calm lake"},
				{URL: "https://picsum.photos/id/1053/300/300", Description: "Waves breaking on the shore"},
			},
			"city": {
				{URL: "https://picsum.photos/id/1031/300/300", Description: "Skyscrapers from below"},
			},
		},
	}
}

// Server answers the three backend endpoints with canned data
type Server struct {
	catalog Catalog
	apiKey  string
	delay   time.Duration
}

// New creates a stub. When apiKey is set, requests must carry it as a bearer token.
func New(catalog Catalog, apiKey string, delay time.Duration) *Server {
	return &Server{catalog: catalog, apiKey: apiKey, delay: delay}
}

// Register mounts the backend endpoints on the router
func (s *Server) Register(router gin.IRouter) {
	router.Use(s.requireKey)
	router.POST("/classify-image", s.handleClassify)
	router.POST("/search-similar-images", s.handleSimilar)
	router.GET("/search-images-by-text", s.handleTextSearch)
}

func (s *Server) requireKey(c *gin.Context) {
	if s.apiKey == "" {
		c.Next()
		return
	}
	if c.GetHeader("Authorization") != "Bearer "+s.apiKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid API key"})
		return
	}
	c.Next()
}

// requireImage rejects requests without a multipart image field
func requireImage(c *gin.Context) bool {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "multipart field 'image' is required"})
		return false
	}
	if file.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "uploaded image is empty"})
		return false
	}
	return true
}

func (s *Server) simulateWork() {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
}

// handleClassify returns the canned predictions
func (s *Server) handleClassify(c *gin.Context) {
	if !requireImage(c) {
		return
	}
	s.simulateWork()
	c.JSON(http.StatusOK, models.ClassificationResult{TopPredictions: s.catalog.Predictions})
}

// handleSimilar returns the canned category and gallery
func (s *Server) handleSimilar(c *gin.Context) {
	if !requireImage(c) {
		return
	}
	s.simulateWork()
	c.JSON(http.StatusOK, models.SimilarImagesResult{
		Category:      s.catalog.Category,
		SimilarImages: s.catalog.Similar,
	})
}

// handleTextSearch returns the images of every keyword found in the query
func (s *Server) handleTextSearch(c *gin.Context) {
	var q models.TextSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Query parameter 'query' is required"})
		return
	}
	s.simulateWork()

	query := strings.ToLower(q.Query)
	images := []models.ImageEntry{}
	for keyword, entries := range s.catalog.ByKeyword {
		if strings.Contains(query, keyword) {
			images = append(images, entries...)
		}
	}

	c.JSON(http.StatusOK, models.TextSearchResult{Images: images})
}
