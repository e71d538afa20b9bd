package webui

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"imagesearch/common/client"
	"imagesearch/common/models"
	"imagesearch/common/session"
)

const (
	// CookieName holds the browser's session id
	CookieName = "imagesearch_session"

	// MaxUploadBytes bounds the size of a selected image
	MaxUploadBytes = 10 << 20
)

// Server renders the image search page and runs one session per browser
type Server struct {
	backend  session.Backend
	sessions *Store
	logger   hclog.Logger
}

// NewServer creates the web front end on top of backend
func NewServer(backend session.Backend, sessions *Store, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{backend: backend, sessions: sessions, logger: logger}
}

// NewRouter builds the web client's routes
func (s *Server) NewRouter() *gin.Engine {
	router := gin.Default()
	router.SetHTMLTemplate(pageTemplate)
	router.MaxMultipartMemory = MaxUploadBytes

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": "web-client",
		})
	})

	router.GET("/", s.handleIndex)
	router.POST("/upload", s.handleUpload)
	router.POST("/classify", s.handleClassify)
	router.POST("/similar", s.handleSimilar)
	router.POST("/search", s.handleSearch)
	return router
}

// currentSession returns the caller's session, creating one on first visit
func (s *Server) currentSession(c *gin.Context) *Session {
	if id, err := c.Cookie(CookieName); err == nil {
		if sess, ok := s.sessions.Get(id); ok {
			return sess
		}
	}

	id := uuid.NewString()
	inbox := &session.Inbox{}
	sess := &Session{
		App:   session.NewApp(s.backend, inbox, s.logger.With("session", id)),
		Inbox: inbox,
	}
	s.sessions.Put(id, sess)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, id, 0, "/", "", false, true)
	return sess
}

func (s *Server) handleIndex(c *gin.Context) {
	sess := s.currentSession(c)
	c.HTML(http.StatusOK, "index", render(sess.App.State(), sess.Inbox.Drain()))
}

// selectUpload stores the posted image, if any, as the selected file
func (s *Server) selectUpload(c *gin.Context, sess *Session) error {
	// Leave room for the form's other parts and boundaries
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+1<<20)

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if header.Size > MaxUploadBytes {
		return fmt.Errorf("upload of %d bytes exceeds the %d byte limit", header.Size, MaxUploadBytes)
	}

	f, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	sess.App.SelectFile(client.Upload{Name: header.Filename, ContentType: contentType, Data: data})
	return nil
}

func (s *Server) handleUpload(c *gin.Context) {
	sess := s.currentSession(c)
	if err := s.selectUpload(c, sess); err != nil {
		s.logger.Warn("upload rejected", "error", err)
		sess.Inbox.Alert("Could not read the selected image")
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleClassify(c *gin.Context) {
	sess := s.currentSession(c)
	if err := s.selectUpload(c, sess); err != nil {
		s.logger.Warn("upload rejected", "error", err)
		sess.Inbox.Alert("Could not read the selected image")
	} else {
		sess.App.ClassifyImage(c.Request.Context())
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleSimilar(c *gin.Context) {
	sess := s.currentSession(c)
	if err := s.selectUpload(c, sess); err != nil {
		s.logger.Warn("upload rejected", "error", err)
		sess.Inbox.Alert("Could not read the selected image")
	} else {
		sess.App.SearchSimilarImages(c.Request.Context())
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleSearch(c *gin.Context) {
	sess := s.currentSession(c)
	sess.App.SetTextQuery(c.PostForm("query"))
	sess.App.SearchImagesByText(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}

// render maps a session snapshot onto the page
func render(state session.State, alerts []string) PageData {
	data := PageData{
		Alerts:         alerts,
		Classification: state.ClassificationLines(),
		TextQuery:      state.TextQuery,
	}

	data.ClassificationShown = state.Classification != nil

	if f := state.SelectedFile; f != nil {
		data.FileName = f.Name
		data.Preview = template.URL("data:" + f.ContentType + ";base64," + base64.StdEncoding.EncodeToString(f.Data))
	}

	if state.Similar != nil {
		data.SimilarShown = true
		data.Category = state.Similar.Category
		data.Similar = thumbnails("Similar", state.Similar.SimilarImages)
	}

	if state.TextResults != nil {
		data.TextShown = true
		data.TextResults = thumbnails("Result", state.TextResults)
	}
	return data
}

func thumbnails(altPrefix string, images []models.ImageEntry) []Thumbnail {
	out := make([]Thumbnail, 0, len(images))
	for i, img := range images {
		out = append(out, Thumbnail{
			URL:         img.URL,
			Alt:         fmt.Sprintf("%s %d", altPrefix, i),
			Description: img.Description,
		})
	}
	return out
}

// Sweep periodically drops expired sessions until stop is closed
func (s *Server) Sweep(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			removed := s.sessions.removeExpired()
			if removed > 0 {
				s.logger.Debug("removed expired sessions", "count", removed)
			}
		case <-stop:
			return
		}
	}
}
