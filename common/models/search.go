package models

import (
	"errors"
	"fmt"
)

// ImageEntry represents one image in a gallery of results
type ImageEntry struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// SimilarImagesResult represents the response of the search-similar-images endpoint
type SimilarImagesResult struct {
	Category      string       `json:"category"`
	SimilarImages []ImageEntry `json:"similar_images"`
}

// TextSearchResult represents the response of the search-images-by-text endpoint
type TextSearchResult struct {
	Images []ImageEntry `json:"images"`
}

// TextSearchQuery is the query string accepted by the search-images-by-text endpoint
type TextSearchQuery struct {
	Query string `form:"query" binding:"required"`
}

// Validate checks the result against the expected backend shape
func (r *SimilarImagesResult) Validate() error {
	if r.SimilarImages == nil {
		return errors.New("similar images result: missing similar_images")
	}
	return validateEntries("similar images result", r.SimilarImages)
}

// Validate checks the result against the expected backend shape
func (r *TextSearchResult) Validate() error {
	if r.Images == nil {
		return errors.New("text search result: missing images")
	}
	return validateEntries("text search result", r.Images)
}

func validateEntries(kind string, entries []ImageEntry) error {
	for i, e := range entries {
		if e.URL == "" {
			return fmt.Errorf("%s: image %d has no url", kind, i)
		}
	}
	return nil
}
