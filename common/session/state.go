package session

import (
	"imagesearch/common/client"
	"imagesearch/common/models"
)

// State is an immutable snapshot of one user's session. Each With* method
// returns a copy with exactly one slot replaced.
type State struct {
	SelectedFile   *client.Upload
	Classification *models.ClassificationResult
	Similar        *models.SimilarImagesResult
	TextQuery      string
	// TextResults is nil until a text search succeeds
	TextResults []models.ImageEntry
}

// WithSelectedFile replaces the selected file
func (s State) WithSelectedFile(file *client.Upload) State {
	s.SelectedFile = file
	return s
}

// WithClassification replaces the classification slot
func (s State) WithClassification(result *models.ClassificationResult) State {
	s.Classification = result
	return s
}

// WithSimilar replaces the similar images slot
func (s State) WithSimilar(result *models.SimilarImagesResult) State {
	s.Similar = result
	return s
}

// WithTextQuery replaces the text query
func (s State) WithTextQuery(query string) State {
	s.TextQuery = query
	return s
}

// WithTextResults replaces the text search slot
func (s State) WithTextResults(images []models.ImageEntry) State {
	s.TextResults = images
	return s
}

// ClassificationLines renders the classification slot one prediction per line
func (s State) ClassificationLines() []string {
	if s.Classification == nil {
		return nil
	}
	lines := make([]string, 0, len(s.Classification.TopPredictions))
	for _, p := range s.Classification.TopPredictions {
		lines = append(lines, p.Percent())
	}
	return lines
}
