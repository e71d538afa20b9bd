package models

import (
	"errors"
	"fmt"
)

// Prediction represents a single label returned by the classifier
type Prediction struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Percent formats the prediction the way it is shown to users, e.g. "cat: 97.00%"
func (p Prediction) Percent() string {
	return fmt.Sprintf("%s: %.2f%%", p.Category, p.Confidence*100)
}

// ClassificationResult represents the response of the classify-image endpoint.
// Predictions keep the order the backend returned them in.
type ClassificationResult struct {
	TopPredictions []Prediction `json:"top_predictions"`
}

// Validate checks the result against the expected backend shape
func (r *ClassificationResult) Validate() error {
	if r.TopPredictions == nil {
		return errors.New("classification result: missing top_predictions")
	}
	for i, p := range r.TopPredictions {
		if p.Category == "" {
			return fmt.Errorf("classification result: prediction %d has no category", i)
		}
		if p.Confidence < 0 || p.Confidence > 1 {
			return fmt.Errorf("classification result: prediction %d confidence %v out of range", i, p.Confidence)
		}
	}
	return nil
}
