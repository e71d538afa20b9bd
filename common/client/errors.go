package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"imagesearch/common/models"
)

// APIError represents a non-2xx answer from the relay or the backend behind it
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("imagesearch error %d: %s", e.StatusCode, e.Message)
}

// IsGatewayError returns true when the relay answered on behalf of an unreachable or broken backend
func (e *APIError) IsGatewayError() bool {
	return e.StatusCode == http.StatusBadGateway || e.StatusCode == http.StatusGatewayTimeout
}

// newAPIError builds an APIError from whatever error body the relay passed back
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var relayErr models.ErrorResponse
	if err := json.Unmarshal(body, &relayErr); err == nil && relayErr.Message != "" {
		apiErr.Message = relayErr.Message
		apiErr.RequestID = relayErr.RequestID
		return apiErr
	}

	// Backends commonly answer {"detail": "..."} or {"error": "..."}
	var generic map[string]interface{}
	if err := json.Unmarshal(body, &generic); err == nil {
		for _, key := range []string{"detail", "error", "message"} {
			if msg, ok := generic[key].(string); ok && msg != "" {
				apiErr.Message = msg
				return apiErr
			}
		}
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
