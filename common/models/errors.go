package models

// ErrorResponse represents an error response written by the relay or the mock backend
type ErrorResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
