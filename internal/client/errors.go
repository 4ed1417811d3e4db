package client

import (
	"errors"
	"fmt"
)

const defaultErrorMessage = "API request failed"

// APIError carries the HTTP status and the parsed error envelope of a
// non-2xx response. Transport failures never produce an APIError; they
// surface as the underlying error with no status attached.
type APIError struct {
	Status int
	Body   map[string]interface{}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message(defaultErrorMessage))
}

// Message resolves the display string from the error envelope: "error"
// wins, then "message", then the fallback.
func (e *APIError) Message(fallback string) string {
	if s, ok := e.Body["error"].(string); ok && s != "" {
		return s
	}
	if s, ok := e.Body["message"].(string); ok && s != "" {
		return s
	}
	return fallback
}

// ErrorMessage extracts a user-facing message from any request failure.
// Transport errors carry no envelope and resolve to the fallback.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message(fallback)
	}
	return fallback
}
