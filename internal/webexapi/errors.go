package webexapi

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents an unexpected HTTP status from the remote service
type APIError struct {
	StatusCode int
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("webex api: %s returned status %d", e.Endpoint, e.StatusCode)
}

// NotFound reports whether the error was a 404 response
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err wraps an APIError for a 404 response.
// Not-found conditions are the only remote failures the archiver
// recovers from locally.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}
