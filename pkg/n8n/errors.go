// Package n8n provides standardized error types for the workflow API client.
package n8n

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard client error classes. Callers branch on these with the Is helpers
// rather than string-matching messages.
var (
	// ErrNotConfigured indicates the instance URL or API key is missing. No
	// network call is attempted in this state.
	ErrNotConfigured = errors.New("n8n connection not configured")

	// ErrUnreachable indicates the instance could not be reached at all
	// (DNS failure, refused connection, timeout).
	ErrUnreachable = errors.New("n8n instance unreachable")

	// ErrNonJSONResponse indicates the instance answered with something other
	// than JSON where JSON was expected, typically an HTML error page from a
	// misconfigured base URL. Surfaced separately because it is the most
	// common misconfiguration.
	ErrNonJSONResponse = errors.New("n8n returned a non-JSON response")
)

// APIError wraps a non-2xx answer from the n8n REST API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("n8n API error: %d %s", e.StatusCode, e.Message)
	}

	return fmt.Sprintf("n8n API error: status %d", e.StatusCode)
}

// IsNotConfigured checks if an error indicates a missing connection setting.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// IsUnreachable checks if an error indicates a transport-level failure.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

// IsNonJSONResponse checks if an error indicates a wrong-URL-shape answer.
func IsNonJSONResponse(err error) bool {
	return errors.Is(err, ErrNonJSONResponse)
}

// IsNotFound checks if an error is an API 404 for the requested resource.
func IsNotFound(err error) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
