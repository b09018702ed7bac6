// Package llm provides standardized error types for the gateway client.
package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured indicates the gateway API key is missing. Detected
	// before any network call.
	ErrNotConfigured = errors.New("LLM gateway API key not configured")

	// ErrUnreachable indicates the gateway host could not be reached.
	ErrUnreachable = errors.New("LLM gateway unreachable")

	// ErrEmptyReply indicates the gateway answered without text or tool calls.
	ErrEmptyReply = errors.New("LLM gateway returned an empty reply")
)

// GatewayError wraps a non-2xx answer from the gateway.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("LLM gateway error: %d %s", e.StatusCode, e.Message)
	}

	return fmt.Sprintf("LLM gateway error: status %d", e.StatusCode)
}

// IsNotConfigured checks if an error indicates a missing gateway setting.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// IsUnreachable checks if an error indicates a transport-level failure.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}
