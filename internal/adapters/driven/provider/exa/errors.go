package exa

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// APIError represents an error response from the search API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exa: API error %d: %s", e.StatusCode, e.Message)
}

// isTransient classifies an attempt failure. Timeouts, connection
// resets and 5xx/429 responses are worth retrying; everything else
// (bad request, auth failure, quota exhausted) short-circuits.
func isTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == http.StatusTooManyRequests
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Connection resets and refused connections arrive as *net.OpError
	// wrapped in *url.Error, both of which satisfy net.Error above.
	// Anything else is treated as permanent.
	return false
}

// IsAuthError checks if the error indicates invalid credentials.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}
