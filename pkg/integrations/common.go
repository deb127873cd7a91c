// Package integrations provides shared HTTP plumbing for clients of
// external services: response caching, retry with backoff, and status
// code mapping to structured errors.
package integrations

import (
	"errors"
	"net/http"
	"time"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a remote resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned for 401/403 responses, typically a
	// missing or invalid API token.
	ErrUnauthorized = errors.New("unauthorized")
)

// NewHTTPClient creates an HTTP client with the standard timeout for
// external API requests. The timeout bounds the explanation call so a slow
// endpoint degrades to the template path instead of hanging the analysis.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
