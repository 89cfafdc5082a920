// Package http provides shared HTTP plumbing for tracker provider
// clients: a retrying JSON client, a common error taxonomy, and lazy
// pagination over list endpoints.
package http

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all provider clients. Vendor error
// responses unwrap to these so callers can classify failures with
// errors.Is regardless of which API produced them.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates invalid or missing credentials.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrForbidden indicates the credentials lack permission.
	ErrForbidden = errors.New("permission denied")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrBadRequest indicates the request was rejected as malformed.
	ErrBadRequest = errors.New("bad request")

	// ErrServerError indicates a server-side failure.
	ErrServerError = errors.New("server error")
)

// APIError is an error response from a vendor API.
type APIError struct {
	// Service names the integration ("jira", "github", "gitlab").
	Service string

	// StatusCode is the HTTP status returned.
	StatusCode int

	// Message is the error message extracted from the response body,
	// or the generic status text when the body had none.
	Message string

	// Endpoint is the API path that was called.
	Endpoint string

	// RequestID is the vendor's request ID, when the response carried one.
	RequestID string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s API error (%d) at %s [%s]: %s",
			e.Service, e.StatusCode, e.Endpoint, e.RequestID, e.Message)
	}
	return fmt.Sprintf("%s API error (%d) at %s: %s",
		e.Service, e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap maps the status code onto the matching sentinel error.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimited
	default:
		if e.StatusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// IsNotFound reports whether the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether the error indicates failed authentication.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRateLimited reports whether the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsRetryable reports whether the error is transient and a retry may
// succeed.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 && apiErr.StatusCode < 600
	}

	return false
}
