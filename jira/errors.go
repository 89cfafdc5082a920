package jira

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	twhttp "github.com/randalmurphal/trackwork/http"
	"github.com/randalmurphal/trackwork/tracker"
)

// Configuration errors.
var (
	ErrConfigURLRequired      = errors.New("jira base url is required")
	ErrConfigAuthTypeRequired = errors.New("jira auth type is required")
	ErrConfigAuthTypeInvalid  = errors.New("jira auth type must be api_token, basic, pat, or connect")
	ErrConfigAPITokenAuth     = errors.New("api_token auth requires email and token")
	ErrConfigBasicAuth        = errors.New("basic auth requires username and password")
	ErrConfigPATAuth          = errors.New("pat auth requires token")
	ErrConfigConnectAuth      = errors.New("connect auth requires app key and shared secret")
	ErrConfigVersionInvalid   = errors.New("api_version must be auto, v2, or v3")
)

// ErrIssueNotFound is returned when a Jira issue does not exist. It
// wraps the shared tracker sentinel so callers can catch the condition
// without importing this package.
var ErrIssueNotFound = fmt.Errorf("jira: %w", tracker.ErrIssueNotFound)

// ErrIssueKeyInvalid is returned for malformed issue keys.
var ErrIssueKeyInvalid = errors.New("invalid jira issue key format")

// TransitionError is returned when no workflow transition to the
// requested status is available on an issue. Jira does not allow direct
// status writes, so an unreachable status is a hard failure.
type TransitionError struct {
	IssueKey  string
	Target    tracker.Status
	Available []string
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("jira: no transition to %q available for %s (available: %s)",
		e.Target, e.IssueKey, strings.Join(e.Available, ", "))
}

// APIError is an error response from the Jira REST API. Jira reports
// errors as a list of messages plus a field-to-message map.
type APIError struct {
	StatusCode    int               `json:"-"`
	ErrorMessages []string          `json:"errorMessages,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
	Endpoint      string            `json:"-"`
	RequestID     string            `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.ErrorMessages) > 0 {
		return fmt.Sprintf("jira API error (%d): %s", e.StatusCode, e.ErrorMessages[0])
	}
	for field, msg := range e.Errors {
		return fmt.Sprintf("jira API error (%d): %s: %s", e.StatusCode, field, msg)
	}
	return fmt.Sprintf("jira API error (%d) at %s", e.StatusCode, e.Endpoint)
}

// Unwrap maps the status code onto the shared sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return twhttp.ErrBadRequest
	case http.StatusUnauthorized:
		return twhttp.ErrUnauthorized
	case http.StatusForbidden:
		return twhttp.ErrForbidden
	case http.StatusNotFound:
		return twhttp.ErrNotFound
	case http.StatusTooManyRequests:
		return twhttp.ErrRateLimited
	default:
		if e.StatusCode >= 500 {
			return twhttp.ErrServerError
		}
		return nil
	}
}

// parseAPIError reads a Jira error response body into an APIError.
func parseAPIError(resp *http.Response, endpoint string) error {
	body, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Endpoint:   endpoint,
		RequestID:  resp.Header.Get("X-Request-Id"),
	}

	if json.Unmarshal(body, apiErr) != nil || (len(apiErr.ErrorMessages) == 0 && len(apiErr.Errors) == 0) {
		apiErr.ErrorMessages = []string{http.StatusText(resp.StatusCode)}
	}

	return apiErr
}

// notFound reports whether the error indicates a missing resource,
// either via the shared sentinel chain or a Jira APIError.
func notFound(err error) bool {
	return errors.Is(err, twhttp.ErrNotFound)
}
