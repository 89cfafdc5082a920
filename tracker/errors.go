package tracker

import "errors"

// Shared errors every provider maps its vendor responses onto. Callers
// check these with errors.Is without knowing which vendor is behind the
// client.
var (
	// ErrIssueNotFound indicates the requested issue does not exist.
	ErrIssueNotFound = errors.New("issue not found")

	// ErrTitleRequired indicates issue creation was attempted without a title.
	ErrTitleRequired = errors.New("issue title is required")

	// ErrInvalidStatus indicates a status outside the canonical set.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrUnknownProvider indicates no provider is registered under the
	// requested name.
	ErrUnknownProvider = errors.New("unknown tracker provider")
)

// IsNotFound reports whether the error indicates a missing issue.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrIssueNotFound)
}
