package tracker

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the normalized issue status shared by all providers.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusCancelled  Status = "cancelled"
)

// DefaultMaxResults is the search result cap used when Filter.MaxResults
// is zero.
const DefaultMaxResults = 20

// Statuses lists the canonical statuses in workflow order.
func Statuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusComplete, StatusCancelled}
}

// ParseStatus parses a status from user input. It accepts the canonical
// underscore form plus common dashed and spaced spellings
// ("not-started", "in progress").
func ParseStatus(s string) (Status, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)

	switch Status(normalized) {
	case StatusNotStarted, StatusInProgress, StatusComplete, StatusCancelled:
		return Status(normalized), true
	}
	switch normalized {
	case "todo", "to_do", "open":
		return StatusNotStarted, true
	case "done", "closed", "resolved":
		return StatusComplete, true
	case "canceled":
		return StatusCancelled, true
	}
	return "", false
}

// Valid reports whether s is one of the canonical statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusComplete, StatusCancelled:
		return true
	}
	return false
}

// DisplayName returns a human-readable form of the status,
// e.g. "In Progress" for StatusInProgress.
func (s Status) DisplayName() string {
	name := strings.ReplaceAll(string(s), "_", " ")
	return cases.Title(language.English).String(name)
}

// Issue is the normalized read-only view over a vendor issue.
// Instances are reconstructed fresh on every fetch; there is no caching
// or identity beyond the vendor's own ID.
type Issue struct {
	ID          string    // Vendor identifier (Jira key, GitHub number, ...)
	Title       string    // Short title
	Description string    // Plain-text description
	Status      Status    // Normalized status
	Assignee    string    // Email or username; empty = unassigned
	DueDate     string    // YYYY-MM-DD; empty = none
	URL         string    // Web URL, when the vendor provides one
	Created     time.Time // Creation time, when the vendor provides one
	Updated     time.Time // Last update time, when the vendor provides one
}

// CreateOptions configures issue creation.
type CreateOptions struct {
	Title       string // Required
	Description string // Optional long-form description
	Status      Status // Initial status (empty = provider default)
	Assignee    string // Username or email of the initial assignee
	DueDate     string // Due date (e.g. "2025-12-31")
}

// UpdateOptions is a sparse update descriptor. Only non-nil fields are
// applied; a pointer to the empty string clears the field where the
// vendor supports that.
type UpdateOptions struct {
	Title       *string // New title (nil = no change)
	Description *string // New description (nil = no change)
	Status      *Status // New status (nil = no change)
	Assignee    *string // New assignee (nil = no change, "" = unassign)
	DueDate     *string // New due date (nil = no change, "" = clear)
}

// IsZero reports whether no fields are set on the descriptor.
func (u UpdateOptions) IsZero() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil &&
		u.Assignee == nil && u.DueDate == nil
}

// Filter configures issue search. All populated criteria combine with
// AND. Title and Description are fuzzy matches where the vendor supports
// them; the rest are exact.
type Filter struct {
	Title       string // Fuzzy match on title
	Description string // Fuzzy match on description
	Status      Status // Exact status match (empty = any)
	Assignee    string // Exact assignee match
	DueDate     string // Exact due date (YYYY-MM-DD)
	DueBefore   string // Due strictly before this date
	DueAfter    string // Due strictly after this date
	MaxResults  int    // Result cap (0 = DefaultMaxResults)
}

// Cap returns the effective result cap for the filter.
func (f Filter) Cap() int {
	if f.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return f.MaxResults
}

// IssueIterator yields issues from a search one at a time, fetching
// vendor pages lazily. Next returns (zero, false, nil) when iteration
// is complete.
type IssueIterator interface {
	Next(ctx context.Context) (Issue, bool, error)
}

// CollectIssues drains an iterator into a slice.
func CollectIssues(ctx context.Context, it IssueIterator) ([]Issue, error) {
	var all []Issue
	for {
		issue, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return all, nil
		}
		all = append(all, issue)
	}
}

// Client is the vendor-neutral issue tracker contract.
// Implementations exist for Jira, GitHub, and GitLab.
type Client interface {
	// GetIssue fetches a single issue by its vendor ID.
	// Returns an error matching ErrIssueNotFound if no such issue exists.
	GetIssue(ctx context.Context, id string) (*Issue, error)

	// SearchIssues returns a lazy iterator over issues matching all
	// populated filter criteria, up to the filter's result cap.
	// Building the iterator performs no I/O; errors surface from Next.
	SearchIssues(ctx context.Context, filter Filter) IssueIterator

	// CreateIssue creates a new issue and returns it.
	CreateIssue(ctx context.Context, opts CreateOptions) (*Issue, error)

	// UpdateIssue applies the populated fields of the descriptor to an
	// existing issue and returns the updated issue. Nil fields are left
	// unchanged. Returns an error matching ErrIssueNotFound if no such
	// issue exists.
	UpdateIssue(ctx context.Context, id string, update UpdateOptions) (*Issue, error)

	// DeleteIssue deletes an issue by ID.
	// Returns an error matching ErrIssueNotFound if no such issue exists.
	DeleteIssue(ctx context.Context, id string) error
}
