package tracker

import "context"

// BoardColumn is one column of a board, keyed by the canonical status
// it displays.
type BoardColumn struct {
	Status Status
	Name   string
}

// DefaultColumns returns one column per canonical status, in workflow
// order. Providers without their own column model use these.
func DefaultColumns() []BoardColumn {
	return []BoardColumn{
		{StatusNotStarted, "To Do"},
		{StatusInProgress, "In Progress"},
		{StatusComplete, "Done"},
		{StatusCancelled, "Cancelled"},
	}
}

// Board is a named view over a set of issues, grouped into one column
// per canonical status. Mutations delegate to the owning client, so
// board issues behave exactly like issues fetched directly.
type Board interface {
	// ID returns the vendor identifier of the board.
	ID() string

	// Name returns the display name of the board.
	Name() string

	// Columns returns the board's columns in display order.
	Columns() []BoardColumn

	// ListIssues returns the issues on the board in a stable order.
	// A non-empty status restricts the result to that column.
	ListIssues(ctx context.Context, status Status) ([]Issue, error)

	// GetIssue fetches a single board issue by its vendor ID.
	GetIssue(ctx context.Context, id string) (*Issue, error)

	// CreateIssue creates a new issue on the board and returns it.
	CreateIssue(ctx context.Context, opts CreateOptions) (*Issue, error)

	// UpdateIssue applies the populated fields of the descriptor to an
	// existing issue and returns the updated issue.
	UpdateIssue(ctx context.Context, id string, update UpdateOptions) (*Issue, error)

	// DeleteIssue removes an issue from the board.
	DeleteIssue(ctx context.Context, id string) error
}
