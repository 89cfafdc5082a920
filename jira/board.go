package jira

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/randalmurphal/trackwork/tracker"
)

// agilePath is the Agile API root. Boards live outside the platform
// REST API and its path is the same for v2 and v3 instances.
const agilePath = "/rest/agile/1.0"

// boardResponse is the wire shape of GET /rest/agile/1.0/board/{id}.
type boardResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Board is a Jira Agile board exposed through the tracker board
// contract. Listing reads the board's own issue endpoint; mutations
// delegate to the owning tracker.
type Board struct {
	tracker *Tracker
	id      int
	name    string
}

var _ tracker.Board = (*Board)(nil)

// Board fetches an Agile board by numeric ID.
func (t *Tracker) Board(ctx context.Context, id int) (*Board, error) {
	var resp boardResponse
	path := fmt.Sprintf("%s/board/%d", agilePath, id)
	if err := t.client.http.Get(ctx, path, &resp); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("jira: board %d does not exist", id)
		}
		return nil, err
	}
	return &Board{tracker: t, id: resp.ID, name: resp.Name}, nil
}

// ID returns the board's numeric ID as a string.
func (b *Board) ID() string {
	return strconv.Itoa(b.id)
}

// Name returns the board's display name.
func (b *Board) Name() string {
	return b.name
}

// Columns returns one column per canonical status. Jira board columns
// are workflow-specific; the canonical set keeps boards uniform across
// providers.
func (b *Board) Columns() []tracker.BoardColumn {
	return tracker.DefaultColumns()
}

// ListIssues fetches every issue on the board, following Agile API
// pages, in the board's ranked order. A non-empty status keeps only
// that column's issues.
func (b *Board) ListIssues(ctx context.Context, status tracker.Status) ([]tracker.Issue, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: %q", tracker.ErrInvalidStatus, status)
	}

	var out []tracker.Issue
	startAt := 0
	for {
		params := url.Values{}
		params.Set("startAt", strconv.Itoa(startAt))
		params.Set("maxResults", strconv.Itoa(maxPageSize))
		params.Set("fields", strings.Join(searchFields, ","))

		var resp SearchResponse
		path := fmt.Sprintf("%s/board/%d/issue?%s", agilePath, b.id, params.Encode())
		if err := b.tracker.client.http.Get(ctx, path, &resp); err != nil {
			return nil, err
		}

		for i := range resp.Issues {
			issue := b.tracker.toIssue(&resp.Issues[i])
			if status == "" || issue.Status == status {
				out = append(out, *issue)
			}
		}

		startAt += len(resp.Issues)
		if len(resp.Issues) == 0 || !resp.HasMore() {
			break
		}
	}

	return out, nil
}

// GetIssue fetches a single issue by key.
func (b *Board) GetIssue(ctx context.Context, id string) (*tracker.Issue, error) {
	return b.tracker.GetIssue(ctx, id)
}

// CreateIssue creates an issue in the board's project.
func (b *Board) CreateIssue(ctx context.Context, opts tracker.CreateOptions) (*tracker.Issue, error) {
	return b.tracker.CreateIssue(ctx, opts)
}

// UpdateIssue applies the populated fields of the descriptor.
func (b *Board) UpdateIssue(ctx context.Context, id string, update tracker.UpdateOptions) (*tracker.Issue, error) {
	return b.tracker.UpdateIssue(ctx, id, update)
}

// DeleteIssue deletes an issue by key.
func (b *Board) DeleteIssue(ctx context.Context, id string) error {
	return b.tracker.DeleteIssue(ctx, id)
}
