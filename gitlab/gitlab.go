// Package gitlab implements the tracker contract on GitLab issues.
//
// GitLab issues have only two states, so the adapter tells the two
// open statuses apart with an "in progress" label and the two closed
// statuses apart with a "cancelled" label. Unlike GitHub, GitLab
// supports real due dates and real issue deletion.
package gitlab

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	gl "github.com/xanzy/go-gitlab"

	"github.com/randalmurphal/trackwork/credential"
	"github.com/randalmurphal/trackwork/prompt"
	"github.com/randalmurphal/trackwork/tracker"
)

func init() {
	tracker.Register("gitlab", func(ctx context.Context, opts tracker.OpenOptions) (tracker.Client, error) {
		return FromEnv(ctx, opts.Interactive)
	})
}

// Environment variables read by FromEnv.
const (
	EnvToken   = "GITLAB_TOKEN"
	EnvBaseURL = "GITLAB_BASE_URL"
	EnvProject = "GITLAB_PROJECT"
)

// credToken is the keyring entry for the GitLab token.
const credToken = "gitlab_token"

// Status marker labels. GitLab's state field only distinguishes opened
// from closed.
const (
	inProgressLabel = "in progress"
	cancelledLabel  = "cancelled"
)

// listPageSize is the page size for issue list requests.
const listPageSize = 100

// dueDateFormat is GitLab's due date layout.
const dueDateFormat = "2006-01-02"

// ErrIssueNotFound is returned when a GitLab issue does not exist. It
// wraps the shared tracker sentinel.
var ErrIssueNotFound = fmt.Errorf("gitlab: %w", tracker.ErrIssueNotFound)

// Tracker adapts GitLab issues to the tracker contract.
type Tracker struct {
	client  *gl.Client
	project string // ID or "group/name" path
}

// New creates a tracker over one project using the given API client.
func New(client *gl.Client, project string) (*Tracker, error) {
	if project == "" {
		return nil, fmt.Errorf("gitlab: project is required")
	}
	return &Tracker{client: client, project: project}, nil
}

// FromEnv builds a tracker from GITLAB_TOKEN, GITLAB_PROJECT, and
// optionally GITLAB_BASE_URL for self-hosted instances. The token
// falls back to the keyring and then an interactive prompt.
func FromEnv(_ context.Context, interactive bool) (*Tracker, error) {
	project := os.Getenv(EnvProject)
	if project == "" {
		return nil, fmt.Errorf("gitlab: %s is not set", EnvProject)
	}

	token := os.Getenv(EnvToken)
	if token == "" {
		if v, err := credential.Get(credToken); err == nil {
			token = v
		}
	}
	if token == "" && interactive {
		v, err := prompt.New().Password("GitLab token: ")
		if err != nil {
			return nil, fmt.Errorf("gitlab: read token: %w", err)
		}
		token = strings.TrimSpace(v)
		if token != "" {
			_ = credential.Set(credToken, token)
		}
	}
	if token == "" {
		return nil, fmt.Errorf("gitlab: %s is not set", EnvToken)
	}

	var opts []gl.ClientOptionFunc
	if base := os.Getenv(EnvBaseURL); base != "" {
		opts = append(opts, gl.WithBaseURL(strings.TrimRight(base, "/")+"/api/v4"))
	}

	client, err := gl.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("gitlab: create client: %w", err)
	}
	return New(client, project)
}

// ClearCredentials removes the stored GitLab token from the keyring.
func ClearCredentials() error {
	return credential.Delete(credToken)
}

// GetIssue fetches an issue by IID.
func (t *Tracker) GetIssue(ctx context.Context, id string) (*tracker.Issue, error) {
	iid, err := parseIID(id)
	if err != nil {
		return nil, err
	}

	issue, resp, err := t.client.Issues.GetIssue(t.project, iid, gl.WithContext(ctx))
	if err != nil {
		return nil, t.wrapErr(err, resp, id)
	}
	return toIssue(issue), nil
}

// SearchIssues returns a lazy iterator over matching issues. Status,
// assignee, and text search push down to the API; exact due date
// criteria filter client-side because the list API only supports
// coarse due date buckets.
func (t *Tracker) SearchIssues(ctx context.Context, filter tracker.Filter) tracker.IssueIterator {
	return &searchIterator{tracker: t, filter: filter, limit: filter.Cap()}
}

// listPage fetches one page of issues matching the filter's
// API-expressible criteria, most recently updated first.
func (t *Tracker) listPage(ctx context.Context, filter tracker.Filter, page int) ([]*gl.Issue, int, error) {
	opts := &gl.ListProjectIssuesOptions{
		OrderBy:     gl.Ptr("updated_at"),
		Sort:        gl.Ptr("desc"),
		ListOptions: gl.ListOptions{Page: page, PerPage: listPageSize},
	}

	switch {
	case filter.Title != "":
		opts.Search = gl.Ptr(filter.Title)
		opts.In = gl.Ptr("title")
	case filter.Description != "":
		opts.Search = gl.Ptr(filter.Description)
		opts.In = gl.Ptr("description")
	}
	if filter.Assignee != "" {
		opts.AssigneeUsername = gl.Ptr(filter.Assignee)
	}

	switch filter.Status {
	case tracker.StatusNotStarted:
		opts.State = gl.Ptr("opened")
	case tracker.StatusInProgress:
		opts.State = gl.Ptr("opened")
		opts.Labels = &gl.LabelOptions{inProgressLabel}
	case tracker.StatusComplete:
		opts.State = gl.Ptr("closed")
	case tracker.StatusCancelled:
		opts.State = gl.Ptr("closed")
		opts.Labels = &gl.LabelOptions{cancelledLabel}
	}

	issues, resp, err := t.client.Issues.ListProjectIssues(t.project, opts, gl.WithContext(ctx))
	if err != nil {
		return nil, 0, t.wrapErr(err, resp, "")
	}
	return issues, resp.NextPage, nil
}

// CreateIssue creates an issue. Closed initial statuses are applied by
// closing the issue right after creation.
func (t *Tracker) CreateIssue(ctx context.Context, opts tracker.CreateOptions) (*tracker.Issue, error) {
	if opts.Title == "" {
		return nil, tracker.ErrTitleRequired
	}
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", tracker.ErrInvalidStatus, opts.Status)
	}

	req := &gl.CreateIssueOptions{Title: gl.Ptr(opts.Title)}
	if opts.Description != "" {
		req.Description = gl.Ptr(opts.Description)
	}
	if opts.DueDate != "" {
		due, err := parseDueDate(opts.DueDate)
		if err != nil {
			return nil, err
		}
		req.DueDate = due
	}
	if opts.Assignee != "" {
		id, err := t.userID(ctx, opts.Assignee)
		if err != nil {
			return nil, err
		}
		req.AssigneeIDs = &[]int{id}
	}
	if opts.Status == tracker.StatusInProgress {
		req.Labels = &gl.LabelOptions{inProgressLabel}
	}

	issue, resp, err := t.client.Issues.CreateIssue(t.project, req, gl.WithContext(ctx))
	if err != nil {
		return nil, t.wrapErr(err, resp, "")
	}

	if opts.Status == tracker.StatusComplete || opts.Status == tracker.StatusCancelled {
		return t.setStatus(ctx, issue.IID, opts.Status)
	}
	return toIssue(issue), nil
}

// UpdateIssue applies the populated fields of the descriptor.
func (t *Tracker) UpdateIssue(ctx context.Context, id string, update tracker.UpdateOptions) (*tracker.Issue, error) {
	iid, err := parseIID(id)
	if err != nil {
		return nil, err
	}
	if update.IsZero() {
		return t.GetIssue(ctx, id)
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", tracker.ErrInvalidStatus, *update.Status)
	}

	req := &gl.UpdateIssueOptions{}
	changed := false
	if update.Title != nil {
		req.Title = update.Title
		changed = true
	}
	if update.Description != nil {
		req.Description = update.Description
		changed = true
	}
	if update.DueDate != nil {
		if *update.DueDate == "" {
			// The API wants an empty due_date string for removal, which
			// the typed ISOTime field cannot produce.
			return nil, errors.New("gitlab: clearing the due date is not supported")
		}
		due, err := parseDueDate(*update.DueDate)
		if err != nil {
			return nil, err
		}
		req.DueDate = due
		changed = true
	}
	if update.Assignee != nil {
		if *update.Assignee == "" {
			req.AssigneeIDs = &[]int{0}
		} else {
			id, err := t.userID(ctx, *update.Assignee)
			if err != nil {
				return nil, err
			}
			req.AssigneeIDs = &[]int{id}
		}
		changed = true
	}

	if changed {
		_, resp, err := t.client.Issues.UpdateIssue(t.project, iid, req, gl.WithContext(ctx))
		if err != nil {
			return nil, t.wrapErr(err, resp, id)
		}
	}

	if update.Status != nil {
		return t.setStatus(ctx, iid, *update.Status)
	}
	return t.GetIssue(ctx, id)
}

// setStatus maps a normalized status onto state events and marker
// labels.
func (t *Tracker) setStatus(ctx context.Context, iid int, status tracker.Status) (*tracker.Issue, error) {
	req := &gl.UpdateIssueOptions{}

	switch status {
	case tracker.StatusNotStarted:
		req.StateEvent = gl.Ptr("reopen")
		req.RemoveLabels = &gl.LabelOptions{inProgressLabel, cancelledLabel}
	case tracker.StatusInProgress:
		req.StateEvent = gl.Ptr("reopen")
		req.AddLabels = &gl.LabelOptions{inProgressLabel}
		req.RemoveLabels = &gl.LabelOptions{cancelledLabel}
	case tracker.StatusComplete:
		req.StateEvent = gl.Ptr("close")
		req.RemoveLabels = &gl.LabelOptions{inProgressLabel, cancelledLabel}
	case tracker.StatusCancelled:
		req.StateEvent = gl.Ptr("close")
		req.AddLabels = &gl.LabelOptions{cancelledLabel}
		req.RemoveLabels = &gl.LabelOptions{inProgressLabel}
	}

	issue, resp, err := t.client.Issues.UpdateIssue(t.project, iid, req, gl.WithContext(ctx))
	if err != nil {
		return nil, t.wrapErr(err, resp, strconv.Itoa(iid))
	}
	return toIssue(issue), nil
}

// DeleteIssue deletes an issue by IID.
func (t *Tracker) DeleteIssue(ctx context.Context, id string) error {
	iid, err := parseIID(id)
	if err != nil {
		return err
	}

	resp, err := t.client.Issues.DeleteIssue(t.project, iid, gl.WithContext(ctx))
	if err != nil {
		return t.wrapErr(err, resp, id)
	}
	return nil
}

// userID resolves a username to a numeric user ID for assignment.
func (t *Tracker) userID(ctx context.Context, username string) (int, error) {
	users, resp, err := t.client.Users.ListUsers(&gl.ListUsersOptions{
		Username: gl.Ptr(username),
	}, gl.WithContext(ctx))
	if err != nil {
		return 0, t.wrapErr(err, resp, "")
	}
	if len(users) == 0 {
		return 0, fmt.Errorf("gitlab: no user matching %q", username)
	}
	return users[0].ID, nil
}

// toIssue converts a GitLab issue to the normalized model.
func toIssue(issue *gl.Issue) *tracker.Issue {
	out := &tracker.Issue{
		ID:          strconv.Itoa(issue.IID),
		Title:       issue.Title,
		Description: issue.Description,
		Status:      normalizeStatus(issue),
		URL:         issue.WebURL,
	}
	if issue.Assignee != nil {
		out.Assignee = issue.Assignee.Username
	}
	if issue.DueDate != nil {
		out.DueDate = issue.DueDate.String()
	}
	if issue.CreatedAt != nil {
		out.Created = *issue.CreatedAt
	}
	if issue.UpdatedAt != nil {
		out.Updated = *issue.UpdatedAt
	}
	return out
}

// normalizeStatus maps GitLab state and marker labels onto the shared
// enum.
func normalizeStatus(issue *gl.Issue) tracker.Status {
	if issue.State == "closed" {
		if hasLabel(issue, cancelledLabel) {
			return tracker.StatusCancelled
		}
		return tracker.StatusComplete
	}
	if hasLabel(issue, inProgressLabel) {
		return tracker.StatusInProgress
	}
	return tracker.StatusNotStarted
}

func hasLabel(issue *gl.Issue, name string) bool {
	for _, label := range issue.Labels {
		if strings.EqualFold(label, name) {
			return true
		}
	}
	return false
}

// parseIID parses an issue IID, accepting an optional leading #.
func parseIID(id string) (int, error) {
	iid, err := strconv.Atoi(strings.TrimPrefix(id, "#"))
	if err != nil || iid <= 0 {
		return 0, fmt.Errorf("gitlab: invalid issue iid %q", id)
	}
	return iid, nil
}

// parseDueDate parses a YYYY-MM-DD due date.
func parseDueDate(s string) (*gl.ISOTime, error) {
	t, err := time.Parse(dueDateFormat, s)
	if err != nil {
		return nil, fmt.Errorf("gitlab: invalid due date %q (want YYYY-MM-DD)", s)
	}
	iso := gl.ISOTime(t)
	return &iso, nil
}

// wrapErr maps API errors onto the shared sentinels.
func (t *Tracker) wrapErr(err error, resp *gl.Response, id string) error {
	if resp != nil && resp.StatusCode == 404 {
		return fmt.Errorf("%w: %s", ErrIssueNotFound, id)
	}
	return fmt.Errorf("gitlab: %w", err)
}
