package jira

import (
	"context"
	"fmt"

	twhttp "github.com/randalmurphal/trackwork/http"
	"github.com/randalmurphal/trackwork/tracker"
)

func init() {
	tracker.Register("jira", func(ctx context.Context, opts tracker.OpenOptions) (tracker.Client, error) {
		cfg, err := ConfigFromEnv(opts.Interactive)
		if err != nil {
			return nil, err
		}
		return NewTracker(cfg)
	})
}

// Tracker adapts the Jira REST client to the vendor-neutral tracker
// contract.
type Tracker struct {
	client *Client
}

// NewTracker creates a tracker backed by a Jira instance.
func NewTracker(cfg *Config) (*Tracker, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Tracker{client: client}, nil
}

// Client returns the underlying Jira REST client for vendor-specific
// operations outside the shared contract.
func (t *Tracker) Client() *Client {
	return t.client
}

// GetIssue fetches an issue by key.
func (t *Tracker) GetIssue(ctx context.Context, id string) (*tracker.Issue, error) {
	issue, err := t.client.GetIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.toIssue(issue), nil
}

// SearchIssues returns a lazy iterator over issues matching the
// filter. The filter renders to a single JQL query; pages are fetched
// as the iterator advances, and iteration stops at the filter's cap.
func (t *Tracker) SearchIssues(ctx context.Context, filter tracker.Filter) tracker.IssueIterator {
	jql := BuildJQL(t.client.config.Project, filter)
	limit := filter.Cap()

	pageSize := limit
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	fetch := func(ctx context.Context, start int) ([]tracker.Issue, bool, error) {
		resp, err := t.client.SearchPage(ctx, jql, start, pageSize)
		if err != nil {
			return nil, false, err
		}

		issues := make([]tracker.Issue, 0, len(resp.Issues))
		for i := range resp.Issues {
			issues = append(issues, *t.toIssue(&resp.Issues[i]))
		}
		return issues, resp.HasMore(), nil
	}

	return twhttp.NewPageIterator(fetch).Limit(limit)
}

// CreateIssue creates an issue. When an initial status other than the
// project default is requested, the issue is created first and then
// transitioned, since Jira only changes status through workflow
// transitions.
func (t *Tracker) CreateIssue(ctx context.Context, opts tracker.CreateOptions) (*tracker.Issue, error) {
	if opts.Title == "" {
		return nil, tracker.ErrTitleRequired
	}
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", tracker.ErrInvalidStatus, opts.Status)
	}
	if t.client.config.Project == "" {
		return nil, fmt.Errorf("jira: %s is not set", EnvProject)
	}

	fields := CreateIssueFields{
		Project:   Project{Key: t.client.config.Project},
		Summary:   opts.Title,
		IssueType: IssueType{Name: t.client.config.IssueType},
		DueDate:   opts.DueDate,
	}
	if opts.Description != "" {
		fields.Description = t.client.descriptionValue(opts.Description)
	}
	if opts.Assignee != "" {
		user, err := t.client.FindUser(ctx, opts.Assignee)
		if err != nil {
			return nil, err
		}
		fields.Assignee = user
	}

	created, err := t.client.CreateIssue(ctx, &CreateIssueRequest{Fields: fields})
	if err != nil {
		return nil, err
	}

	if opts.Status != "" && opts.Status != tracker.StatusNotStarted {
		if err := t.client.ApplyStatus(ctx, created.Key, opts.Status); err != nil {
			return nil, fmt.Errorf("created %s but could not set status: %w", created.Key, err)
		}
	}

	return t.GetIssue(ctx, created.Key)
}

// UpdateIssue applies the populated fields of the descriptor. Plain
// fields go through one sparse PUT; a status change runs as a workflow
// transition afterward. The updated issue is fetched fresh.
func (t *Tracker) UpdateIssue(ctx context.Context, id string, update tracker.UpdateOptions) (*tracker.Issue, error) {
	if update.IsZero() {
		return t.GetIssue(ctx, id)
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", tracker.ErrInvalidStatus, *update.Status)
	}

	fields := make(map[string]any)
	if update.Title != nil {
		fields["summary"] = *update.Title
	}
	if update.Description != nil {
		if *update.Description == "" {
			fields["description"] = nil
		} else {
			fields["description"] = t.client.descriptionValue(*update.Description)
		}
	}
	if update.Assignee != nil {
		if *update.Assignee == "" {
			fields["assignee"] = nil
		} else {
			user, err := t.client.FindUser(ctx, *update.Assignee)
			if err != nil {
				return nil, err
			}
			fields["assignee"] = user
		}
	}
	if update.DueDate != nil {
		if *update.DueDate == "" {
			fields["duedate"] = nil
		} else {
			fields["duedate"] = *update.DueDate
		}
	}

	if len(fields) > 0 {
		if err := t.client.UpdateIssue(ctx, id, &UpdateIssueRequest{Fields: fields}); err != nil {
			return nil, err
		}
	}

	if update.Status != nil {
		if err := t.client.ApplyStatus(ctx, id, *update.Status); err != nil {
			return nil, err
		}
	}

	return t.GetIssue(ctx, id)
}

// DeleteIssue deletes an issue by key.
func (t *Tracker) DeleteIssue(ctx context.Context, id string) error {
	return t.client.DeleteIssue(ctx, id)
}

// toIssue converts a Jira issue to the normalized model.
func (t *Tracker) toIssue(issue *Issue) *tracker.Issue {
	out := &tracker.Issue{
		ID:          issue.Key,
		Title:       issue.Fields.Summary,
		Description: DescriptionText(issue.Fields.Description),
		Status:      NormalizeStatus(issue.Fields.Status),
		DueDate:     issue.Fields.DueDate,
		URL:         t.client.BrowseURL(issue.Key),
		Created:     ParseTime(issue.Fields.Created),
		Updated:     ParseTime(issue.Fields.Updated),
	}

	if a := issue.Fields.Assignee; a != nil {
		switch {
		case a.EmailAddress != "":
			out.Assignee = a.EmailAddress
		case a.Name != "":
			out.Assignee = a.Name
		default:
			out.Assignee = a.DisplayName
		}
	}

	return out
}
