// Package github implements the tracker contract on GitHub issues.
//
// GitHub's issue model is narrower than the shared contract, so the
// adapter maps around the gaps: the two open statuses are told apart
// by an "in progress" label, the two closed statuses by the close
// reason, and issues cannot be deleted through the REST API so delete
// closes them as not planned. Due dates have no GitHub equivalent.
package github

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/randalmurphal/trackwork/credential"
	"github.com/randalmurphal/trackwork/prompt"
	"github.com/randalmurphal/trackwork/tracker"
)

func init() {
	tracker.Register("github", func(ctx context.Context, opts tracker.OpenOptions) (tracker.Client, error) {
		return FromEnv(ctx, opts.Interactive)
	})
}

// Environment variables read by FromEnv.
const (
	EnvToken      = "GITHUB_TOKEN"
	EnvRepository = "GITHUB_REPOSITORY"
)

// credToken is the keyring entry for the GitHub token.
const credToken = "github_token"

// inProgressLabel marks open issues as actively worked on. GitHub has
// no status field beyond open/closed, so this label carries the
// distinction.
const inProgressLabel = "in progress"

// searchPageSize is the page size for search requests.
const searchPageSize = 100

// ErrIssueNotFound is returned when a GitHub issue does not exist. It
// wraps the shared tracker sentinel.
var ErrIssueNotFound = fmt.Errorf("github: %w", tracker.ErrIssueNotFound)

// Tracker adapts GitHub issues to the tracker contract.
type Tracker struct {
	client *gh.Client
	owner  string
	repo   string
}

// New creates a tracker over one repository ("owner/name") using the
// given API client.
func New(client *gh.Client, repository string) (*Tracker, error) {
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("github: repository must be owner/name, got %q", repository)
	}
	return &Tracker{client: client, owner: owner, repo: repo}, nil
}

// FromEnv builds a tracker from GITHUB_TOKEN and GITHUB_REPOSITORY,
// falling back to the keyring and an interactive prompt for the token.
func FromEnv(ctx context.Context, interactive bool) (*Tracker, error) {
	repository := os.Getenv(EnvRepository)
	if repository == "" {
		return nil, fmt.Errorf("github: %s is not set", EnvRepository)
	}

	token := os.Getenv(EnvToken)
	if token == "" {
		if v, err := credential.Get(credToken); err == nil {
			token = v
		}
	}
	if token == "" && interactive {
		v, err := prompt.New().Password("GitHub token: ")
		if err != nil {
			return nil, fmt.Errorf("github: read token: %w", err)
		}
		token = strings.TrimSpace(v)
		if token != "" {
			_ = credential.Set(credToken, token)
		}
	}
	if token == "" {
		return nil, fmt.Errorf("github: %s is not set", EnvToken)
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	return New(gh.NewClient(httpClient), repository)
}

// ClearCredentials removes the stored GitHub token from the keyring.
func ClearCredentials() error {
	return credential.Delete(credToken)
}

// GetIssue fetches an issue by number.
func (t *Tracker) GetIssue(ctx context.Context, id string) (*tracker.Issue, error) {
	number, err := parseNumber(id)
	if err != nil {
		return nil, err
	}

	issue, resp, err := t.client.Issues.Get(ctx, t.owner, t.repo, number)
	if err != nil {
		return nil, t.wrapErr(err, resp, id)
	}
	return t.toIssue(issue), nil
}

// SearchIssues returns a lazy iterator over matching issues, built on
// the search API so title and body matches stay fuzzy.
func (t *Tracker) SearchIssues(ctx context.Context, filter tracker.Filter) tracker.IssueIterator {
	if filter.DueDate != "" || filter.DueBefore != "" || filter.DueAfter != "" {
		return errIterator{errors.New("github: issues have no due dates; due date filters are not supported")}
	}

	query := t.searchQuery(filter)
	limit := filter.Cap()

	return &searchIterator{tracker: t, query: query, filter: filter, limit: limit}
}

// searchQuery renders a filter as a GitHub search query.
func (t *Tracker) searchQuery(filter tracker.Filter) string {
	parts := []string{fmt.Sprintf("repo:%s/%s", t.owner, t.repo), "is:issue"}

	switch filter.Status {
	case tracker.StatusNotStarted:
		parts = append(parts, "is:open", fmt.Sprintf("-label:%q", inProgressLabel))
	case tracker.StatusInProgress:
		parts = append(parts, "is:open", fmt.Sprintf("label:%q", inProgressLabel))
	case tracker.StatusComplete:
		parts = append(parts, "is:closed", "reason:completed")
	case tracker.StatusCancelled:
		parts = append(parts, "is:closed", `reason:"not planned"`)
	}
	if filter.Assignee != "" {
		parts = append(parts, "assignee:"+filter.Assignee)
	}
	if filter.Title != "" {
		parts = append(parts, fmt.Sprintf("%q in:title", filter.Title))
	}
	if filter.Description != "" {
		parts = append(parts, fmt.Sprintf("%q in:body", filter.Description))
	}

	return strings.Join(parts, " ")
}

// searchPage fetches one page of search results, most recently updated
// first. Returns the converted issues and the next page number (0 when
// this was the last page).
func (t *Tracker) searchPage(ctx context.Context, query string, page int) ([]tracker.Issue, int, error) {
	opts := &gh.SearchOptions{
		Sort:        "updated",
		Order:       "desc",
		ListOptions: gh.ListOptions{Page: page, PerPage: searchPageSize},
	}

	result, resp, err := t.client.Search.Issues(ctx, query, opts)
	if err != nil {
		return nil, 0, t.wrapErr(err, resp, "")
	}

	issues := make([]tracker.Issue, 0, len(result.Issues))
	for _, issue := range result.Issues {
		issues = append(issues, *t.toIssue(issue))
	}
	return issues, resp.NextPage, nil
}

// CreateIssue creates an issue. A closed initial status is applied by
// closing the issue right after creation.
func (t *Tracker) CreateIssue(ctx context.Context, opts tracker.CreateOptions) (*tracker.Issue, error) {
	if opts.Title == "" {
		return nil, tracker.ErrTitleRequired
	}
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", tracker.ErrInvalidStatus, opts.Status)
	}
	if opts.DueDate != "" {
		return nil, errors.New("github: issues have no due dates")
	}

	req := &gh.IssueRequest{Title: gh.String(opts.Title)}
	if opts.Description != "" {
		req.Body = gh.String(opts.Description)
	}
	if opts.Assignee != "" {
		req.Assignees = &[]string{opts.Assignee}
	}
	if opts.Status == tracker.StatusInProgress {
		req.Labels = &[]string{inProgressLabel}
	}

	issue, resp, err := t.client.Issues.Create(ctx, t.owner, t.repo, req)
	if err != nil {
		return nil, t.wrapErr(err, resp, "")
	}

	if opts.Status == tracker.StatusComplete || opts.Status == tracker.StatusCancelled {
		return t.setStatus(ctx, issue.GetNumber(), opts.Status, issue)
	}
	return t.toIssue(issue), nil
}

// UpdateIssue applies the populated fields of the descriptor.
func (t *Tracker) UpdateIssue(ctx context.Context, id string, update tracker.UpdateOptions) (*tracker.Issue, error) {
	number, err := parseNumber(id)
	if err != nil {
		return nil, err
	}
	if update.IsZero() {
		return t.GetIssue(ctx, id)
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", tracker.ErrInvalidStatus, *update.Status)
	}
	if update.DueDate != nil && *update.DueDate != "" {
		return nil, errors.New("github: issues have no due dates")
	}

	req := &gh.IssueRequest{}
	changed := false
	if update.Title != nil {
		req.Title = update.Title
		changed = true
	}
	if update.Description != nil {
		req.Body = update.Description
		changed = true
	}
	if update.Assignee != nil {
		assignees := []string{}
		if *update.Assignee != "" {
			assignees = []string{*update.Assignee}
		}
		req.Assignees = &assignees
		changed = true
	}

	var issue *gh.Issue
	if changed {
		var resp *gh.Response
		issue, resp, err = t.client.Issues.Edit(ctx, t.owner, t.repo, number, req)
		if err != nil {
			return nil, t.wrapErr(err, resp, id)
		}
	}

	if update.Status != nil {
		return t.setStatus(ctx, number, *update.Status, issue)
	}
	if issue != nil {
		return t.toIssue(issue), nil
	}
	return t.GetIssue(ctx, id)
}

// setStatus maps a normalized status onto state, close reason, and the
// in-progress label.
func (t *Tracker) setStatus(ctx context.Context, number int, status tracker.Status, _ *gh.Issue) (*tracker.Issue, error) {
	req := &gh.IssueRequest{}
	switch status {
	case tracker.StatusNotStarted:
		req.State = gh.String("open")
	case tracker.StatusInProgress:
		req.State = gh.String("open")
	case tracker.StatusComplete:
		req.State = gh.String("closed")
		req.StateReason = gh.String("completed")
	case tracker.StatusCancelled:
		req.State = gh.String("closed")
		req.StateReason = gh.String("not_planned")
	}

	issue, resp, err := t.client.Issues.Edit(ctx, t.owner, t.repo, number, req)
	if err != nil {
		return nil, t.wrapErr(err, resp, strconv.Itoa(number))
	}

	switch status {
	case tracker.StatusInProgress:
		if !hasLabel(issue, inProgressLabel) {
			_, resp, err = t.client.Issues.AddLabelsToIssue(ctx, t.owner, t.repo, number, []string{inProgressLabel})
			if err != nil {
				return nil, t.wrapErr(err, resp, strconv.Itoa(number))
			}
		}
	case tracker.StatusNotStarted:
		if hasLabel(issue, inProgressLabel) {
			resp, err = t.client.Issues.RemoveLabelForIssue(ctx, t.owner, t.repo, number, inProgressLabel)
			if err != nil {
				return nil, t.wrapErr(err, resp, strconv.Itoa(number))
			}
		}
	}

	return t.GetIssue(ctx, strconv.Itoa(number))
}

// DeleteIssue closes the issue as not planned. The REST API offers no
// way to delete an issue outright.
func (t *Tracker) DeleteIssue(ctx context.Context, id string) error {
	number, err := parseNumber(id)
	if err != nil {
		return err
	}

	req := &gh.IssueRequest{
		State:       gh.String("closed"),
		StateReason: gh.String("not_planned"),
	}
	_, resp, err := t.client.Issues.Edit(ctx, t.owner, t.repo, number, req)
	if err != nil {
		return t.wrapErr(err, resp, id)
	}
	return nil
}

// toIssue converts a GitHub issue to the normalized model.
func (t *Tracker) toIssue(issue *gh.Issue) *tracker.Issue {
	out := &tracker.Issue{
		ID:          strconv.Itoa(issue.GetNumber()),
		Title:       issue.GetTitle(),
		Description: issue.GetBody(),
		Status:      normalizeStatus(issue),
		URL:         issue.GetHTMLURL(),
		Created:     issue.GetCreatedAt().Time,
		Updated:     issue.GetUpdatedAt().Time,
	}
	if issue.Assignee != nil {
		out.Assignee = issue.Assignee.GetLogin()
	}
	return out
}

// normalizeStatus maps GitHub state, close reason, and labels onto the
// shared enum.
func normalizeStatus(issue *gh.Issue) tracker.Status {
	if issue.GetState() == "closed" {
		if issue.GetStateReason() == "not_planned" {
			return tracker.StatusCancelled
		}
		return tracker.StatusComplete
	}
	if hasLabel(issue, inProgressLabel) {
		return tracker.StatusInProgress
	}
	return tracker.StatusNotStarted
}

func hasLabel(issue *gh.Issue, name string) bool {
	if issue == nil {
		return false
	}
	for _, label := range issue.Labels {
		if strings.EqualFold(label.GetName(), name) {
			return true
		}
	}
	return false
}

// parseNumber parses an issue number, accepting an optional leading #.
func parseNumber(id string) (int, error) {
	number, err := strconv.Atoi(strings.TrimPrefix(id, "#"))
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("github: invalid issue number %q", id)
	}
	return number, nil
}

// wrapErr maps API errors onto the shared sentinels.
func (t *Tracker) wrapErr(err error, resp *gh.Response, id string) error {
	if resp != nil && resp.StatusCode == 404 {
		return fmt.Errorf("%w: %s", ErrIssueNotFound, id)
	}
	return fmt.Errorf("github: %w", err)
}
