package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	twhttp "github.com/randalmurphal/trackwork/http"
	"github.com/randalmurphal/trackwork/tracker"
)

// maxPageSize is the largest page Jira Cloud returns per search
// request regardless of what is asked for.
const maxPageSize = 100

// searchFields are the issue fields requested on search, matching what
// the normalized issue model needs.
var searchFields = []string{
	"summary", "description", "status", "assignee", "duedate", "created", "updated",
}

// Client is a Jira REST API client covering the issue CRUD surface,
// search, and workflow transitions. It works against both Cloud (API
// v3) and Server/DC (API v2).
type Client struct {
	http    *twhttp.Client
	config  *Config
	version APIVersion
	connect *ConnectAuth
}

// NewClient creates a Jira client from the given configuration.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jira: %w", err)
	}

	c := &Client{
		config:  cfg.Clone(),
		version: cfg.GetAPIVersion(),
	}
	if cfg.Auth.Type == AuthConnect {
		c.connect = NewConnectAuth(cfg.Auth.AppKey, cfg.Auth.SharedSecret)
	}

	c.http = twhttp.NewClient(twhttp.ClientConfig{
		Client:        &http.Client{Timeout: cfg.HTTP.Timeout},
		BaseURL:       strings.TrimRight(cfg.URL, "/"),
		Service:       "jira",
		MaxRetries:    cfg.HTTP.MaxRetries,
		RetryWait:     cfg.HTTP.RetryWait,
		BeforeRequest: c.setAuth,
		ErrorParser:   parseAPIError,
	})

	return c, nil
}

// setAuth attaches credentials to an outgoing request.
func (c *Client) setAuth(req *http.Request) {
	switch c.config.Auth.Type {
	case AuthAPIToken:
		req.SetBasicAuth(c.config.Auth.Email, c.config.Auth.Token)
	case AuthBasic:
		req.SetBasicAuth(c.config.Auth.Username, c.config.Auth.Password)
	case AuthPAT:
		req.Header.Set("Authorization", "Bearer "+c.config.Auth.Token)
	case AuthConnect:
		_ = c.connect.Sign(req)
	}
}

// apiPath builds a REST API path for the configured version.
func (c *Client) apiPath(resource string) string {
	version := "2"
	if c.version == APIVersionV3 {
		version = "3"
	}
	return "/rest/api/" + version + "/" + strings.TrimPrefix(resource, "/")
}

// BrowseURL returns the web URL for an issue key.
func (c *Client) BrowseURL(key string) string {
	return strings.TrimRight(c.config.URL, "/") + "/browse/" + key
}

// GetIssue fetches an issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	if err := ValidateIssueKey(key); err != nil {
		return nil, err
	}

	var issue Issue
	path := c.apiPath("issue/"+key) + "?fields=" + url.QueryEscape(strings.Join(searchFields, ","))
	if err := c.http.Get(ctx, path, &issue); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrIssueNotFound, key)
		}
		return nil, err
	}

	return &issue, nil
}

// SearchPage fetches one page of search results for a JQL query.
func (c *Client) SearchPage(ctx context.Context, jql string, startAt, pageSize int) (*SearchResponse, error) {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := url.Values{}
	params.Set("jql", jql)
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(pageSize))
	params.Set("fields", strings.Join(searchFields, ","))

	var resp SearchResponse
	if err := c.http.Get(ctx, c.apiPath("search")+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// HasMore reports whether more results exist past this page.
func (r *SearchResponse) HasMore() bool {
	if r.IsLast != nil {
		return !*r.IsLast
	}
	return r.StartAt+len(r.Issues) < r.Total
}

// CreateIssue creates an issue and returns its key.
func (c *Client) CreateIssue(ctx context.Context, req *CreateIssueRequest) (*CreateIssueResponse, error) {
	var resp CreateIssueResponse
	if err := c.http.Post(ctx, c.apiPath("issue"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateIssue applies a sparse field update to an issue.
func (c *Client) UpdateIssue(ctx context.Context, key string, req *UpdateIssueRequest) error {
	if err := ValidateIssueKey(key); err != nil {
		return err
	}
	if len(req.Fields) == 0 {
		return nil
	}

	if err := c.http.Put(ctx, c.apiPath("issue/"+key), req, nil); err != nil {
		if notFound(err) {
			return fmt.Errorf("%w: %s", ErrIssueNotFound, key)
		}
		return err
	}
	return nil
}

// DeleteIssue deletes an issue by key.
func (c *Client) DeleteIssue(ctx context.Context, key string) error {
	if err := ValidateIssueKey(key); err != nil {
		return err
	}

	if err := c.http.Delete(ctx, c.apiPath("issue/"+key)); err != nil {
		if notFound(err) {
			return fmt.Errorf("%w: %s", ErrIssueNotFound, key)
		}
		return err
	}
	return nil
}

// GetTransitions lists the workflow transitions currently available on
// an issue.
func (c *Client) GetTransitions(ctx context.Context, key string) ([]Transition, error) {
	if err := ValidateIssueKey(key); err != nil {
		return nil, err
	}

	var resp TransitionsResponse
	path := c.apiPath("issue/"+key+"/transitions") + "?expand=transitions.fields"
	if err := c.http.Get(ctx, path, &resp); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrIssueNotFound, key)
		}
		return nil, err
	}

	return resp.Transitions, nil
}

// TransitionIssue executes a workflow transition by ID.
func (c *Client) TransitionIssue(ctx context.Context, key, transitionID string) error {
	req := &TransitionRequest{Transition: TransitionID{ID: transitionID}}
	if err := c.http.Post(ctx, c.apiPath("issue/"+key+"/transitions"), req, nil); err != nil {
		if notFound(err) {
			return fmt.Errorf("%w: %s", ErrIssueNotFound, key)
		}
		return err
	}
	return nil
}

// ApplyStatus moves an issue to the normalized target status via
// whatever workflow transition reaches it. Statuses are not directly
// writable in Jira, so an unreachable target fails with a
// TransitionError listing what was available.
func (c *Client) ApplyStatus(ctx context.Context, key string, target tracker.Status) error {
	transitions, err := c.GetTransitions(ctx, key)
	if err != nil {
		return err
	}

	transition, ok := FindTransition(transitions, target)
	if !ok {
		return &TransitionError{
			IssueKey:  key,
			Target:    target,
			Available: transitionNames(transitions),
		}
	}

	return c.TransitionIssue(ctx, key, transition.ID)
}

// FindUser looks up a user by email or name. Cloud identifies users
// by opaque account ID, so assignment goes through this lookup first.
func (c *Client) FindUser(ctx context.Context, query string) (*User, error) {
	params := url.Values{}
	if c.version == APIVersionV3 {
		params.Set("query", query)
	} else {
		params.Set("username", query)
	}

	var users []User
	if err := c.http.Get(ctx, c.apiPath("user/search")+"?"+params.Encode(), &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("jira: no user matching %q", query)
	}
	return &users[0], nil
}

// descriptionValue renders plain text as the description wire value
// for the configured API version: ADF for v3, a string for v2.
func (c *Client) descriptionValue(text string) any {
	if c.version == APIVersionV3 {
		return TextToADF(text)
	}
	return text
}
