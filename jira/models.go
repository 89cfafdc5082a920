package jira

import (
	"fmt"
	"regexp"
	"time"
)

// issueKeyPattern matches Jira issue keys like "PROJ-123".
var issueKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*-\d+$`)

// ValidateIssueKey checks that key looks like a Jira issue key.
func ValidateIssueKey(key string) error {
	if !issueKeyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrIssueKeyInvalid, key)
	}
	return nil
}

// Issue is a Jira issue as returned by the REST API.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self"`
	Fields IssueFields `json:"fields"`
}

// IssueFields holds the subset of issue fields this client reads and
// writes. Description is any because Cloud (v3) returns ADF while
// Server (v2) returns wiki markup strings.
type IssueFields struct {
	Summary     string     `json:"summary"`
	Description any        `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Assignee    *User      `json:"assignee,omitempty"`
	Reporter    *User      `json:"reporter,omitempty"`
	Project     *Project   `json:"project,omitempty"`
	IssueType   *IssueType `json:"issuetype,omitempty"`
	DueDate     string     `json:"duedate,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
	Created     string     `json:"created,omitempty"`
	Updated     string     `json:"updated,omitempty"`
}

// Status is a Jira workflow status.
type Status struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category *StatusCategory `json:"statusCategory,omitempty"`
}

// StatusCategory groups workflow statuses. Jira defines exactly three
// category keys: "new", "indeterminate", and "done".
type StatusCategory struct {
	ID   int    `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// User is a Jira user reference.
type User struct {
	AccountID    string `json:"accountId,omitempty"`
	Name         string `json:"name,omitempty"` // Server/DC only
	EmailAddress string `json:"emailAddress,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	Active       bool   `json:"active,omitempty"`
}

// Project is a Jira project reference.
type Project struct {
	ID   string `json:"id,omitempty"`
	Key  string `json:"key,omitempty"`
	Name string `json:"name,omitempty"`
}

// IssueType is a Jira issue type reference.
type IssueType struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Subtask bool   `json:"subtask,omitempty"`
}

// SearchResponse is a page of search results. The enhanced Cloud
// endpoint signals the end with isLast and a continuation token, while
// the legacy endpoint reports the total match count.
type SearchResponse struct {
	StartAt       int     `json:"startAt"`
	MaxResults    int     `json:"maxResults"`
	Total         int     `json:"total"`
	IsLast        *bool   `json:"isLast,omitempty"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
	Issues        []Issue `json:"issues"`
}

// CreateIssueRequest is the payload for issue creation.
type CreateIssueRequest struct {
	Fields CreateIssueFields `json:"fields"`
}

// CreateIssueFields holds the writable fields for issue creation.
type CreateIssueFields struct {
	Project     Project   `json:"project"`
	Summary     string    `json:"summary"`
	Description any       `json:"description,omitempty"`
	IssueType   IssueType `json:"issuetype"`
	Assignee    *User     `json:"assignee,omitempty"`
	DueDate     string    `json:"duedate,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
}

// CreateIssueResponse is the response from issue creation.
type CreateIssueResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// UpdateIssueRequest is the payload for a sparse field update. Only
// populated entries in Fields are sent.
type UpdateIssueRequest struct {
	Fields map[string]any `json:"fields"`
}

// Transition is one available workflow transition on an issue.
type Transition struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	To   *Status `json:"to,omitempty"`
}

// TransitionsResponse is the response from the transitions endpoint.
type TransitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}

// TransitionRequest is the payload for executing a transition.
type TransitionRequest struct {
	Transition TransitionID `json:"transition"`
}

// TransitionID references a transition by ID.
type TransitionID struct {
	ID string `json:"id"`
}

// jiraTimeFormat is Jira's timestamp layout, e.g.
// "2024-01-15T10:30:00.000+0000".
const jiraTimeFormat = "2006-01-02T15:04:05.000-0700"

// ParseTime parses a Jira timestamp. Returns the zero time for empty
// or unparseable input.
func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(jiraTimeFormat, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}

// FormatTime formats a time in Jira's timestamp layout.
func FormatTime(t time.Time) string {
	return t.Format(jiraTimeFormat)
}
