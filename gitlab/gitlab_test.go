package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	gl "github.com/xanzy/go-gitlab"

	"github.com/randalmurphal/trackwork/tracker"
)

func newTestTracker(t *testing.T, handler http.Handler) *Tracker {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := gl.NewClient("token", gl.WithBaseURL(server.URL+"/api/v4"))
	if err != nil {
		t.Fatal(err)
	}

	tr, err := New(client, "acme/widgets")
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name  string
		issue *gl.Issue
		want  tracker.Status
	}{
		{"opened unlabeled", &gl.Issue{State: "opened"}, tracker.StatusNotStarted},
		{
			"opened in progress",
			&gl.Issue{State: "opened", Labels: gl.Labels{"In Progress"}},
			tracker.StatusInProgress,
		},
		{"closed", &gl.Issue{State: "closed"}, tracker.StatusComplete},
		{
			"closed cancelled",
			&gl.Issue{State: "closed", Labels: gl.Labels{"cancelled"}},
			tracker.StatusCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeStatus(tt.issue); got != tt.want {
				t.Errorf("normalizeStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseIID(t *testing.T) {
	if n, err := parseIID("#7"); err != nil || n != 7 {
		t.Errorf("parseIID(#7) = %d, %v", n, err)
	}
	for _, bad := range []string{"", "x", "0", "-3"} {
		if _, err := parseIID(bad); err == nil {
			t.Errorf("parseIID(%q) succeeded", bad)
		}
	}
}

func TestParseDueDate(t *testing.T) {
	if _, err := parseDueDate("2026-03-01"); err != nil {
		t.Errorf("parseDueDate: %v", err)
	}
	if _, err := parseDueDate("03/01/2026"); err == nil {
		t.Error("wrong layout accepted")
	}
}

func TestGetIssue(t *testing.T) {
	tr := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v4/projects/acme/widgets/issues/7" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          7,
			"iid":         7,
			"title":       "Fix the widget",
			"description": "details",
			"state":       "opened",
			"labels":      []string{"in progress"},
			"due_date":    "2026-03-01",
			"web_url":     "https://gitlab.com/acme/widgets/-/issues/7",
			"assignee":    map[string]any{"username": "dev"},
		})
	}))

	issue, err := tr.GetIssue(context.Background(), "7")
	if err != nil {
		t.Fatalf("GetIssue: %v", err)
	}

	if issue.ID != "7" || issue.Title != "Fix the widget" {
		t.Errorf("issue = %+v", issue)
	}
	if issue.Status != tracker.StatusInProgress {
		t.Errorf("Status = %q", issue.Status)
	}
	if issue.DueDate != "2026-03-01" {
		t.Errorf("DueDate = %q", issue.DueDate)
	}
	if issue.Assignee != "dev" {
		t.Errorf("Assignee = %q", issue.Assignee)
	}
}

func TestGetIssueNotFound(t *testing.T) {
	tr := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"404 Not found"}`))
	}))

	_, err := tr.GetIssue(context.Background(), "99")
	if !errors.Is(err, tracker.ErrIssueNotFound) {
		t.Errorf("err = %v, want tracker.ErrIssueNotFound", err)
	}
}

func TestDeleteIssue(t *testing.T) {
	var deleted string
	tr := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q", r.Method)
		}
		deleted = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := tr.DeleteIssue(context.Background(), "7"); err != nil {
		t.Fatalf("DeleteIssue: %v", err)
	}
	if deleted != "/api/v4/projects/acme/widgets/issues/7" {
		t.Errorf("deleted path = %q", deleted)
	}
}

func TestIteratorResidualFilters(t *testing.T) {
	it := &searchIterator{filter: tracker.Filter{
		DueBefore: "2026-02-01",
	}}

	if !it.matches(&tracker.Issue{DueDate: "2026-01-15"}) {
		t.Error("issue due before the bound should match")
	}
	if it.matches(&tracker.Issue{DueDate: "2026-02-01"}) {
		t.Error("due-before is strict; equal date should not match")
	}
	if it.matches(&tracker.Issue{}) {
		t.Error("issue without a due date should not match a due filter")
	}

	both := &searchIterator{filter: tracker.Filter{
		Title:       "login",
		Description: "flaky",
	}}
	if !both.matches(&tracker.Issue{Description: "this test is FLAKY"}) {
		t.Error("case-insensitive description match failed")
	}
	if both.matches(&tracker.Issue{Description: "unrelated"}) {
		t.Error("non-matching description matched")
	}
}

func TestCreateIssueValidation(t *testing.T) {
	tr := &Tracker{project: "acme/widgets"}
	ctx := context.Background()

	if _, err := tr.CreateIssue(ctx, tracker.CreateOptions{}); !errors.Is(err, tracker.ErrTitleRequired) {
		t.Errorf("missing title err = %v", err)
	}
	if _, err := tr.CreateIssue(ctx, tracker.CreateOptions{Title: "x", DueDate: "bad"}); err == nil {
		t.Error("bad due date accepted")
	}
}
