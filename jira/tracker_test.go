package jira

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/randalmurphal/trackwork/tracker"
)

func testConfig(url string) *Config {
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.APIVersion = APIVersionV3
	cfg.Project = "PROJ"
	cfg.Auth = AuthConfig{Type: AuthAPIToken, Email: "dev@example.com", Token: "secret"}
	cfg.HTTP.MaxRetries = 1
	cfg.HTTP.RetryWait = time.Millisecond
	return cfg
}

func newTestTracker(t *testing.T, handler http.Handler) (*Tracker, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tr, err := NewTracker(testConfig(server.URL))
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	return tr, server
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func sampleIssue(key, summary string) Issue {
	return Issue{
		ID:  "10001",
		Key: key,
		Fields: IssueFields{
			Summary:     summary,
			Description: "plain text",
			Status: &Status{
				Name:     "In Progress",
				Category: &StatusCategory{Key: "indeterminate"},
			},
			Assignee: &User{EmailAddress: "dev@example.com"},
			DueDate:  "2026-03-01",
			Created:  "2026-01-15T10:30:00.000+0000",
			Updated:  "2026-02-01T08:00:00.000+0000",
		},
	}
}

func TestGetIssue(t *testing.T) {
	var gotAuth string
	tr, server := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/3/issue/PROJ-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, sampleIssue("PROJ-1", "Fix the widget"))
	}))

	issue, err := tr.GetIssue(context.Background(), "PROJ-1")
	if err != nil {
		t.Fatalf("GetIssue: %v", err)
	}

	if gotAuth == "" {
		t.Error("request was not authenticated")
	}
	if issue.ID != "PROJ-1" {
		t.Errorf("ID = %q", issue.ID)
	}
	if issue.Title != "Fix the widget" {
		t.Errorf("Title = %q", issue.Title)
	}
	if issue.Status != tracker.StatusInProgress {
		t.Errorf("Status = %q", issue.Status)
	}
	if issue.Assignee != "dev@example.com" {
		t.Errorf("Assignee = %q", issue.Assignee)
	}
	if issue.URL != server.URL+"/browse/PROJ-1" {
		t.Errorf("URL = %q", issue.URL)
	}
	if issue.Created.IsZero() || issue.Updated.IsZero() {
		t.Error("timestamps not parsed")
	}
}

func TestGetIssueNotFound(t *testing.T) {
	tr, _ := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{"errorMessages": []string{"Issue does not exist"}})
	}))

	_, err := tr.GetIssue(context.Background(), "PROJ-404")
	if !errors.Is(err, tracker.ErrIssueNotFound) {
		t.Errorf("err = %v, want tracker.ErrIssueNotFound", err)
	}
	if !errors.Is(err, ErrIssueNotFound) {
		t.Errorf("err = %v, want jira.ErrIssueNotFound", err)
	}
}

func TestGetIssueInvalidKey(t *testing.T) {
	tr, _ := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an invalid key")
	}))

	if _, err := tr.GetIssue(context.Background(), "not a key"); !errors.Is(err, ErrIssueKeyInvalid) {
		t.Errorf("err = %v, want ErrIssueKeyInvalid", err)
	}
}

func TestSearchStopsAtCap(t *testing.T) {
	var requests int
	tr, _ := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/3/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		requests++

		startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("maxResults"))
		if pageSize != 3 {
			t.Errorf("maxResults = %d, want the filter cap 3", pageSize)
		}

		issues := make([]Issue, 3)
		for i := range issues {
			issues[i] = sampleIssue("PROJ-"+strconv.Itoa(startAt+i+1), "issue")
		}
		writeJSON(w, SearchResponse{StartAt: startAt, Total: 100, Issues: issues})
	}))

	it := tr.SearchIssues(context.Background(), tracker.Filter{Title: "issue", MaxResults: 3})
	if requests != 0 {
		t.Fatal("building the iterator fetched a page")
	}

	got, err := tracker.CollectIssues(context.Background(), it)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("results = %d, want 3", len(got))
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (cap reached on first page)", requests)
	}
}

func TestSearchPagesLazily(t *testing.T) {
	var requests int
	tr, _ := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))

		var issues []Issue
		if startAt < 4 {
			issues = []Issue{
				sampleIssue("PROJ-"+strconv.Itoa(startAt+1), "a"),
				sampleIssue("PROJ-"+strconv.Itoa(startAt+2), "b"),
			}
		}
		writeJSON(w, SearchResponse{StartAt: startAt, Total: 4, Issues: issues})
	}))

	// Cap above the page size so the iterator must page.
	cfgCap := 10
	it := tr.SearchIssues(context.Background(), tracker.Filter{MaxResults: cfgCap})

	ctx := context.Background()
	first, ok, err := it.Next(ctx)
	if err != nil || !ok {
		t.Fatalf("first Next = (%v, %v)", ok, err)
	}
	if first.ID != "PROJ-1" {
		t.Errorf("first.ID = %q", first.ID)
	}
	if requests != 1 {
		t.Fatalf("requests after one item = %d, want 1", requests)
	}

	got, err := tracker.CollectIssues(ctx, it)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 3 { // 4 total minus the one already consumed
		t.Errorf("remaining = %d, want 3", len(got))
	}
	if requests != 2 {
		t.Errorf("requests = %d, want 2", requests)
	}
}

func TestSearchErrorSurfacesFromNext(t *testing.T) {
	tr, _ := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]any{"errorMessages": []string{"bad jql"}})
	}))

	it := tr.SearchIssues(context.Background(), tracker.Filter{})
	_, _, err := it.Next(context.Background())
	if err == nil {
		t.Fatal("expected error from Next")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.ErrorMessages[0] != "bad jql" {
		t.Errorf("err = %v, want Jira APIError with message", err)
	}
}

func TestCreateIssue(t *testing.T) {
	var createBody CreateIssueRequest
	tr, _ := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/rest/api/3/issue":
			_ = json.NewDecoder(r.Body).Decode(&createBody)
			writeJSON(w, CreateIssueResponse{ID: "10002", Key: "PROJ-7"})
		case r.Method == http.MethodGet && r.URL.Path == "/rest/api/3/issue/PROJ-7":
			writeJSON(w, sampleIssue("PROJ-7", "New issue"))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))

	issue, err := tr.CreateIssue(context.Background(), tracker.CreateOptions{
		Title:       "New issue",
		Description: "details here",
		DueDate:     "2026-04-01",
	})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	if issue.ID != "PROJ-7" {
		t.Errorf("ID = %q", issue.ID)
	}
	if createBody.Fields.Project.Key != "PROJ" {
		t.Errorf("project = %+v", createBody.Fields.Project)
	}
	if createBody.Fields.IssueType.Name != "Task" {
		t.Errorf("issuetype = %+v", createBody.Fields.IssueType)
	}
	if createBody.Fields.DueDate != "2026-04-01" {
		t.Errorf("duedate = %q", createBody.Fields.DueDate)
	}
	// v3 descriptions go over the wire as ADF.
	if _, ok := createBody.Fields.Description.(map[string]any); !ok {
		t.Errorf("description = %T, want ADF object", createBody.Fields.Description)
	}
}

func TestCreateIssueRequiresTitle(t *testing.T) {
	tr, _ := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	_, err := tr.CreateIssue(context.Background(), tracker.CreateOptions{})
	if !errors.Is(err, tracker.ErrTitleRequired) {
		t.Errorf("err = %v, want ErrTitleRequired", err)
	}
}

func TestCreateIssueWithStatusTransitions(t *testing.T) {
	var transitioned string
	tr, _ := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/rest/api/3/issue":
			writeJSON(w, CreateIssueResponse{Key: "PROJ-8"})
		case r.Method == http.MethodGet && r.URL.Path == "/rest/api/3/issue/PROJ-8/transitions":
			writeJSON(w, TransitionsResponse{Transitions: []Transition{
				{ID: "21", Name: "Start Progress"},
			}})
		case r.Method == http.MethodPost && r.URL.Path == "/rest/api/3/issue/PROJ-8/transitions":
			var req TransitionRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			transitioned = req.Transition.ID
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/rest/api/3/issue/PROJ-8":
			writeJSON(w, sampleIssue("PROJ-8", "Started"))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))

	_, err := tr.CreateIssue(context.Background(), tracker.CreateOptions{
		Title:  "Started",
		Status: tracker.StatusInProgress,
	})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if transitioned != "21" {
		t.Errorf("transition id = %q, want 21", transitioned)
	}
}

func TestUpdateIssueSendsOnlyChangedFields(t *testing.T) {
	var putBody UpdateIssueRequest
	tr, _ := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			_ = json.NewDecoder(r.Body).Decode(&putBody)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			writeJSON(w, sampleIssue("PROJ-1", "Renamed"))
		}
	}))

	title := "Renamed"
	_, err := tr.UpdateIssue(context.Background(), "PROJ-1", tracker.UpdateOptions{Title: &title})
	if err != nil {
		t.Fatalf("UpdateIssue: %v", err)
	}

	if len(putBody.Fields) != 1 {
		t.Errorf("fields = %v, want only summary", putBody.Fields)
	}
	if putBody.Fields["summary"] != "Renamed" {
		t.Errorf("summary = %v", putBody.Fields["summary"])
	}
}

func TestUpdateIssueClearsFields(t *testing.T) {
	var putBody map[string]json.RawMessage
	tr, _ := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			var outer struct {
				Fields map[string]json.RawMessage `json:"fields"`
			}
			_ = json.NewDecoder(r.Body).Decode(&outer)
			putBody = outer.Fields
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			writeJSON(w, sampleIssue("PROJ-1", "x"))
		}
	}))

	empty := ""
	_, err := tr.UpdateIssue(context.Background(), "PROJ-1", tracker.UpdateOptions{
		Assignee: &empty,
		DueDate:  &empty,
	})
	if err != nil {
		t.Fatalf("UpdateIssue: %v", err)
	}

	if string(putBody["assignee"]) != "null" {
		t.Errorf("assignee = %s, want null", putBody["assignee"])
	}
	if string(putBody["duedate"]) != "null" {
		t.Errorf("duedate = %s, want null", putBody["duedate"])
	}
}

func TestUpdateIssueStatusUnreachable(t *testing.T) {
	tr, _ := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/rest/api/3/issue/PROJ-1/transitions":
			writeJSON(w, TransitionsResponse{Transitions: []Transition{
				{ID: "11", Name: "To Do", To: &Status{Category: &StatusCategory{Key: "new"}}},
			}})
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))

	status := tracker.StatusCancelled
	_, err := tr.UpdateIssue(context.Background(), "PROJ-1", tracker.UpdateOptions{Status: &status})

	var transErr *TransitionError
	if !errors.As(err, &transErr) {
		t.Fatalf("err = %v, want *TransitionError", err)
	}
	if transErr.Target != tracker.StatusCancelled {
		t.Errorf("Target = %q", transErr.Target)
	}
	if len(transErr.Available) != 1 || transErr.Available[0] != "To Do" {
		t.Errorf("Available = %v", transErr.Available)
	}
}

func TestDeleteIssue(t *testing.T) {
	var deleted string
	tr, _ := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q", r.Method)
		}
		deleted = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := tr.DeleteIssue(context.Background(), "PROJ-1"); err != nil {
		t.Fatalf("DeleteIssue: %v", err)
	}
	if deleted != "/rest/api/3/issue/PROJ-1" {
		t.Errorf("deleted path = %q", deleted)
	}
}

func TestDeleteIssueNotFound(t *testing.T) {
	tr, _ := newTestTracker(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	err := tr.DeleteIssue(context.Background(), "PROJ-404")
	if !errors.Is(err, tracker.ErrIssueNotFound) {
		t.Errorf("err = %v, want tracker.ErrIssueNotFound", err)
	}
}
