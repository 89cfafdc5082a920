package tracker

import (
	"context"
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input string
		want  Status
		ok    bool
	}{
		{"not_started", StatusNotStarted, true},
		{"not-started", StatusNotStarted, true},
		{"Not Started", StatusNotStarted, true},
		{"todo", StatusNotStarted, true},
		{"open", StatusNotStarted, true},
		{"in_progress", StatusInProgress, true},
		{"In Progress", StatusInProgress, true},
		{"complete", StatusComplete, true},
		{"done", StatusComplete, true},
		{"closed", StatusComplete, true},
		{"resolved", StatusComplete, true},
		{"cancelled", StatusCancelled, true},
		{"canceled", StatusCancelled, true},
		{"  CANCELLED  ", StatusCancelled, true},
		{"", "", false},
		{"blocked", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseStatus(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseStatus(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses() {
		if !s.Valid() {
			t.Errorf("Status(%q).Valid() = false", s)
		}
	}
	if Status("blocked").Valid() {
		t.Error("Status(blocked).Valid() = true")
	}
	if Status("").Valid() {
		t.Error("empty status reported valid")
	}
}

func TestStatusDisplayName(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusNotStarted, "Not Started"},
		{StatusInProgress, "In Progress"},
		{StatusComplete, "Complete"},
		{StatusCancelled, "Cancelled"},
	}

	for _, tt := range tests {
		if got := tt.status.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestUpdateOptionsIsZero(t *testing.T) {
	if !(UpdateOptions{}).IsZero() {
		t.Error("empty UpdateOptions not zero")
	}

	title := "new"
	if (UpdateOptions{Title: &title}).IsZero() {
		t.Error("UpdateOptions with title reported zero")
	}

	empty := ""
	if (UpdateOptions{Assignee: &empty}).IsZero() {
		t.Error("UpdateOptions clearing assignee reported zero")
	}
}

func TestFilterCap(t *testing.T) {
	if got := (Filter{}).Cap(); got != DefaultMaxResults {
		t.Errorf("zero filter cap = %d, want %d", got, DefaultMaxResults)
	}
	if got := (Filter{MaxResults: 5}).Cap(); got != 5 {
		t.Errorf("cap = %d, want 5", got)
	}
	if got := (Filter{MaxResults: -1}).Cap(); got != DefaultMaxResults {
		t.Errorf("negative cap = %d, want %d", got, DefaultMaxResults)
	}
}

func TestCollectIssues(t *testing.T) {
	issues := []Issue{
		{ID: "1", Title: "first"},
		{ID: "2", Title: "second"},
	}

	got, err := CollectIssues(context.Background(), SliceIterator(issues))
	if err != nil {
		t.Fatalf("CollectIssues: %v", err)
	}
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Errorf("CollectIssues = %+v", got)
	}
}

func TestIsNotFound(t *testing.T) {
	wrapped := errors.Join(errors.New("jira: boom"), ErrIssueNotFound)
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound(wrapped) = false")
	}
	if IsNotFound(errors.New("other")) {
		t.Error("IsNotFound(other) = true")
	}
}
