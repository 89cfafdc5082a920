package jira

import (
	"strings"
	"testing"

	"github.com/randalmurphal/trackwork/tracker"
)

func TestEscapeJQL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain words", "plain words"},
		{`say "hi"`, `say \"hi\"`},
		{"a+b", `a\+b`},
		{"50% [done]", `50% \[done\]`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		if got := EscapeJQL(tt.input); got != tt.want {
			t.Errorf("EscapeJQL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBuildJQLEmptyFilter(t *testing.T) {
	got := BuildJQL("", tracker.Filter{})
	want := "project IS NOT EMPTY ORDER BY updated DESC"
	if got != want {
		t.Errorf("BuildJQL = %q, want %q", got, want)
	}
}

func TestBuildJQLCombinesWithAND(t *testing.T) {
	got := BuildJQL("PROJ", tracker.Filter{
		Title:    "login bug",
		Assignee: "dev@example.com",
	})

	for _, clause := range []string{
		`project = "PROJ"`,
		`summary ~ "login bug"`,
		`assignee = "dev@example.com"`,
	} {
		if !strings.Contains(got, clause) {
			t.Errorf("missing clause %q in %q", clause, got)
		}
	}
	if strings.Count(got, " AND ") != 2 {
		t.Errorf("expected 2 ANDs in %q", got)
	}
	if !strings.HasSuffix(got, "ORDER BY updated DESC") {
		t.Errorf("missing order clause in %q", got)
	}
}

func TestBuildJQLStatusClauses(t *testing.T) {
	tests := []struct {
		status tracker.Status
		want   string
	}{
		{tracker.StatusNotStarted, `statusCategory = "To Do"`},
		{tracker.StatusInProgress, `statusCategory = "In Progress"`},
		{tracker.StatusComplete, `statusCategory = "Done"`},
		{tracker.StatusCancelled, `status IN ("Cancelled"`},
	}

	for _, tt := range tests {
		got := BuildJQL("", tracker.Filter{Status: tt.status})
		if !strings.Contains(got, tt.want) {
			t.Errorf("status %s: missing %q in %q", tt.status, tt.want, got)
		}
	}
}

func TestBuildJQLDueDates(t *testing.T) {
	got := BuildJQL("", tracker.Filter{
		DueDate:   "2026-01-15",
		DueBefore: "2026-02-01",
		DueAfter:  "2026-01-01",
	})

	for _, clause := range []string{
		`due = "2026-01-15"`,
		`due < "2026-02-01"`,
		`due > "2026-01-01"`,
	} {
		if !strings.Contains(got, clause) {
			t.Errorf("missing clause %q in %q", clause, got)
		}
	}
}

func TestBuildJQLEscapesUserInput(t *testing.T) {
	got := BuildJQL("", tracker.Filter{Title: `quo"te OR project = X`})
	if !strings.Contains(got, `summary ~ "quo\"te OR project \= X"`) {
		t.Errorf("expected escaped clause in %q", got)
	}
}
