package jira

import (
	"regexp"
	"strings"

	"github.com/randalmurphal/trackwork/tracker"
)

// jqlSpecialChars matches JQL reserved characters that must be escaped
// inside quoted strings.
var jqlSpecialChars = regexp.MustCompile(`(["'*?=~><!+\-:&|()\[\]{}\\^])`)

// EscapeJQL escapes JQL reserved characters in a search term so it can
// be embedded in a quoted clause.
func EscapeJQL(s string) string {
	return jqlSpecialChars.ReplaceAllString(s, `\$1`)
}

// statusClause returns the JQL clause selecting issues in the given
// normalized status. The first two map cleanly onto Jira's built-in
// status categories; complete and cancelled both live in the "Done"
// category and are told apart by status name.
func statusClause(status tracker.Status) string {
	switch status {
	case tracker.StatusNotStarted:
		return `statusCategory = "To Do"`
	case tracker.StatusInProgress:
		return `statusCategory = "In Progress"`
	case tracker.StatusComplete:
		return `statusCategory = "Done" AND status NOT IN ("Cancelled", "Canceled", "Won't Do", "Rejected")`
	case tracker.StatusCancelled:
		return `status IN ("Cancelled", "Canceled", "Won't Do", "Rejected")`
	}
	return ""
}

// BuildJQL renders a search filter as a JQL query. Clauses combine
// with AND; an empty filter gets a bounding clause so the query is
// still valid, and results always come back most recently updated
// first.
func BuildJQL(project string, filter tracker.Filter) string {
	var clauses []string

	if project != "" {
		clauses = append(clauses, `project = "`+EscapeJQL(project)+`"`)
	}
	if filter.Title != "" {
		clauses = append(clauses, `summary ~ "`+EscapeJQL(filter.Title)+`"`)
	}
	if filter.Description != "" {
		clauses = append(clauses, `description ~ "`+EscapeJQL(filter.Description)+`"`)
	}
	if filter.Status != "" {
		if clause := statusClause(filter.Status); clause != "" {
			clauses = append(clauses, clause)
		}
	}
	if filter.Assignee != "" {
		clauses = append(clauses, `assignee = "`+EscapeJQL(filter.Assignee)+`"`)
	}
	if filter.DueDate != "" {
		clauses = append(clauses, `due = "`+EscapeJQL(filter.DueDate)+`"`)
	}
	if filter.DueBefore != "" {
		clauses = append(clauses, `due < "`+EscapeJQL(filter.DueBefore)+`"`)
	}
	if filter.DueAfter != "" {
		clauses = append(clauses, `due > "`+EscapeJQL(filter.DueAfter)+`"`)
	}

	if len(clauses) == 0 {
		// Jira rejects an empty query on some endpoints.
		clauses = append(clauses, "project IS NOT EMPTY")
	}

	return strings.Join(clauses, " AND ") + " ORDER BY updated DESC"
}
