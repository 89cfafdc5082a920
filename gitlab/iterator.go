package gitlab

import (
	"context"
	"strings"

	"github.com/randalmurphal/trackwork/tracker"
)

// searchIterator pages through list results lazily, applying the
// criteria the API cannot express (exact due dates, combined title and
// description match) client-side before yielding.
type searchIterator struct {
	tracker *Tracker
	filter  tracker.Filter
	limit   int

	buffer  []tracker.Issue
	page    int // Next page to fetch; 0 before the first fetch
	yielded int
	done    bool
	err     error
}

// Next returns the next matching issue.
func (it *searchIterator) Next(ctx context.Context) (tracker.Issue, bool, error) {
	var zero tracker.Issue

	if it.err != nil {
		return zero, false, it.err
	}
	if it.limit > 0 && it.yielded >= it.limit {
		return zero, false, nil
	}

	// Client-side filtering can empty whole pages, so keep fetching
	// until something survives or the listing ends.
	for len(it.buffer) == 0 && !it.done {
		if err := it.fetchPage(ctx); err != nil {
			it.err = err
			return zero, false, err
		}
	}

	if len(it.buffer) == 0 {
		return zero, false, nil
	}

	issue := it.buffer[0]
	it.buffer = it.buffer[1:]
	it.yielded++
	return issue, true, nil
}

func (it *searchIterator) fetchPage(ctx context.Context) error {
	page := it.page
	if page == 0 {
		page = 1
	}

	issues, nextPage, err := it.tracker.listPage(ctx, it.filter, page)
	if err != nil {
		return err
	}

	for _, issue := range issues {
		converted := toIssue(issue)
		if it.matches(converted) {
			it.buffer = append(it.buffer, *converted)
		}
	}

	it.page = nextPage
	it.done = nextPage == 0 || len(issues) == 0
	return nil
}

// matches applies the residual criteria the list API did not.
func (it *searchIterator) matches(issue *tracker.Issue) bool {
	f := it.filter

	// listPage pushes down only one text search; check the other here.
	if f.Title != "" && f.Description != "" {
		if !strings.Contains(strings.ToLower(issue.Description), strings.ToLower(f.Description)) {
			return false
		}
	}

	if f.DueDate != "" && issue.DueDate != f.DueDate {
		return false
	}
	if f.DueBefore != "" && (issue.DueDate == "" || issue.DueDate >= f.DueBefore) {
		return false
	}
	if f.DueAfter != "" && (issue.DueDate == "" || issue.DueDate <= f.DueAfter) {
		return false
	}

	return true
}
