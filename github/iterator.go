package github

import (
	"context"
	"strings"

	"github.com/randalmurphal/trackwork/tracker"
)

// searchIterator pages through search results lazily. The search API
// is page-number based, so the iterator tracks the next page rather
// than an offset.
type searchIterator struct {
	tracker *Tracker
	query   string
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

	// Residual filtering can empty whole pages, so keep fetching until
	// something survives or the results end.
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

	issues, nextPage, err := it.tracker.searchPage(ctx, it.query, page)
	if err != nil {
		return err
	}

	for i := range issues {
		if it.matches(&issues[i]) {
			it.buffer = append(it.buffer, issues[i])
		}
	}
	it.page = nextPage
	it.done = nextPage == 0 || len(issues) == 0
	return nil
}

// matches re-checks the text criteria. The search API's in:title and
// in:body qualifiers scope the whole query rather than individual
// terms, so with both criteria set each term may have matched in
// either field.
func (it *searchIterator) matches(issue *tracker.Issue) bool {
	f := it.filter
	if f.Title == "" || f.Description == "" {
		return true
	}
	return strings.Contains(strings.ToLower(issue.Title), strings.ToLower(f.Title)) &&
		strings.Contains(strings.ToLower(issue.Description), strings.ToLower(f.Description))
}

// errIterator yields a single error, for filters the vendor cannot
// express. The error is deferred to Next so building a search never
// fails.
type errIterator struct{ err error }

func (it errIterator) Next(context.Context) (tracker.Issue, bool, error) {
	return tracker.Issue{}, false, it.err
}
