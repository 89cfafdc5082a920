package http

import "context"

// PageFetcher fetches one page of items starting at the given offset.
// It returns the page, whether more pages remain after it, and any
// error.
type PageFetcher[T any] func(ctx context.Context, start int) (items []T, hasMore bool, err error)

// PageIterator lazily iterates over a paginated list endpoint. Pages
// are fetched on demand as Next drains the buffer, and iteration stops
// once the configured limit is reached even if the vendor has more
// results.
type PageIterator[T any] struct {
	fetch   PageFetcher[T]
	buffer  []T
	start   int // Offset of the next page to fetch
	yielded int // Items handed out so far
	limit   int // Hard cap on yielded items; 0 = unlimited
	done    bool
	err     error
}

// NewPageIterator creates an iterator over the given fetch function.
func NewPageIterator[T any](fetch PageFetcher[T]) *PageIterator[T] {
	return &PageIterator[T]{fetch: fetch}
}

// Limit caps the number of items the iterator will yield. Once the cap
// is reached no further pages are fetched. Returns the iterator for
// chaining.
func (p *PageIterator[T]) Limit(n int) *PageIterator[T] {
	p.limit = n
	return p
}

// Next returns the next item. It returns (zero, false, nil) when
// iteration is complete and (zero, false, err) when a page fetch
// failed; the error is sticky.
func (p *PageIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	if p.err != nil {
		return zero, false, p.err
	}
	if p.limit > 0 && p.yielded >= p.limit {
		return zero, false, nil
	}

	if len(p.buffer) == 0 && !p.done {
		items, hasMore, err := p.fetch(ctx, p.start)
		if err != nil {
			p.err = err
			return zero, false, err
		}
		p.buffer = items
		p.start += len(items)
		p.done = !hasMore || len(items) == 0
	}

	if len(p.buffer) == 0 {
		return zero, false, nil
	}

	item := p.buffer[0]
	p.buffer = p.buffer[1:]
	p.yielded++

	return item, true, nil
}

// All drains the iterator into a slice, fetching every remaining page
// up to the limit.
func (p *PageIterator[T]) All(ctx context.Context) ([]T, error) {
	var all []T
	for {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return all, nil
		}
		all = append(all, item)
	}
}

// Take returns up to n items from the iterator.
func (p *PageIterator[T]) Take(ctx context.Context, n int) ([]T, error) {
	var items []T
	for len(items) < n {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		items = append(items, item)
	}
	return items, nil
}

// ForEach calls fn for each remaining item. Iteration stops at the
// first error from the fetcher or from fn.
func (p *PageIterator[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(item); err != nil {
			return err
		}
	}
}

// Err returns the sticky error from a failed page fetch, if any.
func (p *PageIterator[T]) Err() error {
	return p.err
}

// Yielded returns how many items have been handed out so far.
func (p *PageIterator[T]) Yielded() int {
	return p.yielded
}
