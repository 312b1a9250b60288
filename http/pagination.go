package http

import "context"

// PageFetcher fetches the page starting at offset startAt.
// Returns the items and the total number of items on the server.
type PageFetcher[T any] func(ctx context.Context, startAt int) (items []T, total int, err error)

// PageIterator provides iteration over offset-paginated API results.
// It lazily fetches pages as needed. It is not safe for concurrent use.
type PageIterator[T any] struct {
	fetch   PageFetcher[T]
	startAt int
	buffer  []T
	done    bool
	err     error
	total   int // Total items if known, -1 otherwise
	fetched int // Total items fetched so far
}

// NewPageIterator creates a new iterator with the given fetch function.
func NewPageIterator[T any](fetch PageFetcher[T]) *PageIterator[T] {
	return &PageIterator[T]{
		fetch: fetch,
		total: -1,
	}
}

// Next returns the next item from the iterator.
// Returns the item, true if an item was returned, and any error.
// When iteration is complete, returns (zero, false, nil).
func (p *PageIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	if p.err != nil {
		return zero, false, p.err
	}

	if len(p.buffer) == 0 && !p.done {
		items, total, err := p.fetch(ctx, p.startAt)
		if err != nil {
			p.err = err
			return zero, false, err
		}
		p.buffer = items
		p.total = total
		p.startAt += len(items)
		// An empty page ends iteration even if the server claims more.
		p.done = len(items) == 0 || p.startAt >= total
	}

	if len(p.buffer) == 0 {
		return zero, false, nil
	}

	item := p.buffer[0]
	p.buffer = p.buffer[1:]
	p.fetched++

	return item, true, nil
}

// All collects all items from the iterator into a slice.
func (p *PageIterator[T]) All(ctx context.Context) ([]T, error) {
	var all []T
	for {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		all = append(all, item)
	}
	return all, nil
}

// Err returns any error that occurred during iteration.
func (p *PageIterator[T]) Err() error {
	return p.err
}

// Total returns the total number of items if known, -1 otherwise.
func (p *PageIterator[T]) Total() int {
	return p.total
}

// Fetched returns the number of items returned so far.
func (p *PageIterator[T]) Fetched() int {
	return p.fetched
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

// ForEach calls fn for each item in the iterator.
// If fn returns an error, iteration stops and that error is returned.
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
