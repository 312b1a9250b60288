// Package promise provides deferred values for asynchronous API calls.
//
// A Promise settles exactly once, either with a value or with an error.
// Continuations attached with Then run on whichever goroutine observes the
// settlement, never necessarily on the caller's goroutine.
//
//	p := promise.Go(func() (int, error) { return compute() })
//	doubled := promise.Then(p, func(v int) (int, error) { return v * 2, nil })
//	v, err := doubled.Get(ctx)
package promise

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Promise is a handle to a value that becomes available asynchronously.
type Promise[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newPromise[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

func (p *Promise[T]) settle(val T, err error) {
	p.val = val
	p.err = err
	close(p.done)
}

// Go runs fn on a new goroutine and returns a promise of its result.
func Go[T any](fn func() (T, error)) *Promise[T] {
	p := newPromise[T]()
	go func() {
		p.settle(fn())
	}()
	return p
}

// Resolve returns a promise already settled with val.
func Resolve[T any](val T) *Promise[T] {
	p := newPromise[T]()
	p.settle(val, nil)
	return p
}

// Reject returns a promise already settled with err.
func Reject[T any](err error) *Promise[T] {
	p := newPromise[T]()
	var zero T
	p.settle(zero, err)
	return p
}

// Done returns a channel closed once the promise settles.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the promise settles.
func (p *Promise[T]) Wait() (T, error) {
	<-p.done
	return p.val, p.err
}

// Get blocks until the promise settles or ctx is done.
// Abandoning a promise through ctx does not stop the underlying work.
func (p *Promise[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then chains fn onto p. If p fails, fn is skipped and the error propagates.
func Then[T, U any](p *Promise[T], fn func(T) (U, error)) *Promise[U] {
	return Go(func() (U, error) {
		val, err := p.Wait()
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(val)
	})
}

// Discard converts p into a promise that carries only its error.
func Discard[T any](p *Promise[T]) *Promise[struct{}] {
	return Then(p, func(T) (struct{}, error) { return struct{}{}, nil })
}

// All waits for every promise and returns their values in order.
// The first error observed is returned.
func All[T any](ctx context.Context, ps ...*Promise[T]) ([]T, error) {
	out := make([]T, len(ps))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range ps {
		g.Go(func() error {
			val, err := p.Get(gctx)
			if err != nil {
				return err
			}
			out[i] = val
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
