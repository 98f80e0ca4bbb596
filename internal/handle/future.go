package handle

import (
	"context"
	"sync"
)

// Future is the shared result of one construction. It resolves exactly once.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	ok    bool
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolvedFuture returns an already completed future.
func resolvedFuture[T any](value T, ok bool) *Future[T] {
	f := newFuture[T]()
	f.complete(value, ok)
	return f
}

func (f *Future[T]) complete(value T, ok bool) {
	f.once.Do(func() {
		f.value = value
		f.ok = ok
		close(f.done)
	})
}

// Done is closed once the future resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves or ctx is done. ok is false when the
// construction failed or ctx ended first.
func (f *Future[T]) Wait(ctx context.Context) (T, bool) {
	select {
	case <-f.done:
		return f.value, f.ok
	case <-ctx.Done():
		var zero T
		return zero, false
	}
}

// Value returns the result without blocking. resolved is false while the
// construction is still running.
func (f *Future[T]) Value() (value T, ok bool, resolved bool) {
	select {
	case <-f.done:
		return f.value, f.ok, true
	default:
		var zero T
		return zero, false, false
	}
}
