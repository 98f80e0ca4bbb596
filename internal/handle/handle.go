package handle

import (
	"context"
	"sync"

	"odosync/pkg/logging"
)

// State describes the lifecycle of the memoized value.
type State int

const (
	// StateUninitialized means no construction was requested since the last invalidation.
	StateUninitialized State = iota
	// StateResolving means a construction is in flight.
	StateResolving
	// StateReady means the last construction succeeded.
	StateReady
	// StateUnavailable means the last construction failed.
	StateUnavailable
)

// String makes State satisfy the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateResolving:
		return "Resolving"
	case StateReady:
		return "Ready"
	case StateUnavailable:
		return "Unavailable"
	default:
		return "Unknown"
	}
}

// Constructor builds the value. The context is cancelled when the handle is
// invalidated or closed, and after the constructor returns; constructed
// values must not retain it.
type Constructor[T any] func(ctx context.Context) (T, error)

// Handle is a lazily created, memoized value with single-flight construction.
//
// The slot is either empty, holds an in-flight future, or holds a resolved
// future. Failed constructions resolve to the zero value with ok=false and
// stay memoized until Invalidate.
type Handle[T any] struct {
	mu sync.Mutex

	name      string
	construct Constructor[T]

	// future is nil while the slot is empty
	future *Future[T]
	// cancel aborts the in-flight construction
	cancel context.CancelFunc
	// generation changes on every (re)creation and invalidation
	generation uint64

	onReady []func(T)
	closed  bool
}

// New creates a handle that constructs values with construct. name is used in logs.
func New[T any](name string, construct Constructor[T]) *Handle[T] {
	return &Handle[T]{
		name:      name,
		construct: construct,
	}
}

// OnReady registers fn to run once per successful (re)creation, in the
// constructing goroutine. A construction that was invalidated before it
// finished never triggers fn.
func (h *Handle[T]) OnReady(fn func(T)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReady = append(h.onReady, fn)
}

// Get returns the memoized future, starting the construction if the slot is empty.
func (h *Handle[T]) Get() *Future[T] {
	h.mu.Lock()
	if h.future != nil {
		f := h.future
		h.mu.Unlock()
		return f
	}
	if h.closed {
		h.mu.Unlock()
		var zero T
		return resolvedFuture(zero, false)
	}

	ctx, cancel := context.WithCancel(context.Background())
	f := newFuture[T]()
	h.future = f
	h.cancel = cancel
	h.generation++
	gen := h.generation
	h.mu.Unlock()

	logging.Debug("ClientHandle", "Creating %s (generation %d)", h.name, gen)
	go h.resolve(ctx, cancel, gen, f)
	return f
}

func (h *Handle[T]) resolve(ctx context.Context, cancel context.CancelFunc, gen uint64, f *Future[T]) {
	defer cancel()

	value, err := h.construct(ctx)
	ok := err == nil
	if !ok {
		logging.Warn("ClientHandle", "Failed to create %s: %v", h.name, err)
		var zero T
		value = zero
	}
	f.complete(value, ok)

	h.mu.Lock()
	current := h.generation == gen && h.future == f
	hooks := make([]func(T), len(h.onReady))
	copy(hooks, h.onReady)
	h.mu.Unlock()

	if !current {
		logging.Debug("ClientHandle", "Discarding stale %s (generation %d)", h.name, gen)
		return
	}
	if ok {
		for _, hook := range hooks {
			hook(value)
		}
	}
}

// GetIfReady returns the value without blocking. ok is false when the value
// was never requested, is still resolving, or is unavailable.
func (h *Handle[T]) GetIfReady() (T, bool) {
	h.mu.Lock()
	f := h.future
	h.mu.Unlock()

	if f == nil {
		var zero T
		return zero, false
	}
	value, ok, resolved := f.Value()
	return value, ok && resolved
}

// State reports the current lifecycle state.
func (h *Handle[T]) State() State {
	h.mu.Lock()
	f := h.future
	h.mu.Unlock()

	if f == nil {
		return StateUninitialized
	}
	_, ok, resolved := f.Value()
	switch {
	case !resolved:
		return StateResolving
	case ok:
		return StateReady
	default:
		return StateUnavailable
	}
}

// Invalidate empties the slot and cancels any in-flight construction. The
// next Get constructs from scratch.
func (h *Handle[T]) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.invalidateLocked()
}

func (h *Handle[T]) invalidateLocked() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.future = nil
	h.generation++
}

// Close invalidates the handle and makes every later Get resolve to unavailable.
func (h *Handle[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.invalidateLocked()
}
