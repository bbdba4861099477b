// Package loader provides an at-most-once initialization guard for gateway
// objects that fetch expensive shared state. Many goroutines may demand the
// data concurrently; the initializer runs exactly once and everyone waits
// for the same outcome.
package loader

import (
	"context"
	"sync"
)

// Loader guards a zero-argument initializer. The first EnsureLoaded call
// starts it in a background goroutine; every call, first or later, blocks
// until it has finished and returns its error verbatim. The Loader never
// retries: a failed load stays failed for the lifetime of the instance, and
// recovery means composing retry into the initializer or constructing a new
// Loader.
//
// The initializer mutates the owning gateway as a side effect; the Loader
// itself exposes no result. Callers read the loaded data through the
// gateway's own accessors after EnsureLoaded returns nil.
type Loader struct {
	init func(context.Context) error

	mu   sync.Mutex
	done chan struct{}
	err  error
}

// New returns a Loader for the given initializer.
func New(init func(context.Context) error) *Loader {
	return &Loader{init: init}
}

// EnsureLoaded blocks until the initializer has completed at least once in
// the lifetime of this Loader, starting it if no call did so yet. The
// check-then-start step is guarded by a mutex, so concurrent first callers
// agree on a single run.
//
// ctx cancels only this caller's wait, never the load itself: the load is
// shared state, and one impatient caller must not poison it for the others.
// The load runs with context.Background().
func (l *Loader) EnsureLoaded(ctx context.Context) error {
	l.mu.Lock()
	if l.done == nil {
		l.done = make(chan struct{})
		go func() {
			l.err = l.init(context.Background())
			close(l.done)
		}()
	}
	done := l.done
	l.mu.Unlock()

	select {
	case <-done:
		return l.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Loaded reports whether the initializer has already completed. It never
// blocks.
func (l *Loader) Loaded() bool {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return true
	default:
		return false
	}
}
