package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrLockTimeout is wrapped by the error returned when a query could not
// acquire its key's lock within the configured timeout. It converts a stuck
// dependency into a diagnosable failure instead of a silent hang.
var ErrLockTimeout = errors.New("cache: lock acquisition timeout")

// keyLock is a mutex that supports acquisition with a deadline. The
// buffered channel holds the single token; whoever receives it owns the
// critical section.
type keyLock struct {
	ch chan struct{}
}

func newKeyLock() *keyLock {
	l := &keyLock{ch: make(chan struct{}, 1)}
	l.ch <- struct{}{}
	return l
}

// acquire blocks until the lock is free or timeout elapses. name identifies
// the stuck query in the returned error.
func (l *keyLock) acquire(timeout time.Duration, name string) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-l.ch:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: query %s not released within %s", ErrLockTimeout, name, timeout)
	}
}

func (l *keyLock) release() {
	l.ch <- struct{}{}
}

// lockRegistry hands out one keyLock per cache key, created on first
// reference and retained for the life of the process. The key space is
// bounded by the number of distinct queries in a run, so entries are never
// evicted.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[string]*keyLock)}
}

func (r *lockRegistry) lockFor(key string) *keyLock {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[key]
	if !ok {
		l = newKeyLock()
		r.locks[key] = l
	}
	return l
}
