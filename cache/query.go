package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cloudlint/go-common/api"
)

// QueryConfig configures a cached query.
type QueryConfig struct {
	// Expire is the TTL for persisted entries. Zero (or negative) stores a
	// session entry instead: purged when the run ends, never visible to the
	// next run.
	Expire time.Duration
	// InMemory keeps results in a per-query memoization table instead of
	// the persistent store. Results keep their identity: a hit returns the
	// very value the computation produced.
	InMemory bool
}

// QueryFunc is the computation being cached, typically "call the cloud API
// and parse the response". Arguments must serialize to JSON so a
// deterministic key can be derived from them.
type QueryFunc[T any] func(ctx context.Context, args ...any) (T, error)

type memoResult[T any] struct {
	value T
	err   error
}

// Query wraps a QueryFunc with at-most-once-per-key semantics: key
// derivation, per-key locking, lookup-before-compute, store-after-compute
// and recoverable-failure caching. Concurrent callers with the same
// arguments serialize and all but the first get the stored result; callers
// with different arguments never contend.
type Query[T any] struct {
	svc  *Service
	name string
	cfg  QueryConfig
	fn   QueryFunc[T]

	memoMu sync.Mutex
	memo   map[string]memoResult[T]
}

// NewQuery returns a cached wrapper around fn. name must be unique across
// the program (by convention the fully qualified function name); it is both
// the readable key prefix and part of the hashed key material.
func NewQuery[T any](svc *Service, name string, cfg QueryConfig, fn QueryFunc[T]) *Query[T] {
	return &Query[T]{
		svc:  svc,
		name: name,
		cfg:  cfg,
		fn:   fn,
		memo: make(map[string]memoResult[T]),
	}
}

// Do invokes the query. The caller sees exactly what the wrapped function
// would have returned: a value, or an error. Recoverable API failures
// (*api.Error) are cached and replayed to subsequent callers of the same
// key; any other error propagates uncached. Inside a WithBypass scope the
// lookup is skipped but the fresh result is still stored.
func (q *Query[T]) Do(ctx context.Context, args ...any) (T, error) {
	var zero T
	if !q.svc.Enabled() {
		return q.fn(ctx, args...)
	}

	key, err := deriveKey(q.name, args)
	if err != nil {
		return zero, err
	}

	lock := q.svc.locks.lockFor(key)
	if err := lock.acquire(q.svc.cfg.LockTimeout, q.name); err != nil {
		return zero, err
	}
	defer lock.release()

	if q.cfg.InMemory {
		return q.doMemo(ctx, key, args)
	}
	return q.doStored(ctx, key, args)
}

func (q *Query[T]) doMemo(ctx context.Context, key string, args []any) (T, error) {
	if Bypassed(ctx) {
		q.memoMu.Lock()
		q.memo = make(map[string]memoResult[T])
		q.memoMu.Unlock()
	} else {
		q.memoMu.Lock()
		r, ok := q.memo[key]
		q.memoMu.Unlock()
		if ok {
			return r.value, r.err
		}
	}

	value, err := q.fn(ctx, args...)
	if err == nil || isRecoverable(err) {
		q.memoMu.Lock()
		q.memo[key] = memoResult[T]{value: value, err: err}
		q.memoMu.Unlock()
	}
	return value, err
}

func (q *Query[T]) doStored(ctx context.Context, key string, args []any) (T, error) {
	var zero T
	if !Bypassed(ctx) {
		if found, data := q.svc.get(ctx, key); found {
			var value T
			failure, err := decode(data, &value)
			switch {
			case err != nil:
				// Corrupt entry: recompute below and overwrite it.
				q.svc.logger.Warn("corrupt entry for %s, recomputing: %v", key, err)
			case failure != nil:
				return zero, failure
			default:
				return value, nil
			}
		}
	}

	value, err := q.fn(ctx, args...)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			if data, encErr := encodeFailure(apiErr); encErr == nil {
				q.svc.set(ctx, key, data, q.cfg.Expire)
			}
		}
		return zero, err
	}

	if data, encErr := encodeValue(value); encErr == nil {
		q.svc.set(ctx, key, data, q.cfg.Expire)
	} else {
		q.svc.logger.Warn("cannot serialize result of %s: %v", q.name, encErr)
	}
	return value, nil
}

func isRecoverable(err error) bool {
	var apiErr *api.Error
	return errors.As(err, &apiErr)
}
