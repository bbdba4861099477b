package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cloudlint/go-common/logger"
)

// DefaultLockTimeout bounds how long a query waits for its key's lock
// before giving up with ErrLockTimeout.
const DefaultLockTimeout = 2 * time.Minute

// Config configures a Service.
type Config struct {
	// Dir is the directory holding the persistent store's files. Created if
	// missing. Ignored when Store is set.
	Dir string
	// Disabled turns all caching off: every query computes fresh and nothing
	// is read from or written to the store.
	Disabled bool
	// LockTimeout bounds per-key lock acquisition. Zero means
	// DefaultLockTimeout.
	LockTimeout time.Duration
	// Store overrides the default SQLite store, e.g. with NewMemoryStore in
	// tests or NewRedisStore on a shared CI fleet.
	Store Store
}

// Service owns the process-wide caching state: the persistent store, the
// per-key lock registry and the run identity. Construct one per run with
// New, share it between all queries, and Close it when the run ends so
// session entries are purged and the store is flushed.
type Service struct {
	cfg    Config
	logger logger.Logger
	store  Store
	locks  *lockRegistry
	runID  string

	closeOnce sync.Once
	closeErr  error
}

// New opens a cache service. Session entries left behind by a previous run
// (e.g. after a crash) are purged immediately.
func New(log logger.Logger, cfg Config) (*Service, error) {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}
	svc := &Service{
		cfg:    cfg,
		logger: log.WithPrefix("[cache]"),
		locks:  newLockRegistry(),
		runID:  uuid.NewString(),
	}
	if cfg.Disabled {
		return svc, nil
	}

	store := cfg.Store
	if store == nil {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: cannot create cache dir %s: %w", cfg.Dir, err)
		}
		var err error
		store, err = NewSQLiteStore(filepath.Join(cfg.Dir, "cache.db"), svc.runID)
		if err != nil {
			return nil, fmt.Errorf("cache: cannot open cache store: %w", err)
		}
	}
	svc.store = store

	if err := store.PurgeSession(context.Background()); err != nil {
		svc.logger.Warn("failed to purge stale session entries: %v", err)
	}
	return svc, nil
}

// RunID identifies this run; session entries in the store are tagged with it.
func (s *Service) RunID() string {
	return s.runID
}

// Enabled reports whether queries should consult the store at all.
func (s *Service) Enabled() bool {
	return s != nil && !s.cfg.Disabled && s.store != nil
}

// Close purges this run's session entries and closes the store. Safe to
// call more than once.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		if s.store == nil {
			return
		}
		if err := s.store.PurgeSession(context.Background()); err != nil {
			s.logger.Warn("failed to purge session entries on close: %v", err)
		}
		s.closeErr = s.store.Close()
	})
	return s.closeErr
}

// get reads an entry, treating store errors as misses so a damaged cache
// degrades to recomputation instead of failing the rule.
func (s *Service) get(ctx context.Context, key string) (bool, []byte) {
	found, data, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Warn("read of %s failed, treating as miss: %v", key, err)
		return false, nil
	}
	return found, data
}

// set writes an entry, logging instead of failing: the caller already has
// its freshly computed result.
func (s *Service) set(ctx context.Context, key string, data []byte, expire time.Duration) {
	if err := s.store.Set(ctx, key, data, expire); err != nil {
		s.logger.Warn("write of %s failed: %v", key, err)
	}
}
