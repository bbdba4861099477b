package cache

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteStore persists cache envelopes in a single SQLite database file.
// SQLite's own locking makes concurrent reads and writes from multiple
// goroutines safe; the per-key discipline above it is the Service's job.
//
// Rows with a NULL expires_at are session entries tagged with the run ID
// that wrote them. Get never returns a session row written by another run,
// even if a crashed previous run failed to purge it.
type sqliteStore struct {
	db    *sql.DB
	runID string
	once  sync.Once
}

var _ Store = (*sqliteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at dbPath. runID
// tags session entries written through this store.
func NewSQLiteStore(dbPath, runID string) (Store, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// WAL mode for better concurrent performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER,
		run_id TEXT
	)`); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_cache_expires_at ON cache(expires_at)`); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db, runID: runID}, nil
}

func (s *sqliteStore) Get(ctx context.Context, key string) (bool, []byte, error) {
	var data []byte
	var expiresAt sql.NullInt64
	var runID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at, run_id FROM cache WHERE key = ?`, key,
	).Scan(&data, &expiresAt, &runID)
	if err == sql.ErrNoRows {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}

	if expiresAt.Valid {
		if expiresAt.Int64 < time.Now().UnixNano() {
			// Lazily delete the expired entry.
			_, _ = s.db.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key)
			return false, nil, nil
		}
	} else if runID.String != s.runID {
		// Session row left over from another run.
		return false, nil, nil
	}

	return true, data, nil
}

func (s *sqliteStore) Set(ctx context.Context, key string, data []byte, expire time.Duration) error {
	var expiresAt sql.NullInt64
	var runID sql.NullString
	if expire > 0 {
		expiresAt = sql.NullInt64{Int64: time.Now().Add(expire).UnixNano(), Valid: true}
	} else {
		runID = sql.NullString{String: s.runID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache (key, value, expires_at, run_id) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at, run_id = excluded.run_id`,
		key, data, expiresAt, runID,
	)
	return err
}

func (s *sqliteStore) Delete(ctx context.Context, key string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *sqliteStore) PurgeSession(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE expires_at IS NULL`)
	return err
}

func (s *sqliteStore) Close() error {
	var dbErr error
	s.once.Do(func() {
		// Drop expired rows so the file does not grow unbounded across runs.
		_, _ = s.db.Exec(`DELETE FROM cache WHERE expires_at IS NOT NULL AND expires_at < ?`, time.Now().UnixNano())
		dbErr = s.db.Close()
	})
	return dbErr
}
