package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T, runID string) Store {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"), runID)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s := newSQLiteStore(t, "run-1")
	ctx := context.Background()

	found, _, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "k", []byte("payload"), time.Hour))
	found, data, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("payload"), data)

	// Present-but-empty is still present.
	require.NoError(t, s.Set(ctx, "empty", []byte{}, time.Hour))
	found, data, err = s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, data)

	deleted, err := s.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = s.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSQLiteStoreExpiry(t *testing.T) {
	s := newSQLiteStore(t, "run-1")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)
	found, _, err := s.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteStoreSessionInvisibleToOtherRuns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")
	ctx := context.Background()

	s1, err := NewSQLiteStore(path, "run-1")
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "session-key", []byte("x"), 0))
	require.NoError(t, s1.Set(ctx, "ttl-key", []byte("y"), time.Hour))

	found, _, err := s1.Get(ctx, "session-key")
	require.NoError(t, err)
	assert.True(t, found)
	require.NoError(t, s1.Close())

	// A new run over the same file: even without a purge, the session row
	// is invisible; the TTL row is not.
	s2, err := NewSQLiteStore(path, "run-2")
	require.NoError(t, err)
	defer s2.Close()

	found, _, err = s2.Get(ctx, "session-key")
	require.NoError(t, err)
	assert.False(t, found)

	found, data, err := s2.Get(ctx, "ttl-key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("y"), data)
}

func TestSQLiteStorePurgeSession(t *testing.T) {
	s := newSQLiteStore(t, "run-1")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "session-key", []byte("x"), 0))
	require.NoError(t, s.Set(ctx, "ttl-key", []byte("y"), time.Hour))
	require.NoError(t, s.PurgeSession(ctx))

	found, _, err := s.Get(ctx, "session-key")
	require.NoError(t, err)
	assert.False(t, found)
	found, _, err = s.Get(ctx, "ttl-key")
	require.NoError(t, err)
	assert.True(t, found)
}
