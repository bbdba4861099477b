package cache

import (
	"context"
	"time"
)

// Store is a persistent key-value store for serialized cache envelopes.
// Implementations must be safe for concurrent use from multiple goroutines.
//
// An entry is stored either with a positive TTL or, when expire <= 0, as a
// session entry: session entries belong to a single run and must never be
// visible to a later run. PurgeSession removes them; the owning Service
// calls it both when the store is opened and when it is closed.
type Store interface {
	// Get returns the entry for key. found distinguishes a missing key from
	// a present entry whose payload happens to be empty.
	Get(ctx context.Context, key string) (found bool, data []byte, err error)

	// Set stores data under key. expire > 0 stores with that TTL; expire <= 0
	// stores a session entry.
	Set(ctx context.Context, key string, data []byte, expire time.Duration) error

	// Delete removes a key. Reports whether the key was present.
	Delete(ctx context.Context, key string) (bool, error)

	// PurgeSession removes every session entry.
	PurgeSession(ctx context.Context) error

	// Close flushes and releases the underlying storage.
	Close() error
}
