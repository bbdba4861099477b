package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
	session bool
}

// memoryStore is a Store held entirely in process memory. It backs tests and
// cache-disabled environments where persisting to disk is unwanted; session
// semantics degenerate to process lifetime.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

var _ Store = (*memoryStore)(nil)

// NewMemoryStore returns a Store backed by a plain map.
func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[string]*memoryEntry)}
}

func (s *memoryStore) Get(_ context.Context, key string) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return false, nil, nil
	}
	if !e.session && e.expires.Before(time.Now()) {
		delete(s.entries, key)
		return false, nil, nil
	}
	return true, e.data, nil
}

func (s *memoryStore) Set(_ context.Context, key string, data []byte, expire time.Duration) error {
	e := &memoryEntry{data: data}
	if expire > 0 {
		e.expires = time.Now().Add(expire)
	} else {
		e.session = true
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok, nil
}

func (s *memoryStore) PurgeSession(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if e.session {
			delete(s.entries, key)
		}
	}
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	s.entries = make(map[string]*memoryEntry)
	s.mu.Unlock()
	return nil
}
