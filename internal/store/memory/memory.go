package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/hookstudio/internal/store"
)

// Store is an in-process KV backend with an optional byte quota, the same
// contract a browser's local storage gives the editor.
type Store struct {
	mu        sync.RWMutex
	values    map[string][]byte // key -> value
	used      int               // bytes used by keys and values
	quota     int               // 0 = unlimited
	lastWrite time.Time
}

// New creates an empty store. quota is the maximum number of bytes
// (keys plus values) the store may hold; 0 disables the limit.
func New(quota int) *Store {
	return &Store{
		values: make(map[string][]byte),
		quota:  quota,
	}
}

// Get returns a copy of the value stored under key
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set replaces the value under key, failing without side effects when the
// quota would be exceeded.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used
	if old, ok := s.values[key]; ok {
		used -= len(key) + len(old)
	}
	used += len(key) + len(value)

	if s.quota > 0 && used > s.quota {
		return fmt.Errorf("%w: writing %q needs %d bytes, quota is %d", store.ErrQuotaExceeded, key, used, s.quota)
	}

	s.values[key] = append([]byte(nil), value...)
	s.used = used
	s.lastWrite = time.Now()
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.values[key]; ok {
		s.used -= len(key) + len(old)
		delete(s.values, key)
		s.lastWrite = time.Now()
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// Used returns the number of bytes currently stored
func (s *Store) Used() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.used
}

// Count returns the number of keys in the store
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.values)
}

// LastWrite returns the time of the last successful mutation
func (s *Store) LastWrite() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastWrite
}
