package lockout

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count          int
	countExpiresAt time.Time
	lockedUntil    *time.Time
	lockExpiresAt  time.Time
}

// InMemoryStore is an in-memory implementation of Store for tests and
// single-node development. Production deployments use RedisStore.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewMemory constructs an empty in-memory lockout store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]*memoryEntry),
	}
}

func (s *InMemoryStore) Get(ctx context.Context, key string) (*FailureRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}

	now := time.Now()
	record := &FailureRecord{}
	if now.Before(entry.countExpiresAt) {
		record.FailureCount = entry.count
	}
	if entry.lockedUntil != nil && now.Before(entry.lockExpiresAt) {
		until := *entry.lockedUntil
		record.LockedUntil = &until
	}
	if record.FailureCount == 0 && record.LockedUntil == nil {
		delete(s.entries, key)
		return nil, nil
	}
	return record, nil
}

func (s *InMemoryStore) IncrFailures(ctx context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, ok := s.entries[key]
	if !ok {
		entry = &memoryEntry{}
		s.entries[key] = entry
	}
	if entry.count == 0 || now.After(entry.countExpiresAt) {
		entry.count = 0
		entry.countExpiresAt = now.Add(window)
	}
	entry.count++
	return entry.count, nil
}

func (s *InMemoryStore) Lock(ctx context.Context, key string, until time.Time, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		entry = &memoryEntry{}
		s.entries[key] = entry
	}
	entry.lockedUntil = &until
	entry.lockExpiresAt = time.Now().Add(ttl)
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
