package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"opsgate/internal/loginlog"
	"opsgate/internal/sentinel"
)

// InMemoryStore is an in-memory implementation of Store for tests and
// single-node development. Production deployments use PostgresStore.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*loginlog.Record
}

// NewMemory constructs an empty in-memory login log store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[uuid.UUID]*loginlog.Record),
	}
}

func (s *InMemoryStore) Append(ctx context.Context, record *loginlog.Record) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *record
	s.records[record.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*loginlog.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("login log not found: %w", sentinel.ErrNotFound)
	}
	cp := *record
	return &cp, nil
}

func (s *InMemoryStore) List(ctx context.Context, q loginlog.Query) ([]*loginlog.Record, int64, error) {
	s.mu.RLock()
	matched := make([]*loginlog.Record, 0, len(s.records))
	for _, record := range s.records {
		if q.Matches(record) {
			cp := *record
			matched = append(matched, &cp)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	offset := q.Offset()
	if offset >= len(matched) {
		return []*loginlog.Record{}, total, nil
	}
	end := offset + q.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *InMemoryStore) Clear(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.records))
	s.records = make(map[uuid.UUID]*loginlog.Record)
	return n, nil
}
