package memory

import (
	"context"
	"sync"

	"github.com/aretw0/wikicard/pkg/domain"
)

// Store implements ports.HistoryStore in memory.
// Safe for concurrent use. Contents are lost when the process exits.
type Store struct {
	data map[string]domain.HistoryRecord
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.HistoryRecord),
	}
}

// Exists reports whether the ID has been recorded.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data[id]
	return ok, nil
}

// Record stores the record unless the ID is already known.
func (s *Store) Record(ctx context.Context, record domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[record.ID]; ok {
		return nil
	}
	s.data[record.ID] = record
	return nil
}

// Get returns a copy of the stored record.
func (s *Store) Get(id string) (domain.HistoryRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[id]
	return rec, ok
}

// Len returns the number of recorded articles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
