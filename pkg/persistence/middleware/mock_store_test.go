package middleware_test

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/ports"
)

var errBroken = errors.New("store broken")

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	mu     sync.Mutex
	data   map[string]domain.HistoryRecord
	broken bool
	calls  []string
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.HistoryRecord),
	}
}

func (s *MockStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "exists:"+id)
	if s.broken {
		return false, errBroken
	}
	_, ok := s.data[id]
	return ok, nil
}

func (s *MockStore) Record(ctx context.Context, rec domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "record:"+rec.ID)
	if s.broken {
		return errBroken
	}
	if _, ok := s.data[rec.ID]; !ok {
		s.data[rec.ID] = rec
	}
	return nil
}

var _ ports.HistoryStore = (*MockStore)(nil)
