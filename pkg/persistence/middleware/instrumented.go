package middleware

import (
	"context"
	"time"

	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/ports"
)

// StoreObserver receives the latency and result of each store call.
type StoreObserver interface {
	ObserveStore(op string, d time.Duration, err error)
}

type instrumentedMiddleware struct {
	next     ports.HistoryStore
	observer StoreObserver
}

// NewInstrumentedMiddleware reports each call to observer.
func NewInstrumentedMiddleware(observer StoreObserver) Middleware {
	return func(next ports.HistoryStore) ports.HistoryStore {
		return &instrumentedMiddleware{next: next, observer: observer}
	}
}

func (m *instrumentedMiddleware) Exists(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	seen, err := m.next.Exists(ctx, id)
	m.observer.ObserveStore("exists", time.Since(start), err)
	return seen, err
}

func (m *instrumentedMiddleware) Record(ctx context.Context, rec domain.HistoryRecord) error {
	start := time.Now()
	err := m.next.Record(ctx, rec)
	m.observer.ObserveStore("record", time.Since(start), err)
	return err
}
