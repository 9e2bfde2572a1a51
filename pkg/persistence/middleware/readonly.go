package middleware

import (
	"context"

	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/ports"
)

type readOnlyMiddleware struct {
	next ports.HistoryStore
}

// NewReadOnlyMiddleware lets lookups through and silently drops writes.
// Useful for previews that must not consume articles.
func NewReadOnlyMiddleware() Middleware {
	return func(next ports.HistoryStore) ports.HistoryStore {
		return &readOnlyMiddleware{next: next}
	}
}

func (m *readOnlyMiddleware) Exists(ctx context.Context, id string) (bool, error) {
	return m.next.Exists(ctx, id)
}

func (m *readOnlyMiddleware) Record(ctx context.Context, rec domain.HistoryRecord) error {
	return nil
}
