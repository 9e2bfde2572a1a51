package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.HistoryStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store call at debug level and failures at warn.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.HistoryStore) ports.HistoryStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) Exists(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	seen, err := m.next.Exists(ctx, id)
	if err != nil {
		m.logger.Warn("History lookup failed", "page_id", id, "err", err)
		return seen, err
	}
	m.logger.Debug("History lookup", "page_id", id, "seen", seen, "duration_ms", time.Since(start).Milliseconds())
	return seen, nil
}

func (m *loggingMiddleware) Record(ctx context.Context, rec domain.HistoryRecord) error {
	start := time.Now()
	if err := m.next.Record(ctx, rec); err != nil {
		m.logger.Warn("History write failed", "page_id", rec.ID, "err", err)
		return err
	}
	m.logger.Debug("History write", "page_id", rec.ID, "title", rec.Title, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
