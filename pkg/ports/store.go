package ports

import (
	"context"

	"github.com/aretw0/wikicard/pkg/domain"
)

// HistoryStore defines the durable set of already distributed article IDs.
// Only point lookups and inserts are required; the core never deletes.
type HistoryStore interface {
	// Exists reports whether an article ID has been recorded.
	Exists(ctx context.Context, id string) (bool, error)

	// Record stores a history record.
	// Recording an ID twice is not an error and keeps the first record.
	Record(ctx context.Context, record domain.HistoryRecord) error
}
