package domain

import "time"

// HistoryRecord marks an article as already distributed.
// Records are append-only: created once per article ID and never mutated by the core.
type HistoryRecord struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewHistoryRecord builds a record stamped with the given time (UTC).
func NewHistoryRecord(id, title string, at time.Time) HistoryRecord {
	return HistoryRecord{
		ID:         id,
		Title:      title,
		RecordedAt: at.UTC(),
	}
}
