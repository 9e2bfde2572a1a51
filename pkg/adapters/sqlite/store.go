package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/wikicard/pkg/domain"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS wiki_history (
	page_id   TEXT PRIMARY KEY,
	title     TEXT NOT NULL,
	posted_at TEXT NOT NULL
);`

// Store implements ports.HistoryStore on a SQLite database file.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the history database at path.
// The special path ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" one database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, dbPath: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Exists reports whether the page ID has been recorded.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM wiki_history WHERE page_id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query history: %w", err)
	}
	return true, nil
}

// Record inserts the record; an existing page ID is left untouched.
func (s *Store) Record(ctx context.Context, record domain.HistoryRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO wiki_history (page_id, title, posted_at) VALUES (?, ?, ?)`,
		record.ID, record.Title, record.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}
	return nil
}

// Load returns the stored record for a page ID.
func (s *Store) Load(ctx context.Context, id string) (*domain.HistoryRecord, error) {
	var rec domain.HistoryRecord
	var postedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT page_id, title, posted_at FROM wiki_history WHERE page_id = ?`, id,
	).Scan(&rec.ID, &rec.Title, &postedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load history %q: %w", id, err)
	}

	rec.RecordedAt, err = time.Parse(time.RFC3339Nano, postedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid posted_at for %q: %w", id, err)
	}
	return &rec, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
