package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/aretw0/wikicard/pkg/domain"
)

// Store implements ports.HistoryStore using the local filesystem.
// It stores one JSON file per article ID in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".wikicard/history".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".wikicard", "history")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(id string) string {
	// IDs are opaque: escape anything that could traverse directories.
	return filepath.Join(s.BasePath, url.PathEscape(id)+".json")
}

// Exists reports whether a record file exists for the ID.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("id cannot be empty")
	}

	_, err := os.Stat(s.path(id))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat history file: %w", err)
}

// Record persists the record to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then hard-links it into place.
// Linking fails if the destination exists, which keeps the first record for an ID.
func (s *Store) Record(ctx context.Context, record domain.HistoryRecord) error {
	if record.ID == "" {
		return fmt.Errorf("id cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure history directory: %w", err)
	}

	destPath := s.path(record.ID)
	if _, err := os.Stat(destPath); err == nil {
		return nil
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	// Same directory keeps us on one filesystem (required for link/rename).
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Link(tmpPath, destPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			// A concurrent writer won the race.
			return nil
		}
		return fmt.Errorf("failed to link history file: %w", err)
	}
	return nil
}

// Load returns the stored record for an ID.
func (s *Store) Load(ctx context.Context, id string) (*domain.HistoryRecord, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var rec domain.HistoryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history record: %w", err)
	}
	return &rec, nil
}
