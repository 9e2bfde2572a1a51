package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/wikicard/pkg/adapters/file"
	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunHistoryStoreContract(t, store)
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, domain.NewHistoryRecord("12345", "Ada Lovelace", time.Now())))

	_, err := os.Stat(filepath.Join(dir, "12345.json"))
	assert.NoError(t, err, "Expected one JSON file per ID")

	rec, err := store.Load(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", rec.Title)

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_EscapesIDs(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, domain.NewHistoryRecord("../escape", "Nope", time.Now())))

	exists, err := store.Exists(ctx, "../escape")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape.json"))
	assert.True(t, os.IsNotExist(err), "ID must not escape the base directory")
}

func TestFileStore_EmptyID(t *testing.T) {
	store := file.New(t.TempDir())
	_, err := store.Exists(context.Background(), "")
	assert.Error(t, err)
	assert.Error(t, store.Record(context.Background(), domain.HistoryRecord{}))
}
