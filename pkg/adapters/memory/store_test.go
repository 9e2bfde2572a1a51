package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/wikicard/pkg/adapters/memory"
	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunHistoryStoreContract(t, store)
}

func TestMemoryStore_KeepsFirstRecord(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, domain.NewHistoryRecord("42", "First", time.Now())))
	require.NoError(t, store.Record(ctx, domain.NewHistoryRecord("42", "Second", time.Now())))

	rec, ok := store.Get("42")
	require.True(t, ok)
	assert.Equal(t, "First", rec.Title)
	assert.Equal(t, 1, store.Len())
}
