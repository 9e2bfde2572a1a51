package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunHistoryStoreContract runs a suite of tests to verify that a HistoryStore implementation
// adheres to the defined interface contract.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")

	t.Run("Unknown ID", func(t *testing.T) {
		exists, err := store.Exists(ctx, prefix+"-missing")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Record then Exists", func(t *testing.T) {
		id := prefix + "-1"
		err := store.Record(ctx, domain.NewHistoryRecord(id, "Alan Turing", time.Now()))
		require.NoError(t, err, "Record should not return error")

		exists, err := store.Exists(ctx, id)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Record is idempotent", func(t *testing.T) {
		id := prefix + "-2"
		require.NoError(t, store.Record(ctx, domain.NewHistoryRecord(id, "First", time.Now())))
		require.NoError(t, store.Record(ctx, domain.NewHistoryRecord(id, "Second", time.Now())),
			"Recording the same ID twice should succeed")

		exists, err := store.Exists(ctx, id)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("IDs are independent", func(t *testing.T) {
		require.NoError(t, store.Record(ctx, domain.NewHistoryRecord(prefix+"-3", "Three", time.Now())))

		exists, err := store.Exists(ctx, prefix+"-33")
		require.NoError(t, err)
		assert.False(t, exists, "Lookup must be exact, not prefix based")
	})

	t.Run("Concurrent Record", func(t *testing.T) {
		id := prefix + "-race"
		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- store.Record(ctx, domain.NewHistoryRecord(id, "Race", time.Now()))
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}

		exists, err := store.Exists(ctx, id)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
