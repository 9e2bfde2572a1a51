package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/wikicard/pkg/adapters/redis"
	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	return mr, backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient(client)
	ports.RunHistoryStoreContract(t, store)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err := store.Record(ctx, domain.NewHistoryRecord("736", "Albert Einstein", time.Now()))
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:736"), "Expected key with custom prefix to exist")

	rec, err := store.Load(ctx, "736")
	require.NoError(t, err)
	assert.Equal(t, "Albert Einstein", rec.Title)
}

func TestRedisStore_KeepsFirstRecord(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, domain.NewHistoryRecord("1", "First", time.Now())))
	require.NoError(t, store.Record(ctx, domain.NewHistoryRecord("1", "Second", time.Now())))

	rec, err := store.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "First", rec.Title)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, domain.NewHistoryRecord("ttl", "Ephemeral", time.Now())))

	exists, err := store.Exists(ctx, "ttl")
	require.NoError(t, err)
	assert.True(t, exists)

	mr.FastForward(2 * time.Second)

	exists, err = store.Exists(ctx, "ttl")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisStore_ConnectionFailure(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	mr.Close()

	_, err := store.Exists(context.Background(), "1")
	assert.Error(t, err)
	assert.Error(t, store.Ping(context.Background()))
}
