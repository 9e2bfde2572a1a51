package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/persistence/middleware"
	"github.com/aretw0/wikicard/pkg/ports"
)

type observation struct {
	op  string
	err error
}

type fakeObserver struct {
	mu  sync.Mutex
	obs []observation
}

func (f *fakeObserver) ObserveStore(op string, d time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = append(f.obs, observation{op: op, err: err})
}

func TestMiddlewares_KeepContract(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	store := middleware.Chain(NewMockStore(),
		middleware.NewLoggingMiddleware(logger),
		middleware.NewInstrumentedMiddleware(&fakeObserver{}),
	)
	ports.RunHistoryStoreContract(t, store)
}

func TestInstrumentedMiddleware(t *testing.T) {
	obs := &fakeObserver{}
	inner := NewMockStore()
	store := middleware.NewInstrumentedMiddleware(obs)(inner)
	ctx := context.Background()

	_, err := store.Exists(ctx, "1")
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, domain.NewHistoryRecord("1", "One", time.Now())))

	inner.broken = true
	_, err = store.Exists(ctx, "1")
	assert.ErrorIs(t, err, errBroken)

	require.Len(t, obs.obs, 3)
	assert.Equal(t, "exists", obs.obs[0].op)
	assert.Equal(t, "record", obs.obs[1].op)
	assert.ErrorIs(t, obs.obs[2].err, errBroken)
}

func TestLoggingMiddleware_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	inner := NewMockStore()
	inner.broken = true
	store := middleware.NewLoggingMiddleware(logger)(inner)

	err := store.Record(context.Background(), domain.NewHistoryRecord("9", "Nine", time.Now()))
	assert.ErrorIs(t, err, errBroken)
	assert.Contains(t, buf.String(), "History write failed")
	assert.Contains(t, buf.String(), "page_id=9")
}

func TestReadOnlyMiddleware(t *testing.T) {
	inner := NewMockStore()
	ctx := context.Background()
	require.NoError(t, inner.Record(ctx, domain.NewHistoryRecord("1", "One", time.Now())))

	store := middleware.NewReadOnlyMiddleware()(inner)

	seen, err := store.Exists(ctx, "1")
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, store.Record(ctx, domain.NewHistoryRecord("2", "Two", time.Now())))
	seen, err = inner.Exists(ctx, "2")
	require.NoError(t, err)
	assert.False(t, seen, "writes must not reach the inner store")
}

func TestChain_Order(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.HistoryStore) ports.HistoryStore {
			return &tagging{next: next, name: name, order: &order}
		}
	}

	store := middleware.Chain(NewMockStore(), tag("outer"), tag("inner"))
	_, _ = store.Exists(context.Background(), "x")
	assert.Equal(t, []string{"outer", "inner"}, order)
}

type tagging struct {
	next  ports.HistoryStore
	name  string
	order *[]string
}

func (t *tagging) Exists(ctx context.Context, id string) (bool, error) {
	*t.order = append(*t.order, t.name)
	return t.next.Exists(ctx, id)
}

func (t *tagging) Record(ctx context.Context, rec domain.HistoryRecord) error {
	*t.order = append(*t.order, t.name)
	return t.next.Record(ctx, rec)
}
