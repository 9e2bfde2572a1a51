package wikicard_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wikicard"
	"github.com/aretw0/wikicard/pkg/adapters/memory"
	"github.com/aretw0/wikicard/pkg/adapters/wikipedia"
	"github.com/aretw0/wikicard/pkg/card"
	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/ports"
)

type stubSource struct {
	mu    sync.Mutex
	queue []domain.Article
}

func (s *stubSource) Random(ctx context.Context) (*domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, errors.New("empty")
	}
	a := s.queue[0]
	s.queue = s.queue[1:]
	return &a, nil
}

func (s *stubSource) ByTitle(ctx context.Context, title string) (*domain.Article, error) {
	if title == "Go" {
		return &domain.Article{ID: "go", Title: "Go", ExtractHTML: "<p>Go</p>"}, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, title)
}

type stubRenderer struct {
	err   error
	calls int
	opts  ports.RenderOptions
}

func (r *stubRenderer) Render(ctx context.Context, html string, opts ports.RenderOptions) ([]byte, error) {
	r.calls++
	r.opts = opts
	if r.err != nil {
		return nil, r.err
	}
	return []byte("\x89PNG"), nil
}

type stubMetrics struct {
	renders []error
}

func (m *stubMetrics) RecordAttempt() {}
func (m *stubMetrics) RecordDuplicate() {}
func (m *stubMetrics) RecordFetch(string, domain.ErrorKind, time.Duration) {}
func (m *stubMetrics) RecordHistoryWrite(bool) {}
func (m *stubMetrics) RecordRender(l domain.Layout, d time.Duration, err error) { m.renders = append(m.renders, err) }

func TestBot_RandomCardRecordsAfterRender(t *testing.T) {
	store := memory.NewStore()
	src := &stubSource{queue: []domain.Article{
		{ID: "1", Title: "One", ExtractHTML: "<p>one</p>", Image: &domain.Image{URL: "https://x/1.png", Width: 10, Height: 5}},
	}}
	metrics := &stubMetrics{}
	bot := wikicard.New(
		wikicard.WithSource(src),
		wikicard.WithHistory(store),
		wikicard.WithRenderer(&stubRenderer{}),
		wikicard.WithMetrics(metrics),
	)

	c, err := bot.RandomCard(context.Background(), nil, "t1")
	require.NoError(t, err)
	assert.Equal(t, "1", c.Article.ID)
	assert.Equal(t, domain.LayoutLandscape, c.Spec.Layout)
	assert.Equal(t, domain.ThemeLight, c.Spec.Theme)
	assert.NotEmpty(t, c.PNG)

	seen, err := bot.Seen(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.Equal(t, []error{nil}, metrics.renders)
}

func TestBot_RenderFailureDoesNotRecord(t *testing.T) {
	store := memory.NewStore()
	bot := wikicard.New(
		wikicard.WithSource(&stubSource{queue: []domain.Article{{ID: "1", Title: "One"}}}),
		wikicard.WithHistory(store),
		wikicard.WithRenderer(&stubRenderer{err: errors.New("chrome died")}),
	)

	_, err := bot.RandomCard(context.Background(), nil, "")
	require.ErrorIs(t, err, domain.ErrRenderFailed)
	assert.Equal(t, 0, store.Len())
}

func TestBot_WithoutRecording(t *testing.T) {
	store := memory.NewStore()
	bot := wikicard.New(
		wikicard.WithSource(&stubSource{queue: []domain.Article{{ID: "1"}}}),
		wikicard.WithHistory(store),
		wikicard.WithRenderer(&stubRenderer{}),
		wikicard.WithoutRecording(),
	)

	_, err := bot.RandomCard(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestBot_SkipsDistributedArticles(t *testing.T) {
	store := memory.NewStore()
	bot := wikicard.New(
		wikicard.WithSource(&stubSource{queue: []domain.Article{{ID: "1"}, {ID: "1"}, {ID: "2"}}}),
		wikicard.WithHistory(store),
		wikicard.WithRenderer(&stubRenderer{}),
	)
	ctx := context.Background()

	first, err := bot.RandomCard(ctx, nil, "")
	require.NoError(t, err)
	second, err := bot.RandomCard(ctx, nil, "")
	require.NoError(t, err)

	assert.Equal(t, "1", first.Article.ID)
	assert.Equal(t, "2", second.Article.ID)
}

func TestBot_TitleCard(t *testing.T) {
	dark := domain.ThemeDark
	bot := wikicard.New(
		wikicard.WithSource(&stubSource{}),
		wikicard.WithRenderer(&stubRenderer{}),
	)

	c, err := bot.TitleCard(context.Background(), "Go", &dark, "")
	require.NoError(t, err)
	assert.Equal(t, "#202122", c.Spec.Palette.CardBg)
	assert.Equal(t, domain.LayoutTextOnly, c.Spec.Layout)

	_, err = bot.TitleCard(context.Background(), "Missing", nil, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBot_DefaultTheme(t *testing.T) {
	bot := wikicard.New(
		wikicard.WithSource(&stubSource{}),
		wikicard.WithRenderer(&stubRenderer{}),
		wikicard.WithDefaultTheme(domain.ThemeDark),
	)

	spec := bot.Spec(domain.Article{Title: "x"}, nil)
	assert.Equal(t, domain.ThemeDark, spec.Theme)

	html, err := bot.HTML(domain.Article{Title: "x"}, nil)
	require.NoError(t, err)
	assert.Contains(t, html, "#202122")
}

func TestBot_ExhaustedRetries(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Record(context.Background(), domain.NewHistoryRecord("1", "One", time.Now())))
	queue := make([]domain.Article, 10)
	for i := range queue {
		queue[i] = domain.Article{ID: "1"}
	}
	r := &stubRenderer{}
	bot := wikicard.New(
		wikicard.WithSource(&stubSource{queue: queue}),
		wikicard.WithHistory(store),
		wikicard.WithRenderer(r),
		wikicard.WithMaxAttempts(2),
	)

	_, err := bot.RandomCard(context.Background(), nil, "")
	assert.ErrorIs(t, err, domain.ErrExhaustedRetries)
	assert.Equal(t, 0, r.calls)
	assert.NoError(t, bot.Close())
}

type namedSource struct {
	stubSource
}

func (namedSource) UserAgent() string { return "wikicard/test (ops@example.org)" }

func TestBot_RendererUserAgent(t *testing.T) {
	article := domain.Article{ID: "1", Title: "One"}

	t.Run("Default source header", func(t *testing.T) {
		r := &stubRenderer{}
		bot := wikicard.New(wikicard.WithRenderer(r), wikicard.WithHistory(memory.NewStore()))

		_, err := bot.Render(context.Background(), article, nil, "")
		require.NoError(t, err)
		assert.Equal(t, wikipedia.UserAgent(wikipedia.DefaultContact), r.opts.UserAgent)
	})

	t.Run("Follows the source", func(t *testing.T) {
		r := &stubRenderer{}
		bot := wikicard.New(wikicard.WithSource(&namedSource{}), wikicard.WithRenderer(r))

		_, err := bot.Render(context.Background(), article, nil, "")
		require.NoError(t, err)
		assert.Equal(t, "wikicard/test (ops@example.org)", r.opts.UserAgent)
	})

	t.Run("Explicit option wins", func(t *testing.T) {
		r := &stubRenderer{}
		bot := wikicard.New(
			wikicard.WithSource(&namedSource{}),
			wikicard.WithRenderer(r),
			wikicard.WithCardOptions(card.WithUserAgent("custom/1.0")),
		)

		_, err := bot.Render(context.Background(), article, nil, "")
		require.NoError(t, err)
		assert.Equal(t, "custom/1.0", r.opts.UserAgent)
	})
}

// cancelOnRender cancels the caller's context once the image exists.
type cancelOnRender struct {
	cancel context.CancelFunc
}

func (r *cancelOnRender) Render(ctx context.Context, html string, opts ports.RenderOptions) ([]byte, error) {
	r.cancel()
	return []byte("\x89PNG"), nil
}

// ctxStore fails writes whose context is already done, like a network store would.
type ctxStore struct {
	*memory.Store
}

func (s ctxStore) Record(ctx context.Context, rec domain.HistoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.Record(ctx, rec)
}

func TestBot_RecordsWhenCallerGoesAway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := ctxStore{memory.NewStore()}
	bot := wikicard.New(
		wikicard.WithSource(&stubSource{queue: []domain.Article{{ID: "5", Title: "Five"}}}),
		wikicard.WithHistory(store),
		wikicard.WithRenderer(&cancelOnRender{cancel: cancel}),
	)

	_, err := bot.RandomCard(ctx, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}
