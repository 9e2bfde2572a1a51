package wikicard

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/wikicard/internal/logging"
	"github.com/aretw0/wikicard/pkg/acquisition"
	"github.com/aretw0/wikicard/pkg/adapters/memory"
	"github.com/aretw0/wikicard/pkg/adapters/rod"
	"github.com/aretw0/wikicard/pkg/adapters/wikipedia"
	"github.com/aretw0/wikicard/pkg/card"
	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/layout"
	"github.com/aretw0/wikicard/pkg/ports"
)

// Card is a rendered article.
type Card struct {
	Article domain.Article
	Spec    domain.RenderSpec
	PNG     []byte
}

// Metrics is implemented by observability.Metrics.
type Metrics interface {
	acquisition.Recorder
	RecordRender(layout domain.Layout, d time.Duration, err error)
}

// Bot is the high-level entry point: it fetches an unseen article, lays it out,
// renders it and records it as distributed.
type Bot struct {
	source    ports.ArticleSource
	history   ports.HistoryStore
	renderer  ports.Renderer
	acq       *acquisition.Service
	generator *card.Generator

	logger      *slog.Logger
	metrics     Metrics
	theme       domain.Theme
	record      bool
	maxAttempts int
	clock       func() time.Time
	cardOpts    []card.Option
}

// Option defines a functional option for configuring the Bot.
type Option func(*Bot)

// WithSource injects the article source. Default: the Wikipedia REST client.
func WithSource(s ports.ArticleSource) Option {
	return func(b *Bot) {
		b.source = s
	}
}

// WithHistory injects the history store. Default: an in-memory store.
func WithHistory(h ports.HistoryStore) Option {
	return func(b *Bot) {
		b.history = h
	}
}

// WithRenderer injects the renderer. Default: headless Chrome via go-rod.
func WithRenderer(r ports.Renderer) Option {
	return func(b *Bot) {
		b.renderer = r
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithMetrics enables metrics for acquisition and rendering.
func WithMetrics(m Metrics) Option {
	return func(b *Bot) {
		b.metrics = m
	}
}

// WithDefaultTheme sets the theme used when a call does not request one.
func WithDefaultTheme(t domain.Theme) Option {
	return func(b *Bot) {
		b.theme = t
	}
}

// WithMaxAttempts overrides the dedup budget of random draws.
func WithMaxAttempts(n int) Option {
	return func(b *Bot) {
		b.maxAttempts = n
	}
}

// WithClock sets the time source for history records.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.clock = now
	}
}

// WithCardOptions passes options to the card generator (user agent, viewport, footer).
func WithCardOptions(opts ...card.Option) Option {
	return func(b *Bot) {
		b.cardOpts = append(b.cardOpts, opts...)
	}
}

// WithoutRecording disables history writes. Cards can then repeat.
func WithoutRecording() Option {
	return func(b *Bot) {
		b.record = false
	}
}

// New creates a Bot. Missing collaborators fall back to the defaults named on each option.
func New(opts ...Option) *Bot {
	b := &Bot{
		theme:  domain.ThemeLight,
		record: true,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = logging.NewNop()
	}
	if b.source == nil {
		b.source = wikipedia.NewClient(wikipedia.DefaultContact)
	}
	if b.history == nil {
		b.history = memory.NewStore()
	}
	if b.renderer == nil {
		b.renderer = rod.New(rod.WithLogger(b.logger))
	}

	acqOpts := []acquisition.Option{acquisition.WithLogger(b.logger)}
	if b.maxAttempts > 0 {
		acqOpts = append(acqOpts, acquisition.WithMaxAttempts(b.maxAttempts))
	}
	if b.metrics != nil {
		acqOpts = append(acqOpts, acquisition.WithMetrics(b.metrics))
	}
	if b.clock != nil {
		acqOpts = append(acqOpts, acquisition.WithClock(b.clock))
	}
	b.acq = acquisition.New(b.source, b.history, acqOpts...)

	// The renderer identifies itself like the source; WithCardOptions may override it.
	cardOpts := append([]card.Option{
		card.WithLogger(b.logger),
		card.WithUserAgent(sourceUserAgent(b.source)),
	}, b.cardOpts...)
	b.generator = card.NewGenerator(b.renderer, cardOpts...)
	return b
}

// RandomArticle returns an article that was never distributed. Nothing is recorded.
func (b *Bot) RandomArticle(ctx context.Context, traceID string) (*domain.Article, error) {
	return b.acq.FetchRandom(ctx, traceID)
}

// Article returns the named article. Nothing is recorded.
func (b *Bot) Article(ctx context.Context, title, traceID string) (*domain.Article, error) {
	return b.acq.FetchByTitle(ctx, title, traceID)
}

// Seen reports whether an article ID is in the history.
func (b *Bot) Seen(ctx context.Context, id string) (bool, error) {
	return b.history.Exists(ctx, id)
}

// MarkDistributed records an article as distributed. Failures are logged, never returned.
func (b *Bot) MarkDistributed(ctx context.Context, id, title, traceID string) {
	b.acq.RecordDistributed(ctx, id, title, traceID)
}

// Spec resolves the layout of an article. A nil theme uses the Bot's default theme.
func (b *Bot) Spec(article domain.Article, theme *domain.Theme) domain.RenderSpec {
	if theme == nil {
		theme = &b.theme
	}
	return layout.Resolve(article, theme)
}

// HTML returns the card document for an article without rendering it.
func (b *Bot) HTML(article domain.Article, theme *domain.Theme) (string, error) {
	return b.generator.BuildHTML(b.Spec(article, theme))
}

// RandomCard fetches an unseen article and renders it.
// The article is recorded only after the image was produced.
func (b *Bot) RandomCard(ctx context.Context, theme *domain.Theme, traceID string) (*Card, error) {
	article, err := b.acq.FetchRandom(ctx, traceID)
	if err != nil {
		return nil, err
	}
	return b.render(ctx, *article, theme, traceID)
}

// TitleCard renders the named article. It is recorded too, so random draws skip it later.
func (b *Bot) TitleCard(ctx context.Context, title string, theme *domain.Theme, traceID string) (*Card, error) {
	article, err := b.acq.FetchByTitle(ctx, title, traceID)
	if err != nil {
		return nil, err
	}
	return b.render(ctx, *article, theme, traceID)
}

// Render lays out and renders an already fetched article. Nothing is recorded.
func (b *Bot) Render(ctx context.Context, article domain.Article, theme *domain.Theme, traceID string) (*Card, error) {
	spec := b.Spec(article, theme)
	start := time.Now()
	png, err := b.generator.Generate(ctx, spec, traceID)
	if b.metrics != nil {
		b.metrics.RecordRender(spec.Layout, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}
	return &Card{Article: article, Spec: spec, PNG: png}, nil
}

func (b *Bot) render(ctx context.Context, article domain.Article, theme *domain.Theme, traceID string) (*Card, error) {
	c, err := b.Render(ctx, article, theme, traceID)
	if err != nil {
		return nil, err
	}
	if b.record {
		// The card exists even if the caller went away; the write must not be cancelled with it.
		b.acq.RecordDistributed(context.WithoutCancel(ctx), article.ID, article.Title, traceID)
	}
	b.logger.Info("Card produced",
		"trace_id", traceID,
		"page_id", article.ID,
		"title", article.Title,
		"layout", c.Spec.Layout,
	)
	return c, nil
}

// sourceUserAgent returns the client header of the source, or the default Wikipedia one.
func sourceUserAgent(src ports.ArticleSource) string {
	if ua, ok := src.(interface{ UserAgent() string }); ok && ua.UserAgent() != "" {
		return ua.UserAgent()
	}
	return wikipedia.UserAgent(wikipedia.DefaultContact)
}

// Close releases the renderer when it holds resources (a browser).
func (b *Bot) Close() error {
	if c, ok := b.renderer.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
