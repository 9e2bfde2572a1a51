package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/wikicard"
	"github.com/aretw0/wikicard/internal/config"
	"github.com/aretw0/wikicard/pkg/adapters/file"
	"github.com/aretw0/wikicard/pkg/adapters/memory"
	"github.com/aretw0/wikicard/pkg/adapters/redis"
	"github.com/aretw0/wikicard/pkg/adapters/rod"
	"github.com/aretw0/wikicard/pkg/adapters/sqlite"
	"github.com/aretw0/wikicard/pkg/adapters/wikipedia"
	"github.com/aretw0/wikicard/pkg/card"
	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/observability"
	"github.com/aretw0/wikicard/pkg/persistence/middleware"
	"github.com/aretw0/wikicard/pkg/ports"
)

const (
	defaultSQLitePath = ".wikicard/history.db"
	defaultFilePath   = ".wikicard/history"
)

// App bundles the wired collaborators of a command.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Bot     *wikicard.Bot
	History ports.HistoryStore
	Metrics *observability.Metrics
	Source  *wikipedia.Client

	closers []func() error
}

// AppOptions tweaks wiring for a single command.
type AppOptions struct {
	// NoRecord keeps the history untouched (previews, dry runs).
	NoRecord bool
	// Theme overrides render.theme when non-empty.
	Theme string
}

// NewApp wires the Bot from configuration.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts AppOptions) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger}

	store, closeStore, err := OpenHistory(ctx, cfg.History)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		app.closers = append(app.closers, closeStore)
	}

	var mws []middleware.Middleware
	if cfg.Metrics.Enabled {
		app.Metrics = observability.NewMetrics()
		mws = append(mws, middleware.NewInstrumentedMiddleware(app.Metrics))
	}
	mws = append(mws, middleware.NewLoggingMiddleware(logger))
	if cfg.History.ReadOnly {
		mws = append(mws, middleware.NewReadOnlyMiddleware())
	}
	app.History = middleware.Chain(store, mws...)

	app.Source = NewSource(cfg.Wikipedia)

	themeName := cfg.Render.Theme
	if opts.Theme != "" {
		themeName = opts.Theme
	}
	theme, err := domain.ParseTheme(themeName)
	if err != nil {
		app.Close()
		return nil, err
	}

	renderer := NewRenderer(cfg.Render, logger)
	app.closers = append(app.closers, renderer.Close)

	cardOpts := []card.Option{card.WithViewport(cfg.Render.Width, cfg.Render.Height)}
	if cfg.Render.Footer != "" {
		cardOpts = append(cardOpts, card.WithFooter(cfg.Render.Footer))
	}

	botOpts := []wikicard.Option{
		wikicard.WithSource(app.Source),
		wikicard.WithHistory(app.History),
		wikicard.WithRenderer(renderer),
		wikicard.WithLogger(logger),
		wikicard.WithDefaultTheme(theme),
		wikicard.WithMaxAttempts(cfg.Acquisition.MaxAttempts),
		wikicard.WithCardOptions(cardOpts...),
	}
	if app.Metrics != nil {
		botOpts = append(botOpts, wikicard.WithMetrics(app.Metrics))
	}
	if opts.NoRecord {
		botOpts = append(botOpts, wikicard.WithoutRecording())
	}
	app.Bot = wikicard.New(botOpts...)
	return app, nil
}

// Close releases every resource opened by NewApp, last opened first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenHistory opens the configured history backend.
// The returned close function is nil when the backend holds no resources.
func OpenHistory(ctx context.Context, cfg config.History) (ports.HistoryStore, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil

	case config.BackendFile:
		path := cfg.Path
		if path == "" {
			path = defaultFilePath
		}
		return file.New(path), nil, nil

	case config.BackendSQLite:
		path := cfg.Path
		if path == "" {
			path = defaultSQLitePath
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.BackendRedis:
		var opts []redis.Option
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		if cfg.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL))
		}
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("history backend redis at %s: %w", cfg.RedisAddr, err)
		}
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

// NewSource builds the Wikipedia client.
func NewSource(cfg config.Wikipedia) *wikipedia.Client {
	var opts []wikipedia.Option
	if cfg.BaseURL != "" {
		opts = append(opts, wikipedia.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, wikipedia.WithTimeout(cfg.Timeout))
	}
	return wikipedia.NewClient(cfg.ContactEmail, opts...)
}

// NewRenderer builds the headless Chrome renderer. The browser starts on first render.
func NewRenderer(cfg config.Render, logger *slog.Logger) *rod.Renderer {
	opts := []rod.Option{
		rod.WithLogger(logger),
		rod.WithHeadless(cfg.Headless),
	}
	if cfg.BrowserBin != "" {
		opts = append(opts, rod.WithBin(cfg.BrowserBin))
	}
	if cfg.ControlURL != "" {
		opts = append(opts, rod.WithControlURL(cfg.ControlURL))
	}
	if cfg.NoSandbox {
		opts = append(opts, rod.WithNoSandbox())
	}
	return rod.New(opts...)
}
