// Package rod renders card documents with a headless Chrome driven by go-rod.
package rod

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/aretw0/wikicard/internal/logging"
	"github.com/aretw0/wikicard/pkg/ports"
)

// Renderer implements ports.Renderer.
// One browser is shared by all renders; each render gets its own page.
type Renderer struct {
	bin        string
	headless   bool
	controlURL string
	noSandbox  bool
	logger     *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser
}

// Option configures the Renderer.
type Option func(*Renderer)

// WithLogger configures a logger for the Renderer.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithBin uses a specific Chrome binary instead of the one the launcher finds or downloads.
func WithBin(bin string) Option {
	return func(r *Renderer) {
		r.bin = bin
	}
}

// WithHeadless toggles headless mode. Default is true.
func WithHeadless(headless bool) Option {
	return func(r *Renderer) {
		r.headless = headless
	}
}

// WithControlURL connects to an already running browser instead of launching one.
func WithControlURL(u string) Option {
	return func(r *Renderer) {
		r.controlURL = u
	}
}

// WithNoSandbox disables the Chrome sandbox, required when running as root in containers.
func WithNoSandbox() Option {
	return func(r *Renderer) {
		r.noSandbox = true
	}
}

// New creates a Renderer. The browser is started on first use.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		headless: true,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches or connects to the browser. Calling it again is a no-op
// while the browser is alive.
func (r *Renderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.ensureBrowserLocked(ctx)
	return err
}

func (r *Renderer) ensureBrowserLocked(ctx context.Context) (*rod.Browser, error) {
	if r.browser != nil {
		if _, err := r.browser.Version(); err == nil {
			return r.browser, nil
		}
		r.logger.Warn("Stale browser connection detected, reconnecting")
		_ = r.browser.Close()
		r.browser = nil
	}

	controlURL := r.controlURL
	if controlURL == "" {
		l := launcher.New().Headless(r.headless)
		if r.bin != "" {
			l = l.Bin(r.bin)
		}
		if r.noSandbox {
			l = l.NoSandbox(true)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
	}

	// The browser outlives the request that started it.
	browser := rod.New().ControlURL(controlURL).Context(context.WithoutCancel(ctx))
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	r.logger.Debug("Browser connected", "control_url", controlURL)
	r.browser = browser
	return browser, nil
}

// Render loads html into a fresh page and captures the element named by opts.Selector.
func (r *Renderer) Render(ctx context.Context, html string, opts ports.RenderOptions) ([]byte, error) {
	if opts.Selector == "" {
		return nil, errors.New("render: selector is required")
	}

	r.mu.Lock()
	browser, err := r.ensureBrowserLocked(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	// Close through the unbound page: a cancelled request must still close its tab.
	defer func() {
		if cerr := page.Close(); cerr != nil {
			r.logger.Warn("Failed to close page", "err", cerr)
		}
	}()
	return r.capture(page.Context(ctx), html, opts)
}

// capture drives one page bound to the request context.
func (r *Renderer) capture(page *rod.Page, html string, opts ports.RenderOptions) ([]byte, error) {
	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	if opts.Width > 0 && opts.Height > 0 {
		if err := (proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1.0,
			Mobile:            false,
		}).Call(page); err != nil {
			return nil, fmt.Errorf("set viewport: %w", err)
		}
	}

	transparent := 0.0
	if err := (proto.EmulationSetDefaultBackgroundColorOverride{
		Color: &proto.DOMRGBA{A: &transparent},
	}).Call(page); err != nil {
		return nil, fmt.Errorf("set transparent background: %w", err)
	}

	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for load: %w", err)
	}

	el, err := page.Element(opts.Selector)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", opts.Selector, err)
	}
	png, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 100)
	if err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", opts.Selector, err)
	}
	return png, nil
}

// Close shuts the browser down.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}

var _ ports.Renderer = (*Renderer)(nil)
