package card

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/aretw0/wikicard/internal/logging"
	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/ports"
)

const (
	// Selector is the element the image is cropped to.
	Selector = "#card"

	DefaultWidth  = 1080
	DefaultHeight = 1350

	DefaultFooter = "Wikipedia · random article"

	opGenerate = "generate_card"
)

//go:embed templates/card.html.tmpl
var cardTemplate string

var tmpl = template.Must(template.New("card").Parse(cardTemplate))

// params are the template slots. Layout decisions arrive as booleans.
type params struct {
	Title       string
	ExtractHTML template.HTML
	FontSizePx  uint
	CardBg      template.CSS
	TextMain    template.CSS
	TextTitle   template.CSS
	Border      template.CSS
	Layout      string
	Banner      bool
	Split       bool
	ImageURL    string
	Width       int
	Footer      string
}

// Generator renders cards through a ports.Renderer.
type Generator struct {
	renderer  ports.Renderer
	userAgent string
	width     int
	height    int
	footer    string
	logger    *slog.Logger
}

// Option configures the Generator.
type Option func(*Generator)

// WithLogger configures a logger for the Generator.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithUserAgent sets the client header used by the renderer when it loads images and fonts.
func WithUserAgent(ua string) Option {
	return func(g *Generator) {
		g.userAgent = ua
	}
}

// WithViewport sets the viewport size. The card width follows the viewport width.
func WithViewport(width, height int) Option {
	return func(g *Generator) {
		if width > 0 {
			g.width = width
		}
		if height > 0 {
			g.height = height
		}
	}
}

// WithFooter replaces the footer text.
func WithFooter(footer string) Option {
	return func(g *Generator) {
		g.footer = footer
	}
}

// NewGenerator creates a Generator.
func NewGenerator(renderer ports.Renderer, opts ...Option) *Generator {
	g := &Generator{
		renderer: renderer,
		width:    DefaultWidth,
		height:   DefaultHeight,
		footer:   DefaultFooter,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BuildHTML fills the card template for spec.
func (g *Generator) BuildHTML(spec domain.RenderSpec) (string, error) {
	p := params{
		Title:       spec.Title,
		ExtractHTML: template.HTML(spec.ExtractHTML),
		FontSizePx:  spec.FontSizePx,
		CardBg:      template.CSS(spec.Palette.CardBg),
		TextMain:    template.CSS(spec.Palette.TextMain),
		TextTitle:   template.CSS(spec.Palette.TextTitle),
		Border:      template.CSS(spec.Palette.Border),
		Layout:      string(spec.Layout),
		Width:       g.width,
		Footer:      g.footer,
	}

	switch spec.Layout {
	case domain.LayoutLandscape:
		if spec.Image == nil {
			return "", fmt.Errorf("layout %s requires an image", spec.Layout)
		}
		p.Banner = true
		p.ImageURL = spec.Image.URL
	case domain.LayoutPortraitSplit:
		if spec.Image == nil {
			return "", fmt.Errorf("layout %s requires an image", spec.Layout)
		}
		p.Split = true
		p.ImageURL = spec.Image.URL
	case domain.LayoutTextOnly:
	default:
		return "", fmt.Errorf("unknown layout %q", spec.Layout)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("failed to execute card template: %w", err)
	}
	return buf.String(), nil
}

// Generate renders spec to PNG. Every failure is a domain error of kind KindRenderFailed.
func (g *Generator) Generate(ctx context.Context, spec domain.RenderSpec, traceID string) ([]byte, error) {
	start := time.Now()

	doc, err := g.BuildHTML(spec)
	if err != nil {
		g.logger.Error("Error building card document", "trace_id", traceID, "err", err)
		return nil, domain.NewError(domain.KindRenderFailed, opGenerate, err.Error(), nil)
	}

	png, err := g.renderer.Render(ctx, doc, ports.RenderOptions{
		Selector:  Selector,
		Width:     g.width,
		Height:    g.height,
		UserAgent: g.userAgent,
	})
	if err == nil && len(png) == 0 {
		err = errors.New("renderer returned an empty image")
	}
	if err != nil {
		g.logger.Error("Error rendering card", "trace_id", traceID, "title", spec.Title, "err", err)
		// The renderer error is flattened to text so its types stay behind the boundary.
		// Only an expired or cancelled context is kept as the cause.
		return nil, domain.NewError(domain.KindRenderFailed, opGenerate, err.Error(), ctx.Err())
	}

	g.logger.Debug("Card rendered",
		"trace_id", traceID,
		"title", spec.Title,
		"layout", spec.Layout,
		"bytes", len(png),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return png, nil
}
