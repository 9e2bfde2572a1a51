package card_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wikicard/pkg/card"
	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/layout"
	"github.com/aretw0/wikicard/pkg/ports"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

type browserCrash struct{ reason string }

func (e *browserCrash) Error() string { return "browser crashed: " + e.reason }

type fakeRenderer struct {
	html string
	opts ports.RenderOptions
	out  []byte
	err  error
}

func (f *fakeRenderer) Render(ctx context.Context, html string, opts ports.RenderOptions) ([]byte, error) {
	f.html = html
	f.opts = opts
	return f.out, f.err
}

func article(img *domain.Image) domain.Article {
	return domain.Article{
		ID:          "1",
		Title:       "Ada <Lovelace>",
		ExtractHTML: "<p><b>Ada Lovelace</b> was an <i>English</i> mathematician.</p>",
		Image:       img,
	}
}

func TestGenerate_Success(t *testing.T) {
	r := &fakeRenderer{out: pngMagic}
	g := card.NewGenerator(r, card.WithUserAgent("wikicard/test"))

	spec := layout.Resolve(article(nil), nil)
	png, err := g.Generate(context.Background(), spec, "trace")
	require.NoError(t, err)
	assert.Equal(t, pngMagic, png)

	assert.Equal(t, card.Selector, r.opts.Selector)
	assert.Equal(t, "wikicard/test", r.opts.UserAgent)
	assert.Equal(t, card.DefaultWidth, r.opts.Width)
	assert.Equal(t, card.DefaultHeight, r.opts.Height)
	assert.Contains(t, r.html, `id="card"`)
}

func TestGenerate_WrapsRendererFailure(t *testing.T) {
	cause := &browserCrash{reason: "oom"}
	g := card.NewGenerator(&fakeRenderer{err: cause})

	_, err := g.Generate(context.Background(), layout.Resolve(article(nil), nil), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRenderFailed)
	assert.Equal(t, domain.KindRenderFailed, domain.KindOf(err))
	assert.Contains(t, err.Error(), "oom")

	var crash *browserCrash
	assert.False(t, errors.As(err, &crash), "renderer error types must not leak")
}

func TestGenerate_EmptyImageIsFailure(t *testing.T) {
	g := card.NewGenerator(&fakeRenderer{})

	_, err := g.Generate(context.Background(), layout.Resolve(article(nil), nil), "")
	assert.ErrorIs(t, err, domain.ErrRenderFailed)
}

func TestGenerate_InvalidSpecIsRenderFailure(t *testing.T) {
	r := &fakeRenderer{out: pngMagic}
	g := card.NewGenerator(r)

	spec := domain.RenderSpec{Layout: domain.LayoutLandscape}
	_, err := g.Generate(context.Background(), spec, "")
	assert.ErrorIs(t, err, domain.ErrRenderFailed)
	assert.Empty(t, r.html, "renderer must not be called")
}

func TestBuildHTML_Layouts(t *testing.T) {
	g := card.NewGenerator(&fakeRenderer{})

	t.Run("Landscape banner", func(t *testing.T) {
		spec := layout.Resolve(article(&domain.Image{URL: "https://upload.example.org/wide.jpg", Width: 1000, Height: 500}), nil)
		doc, err := g.BuildHTML(spec)
		require.NoError(t, err)
		assert.Contains(t, doc, `class="banner" src="https://upload.example.org/wide.jpg"`)
		assert.NotContains(t, doc, `<div class="split">`)
		assert.Contains(t, doc, "layout-landscape")
	})

	t.Run("Portrait split", func(t *testing.T) {
		spec := layout.Resolve(article(&domain.Image{URL: "https://upload.example.org/tall.jpg", Width: 500, Height: 1000}), nil)
		doc, err := g.BuildHTML(spec)
		require.NoError(t, err)
		assert.Contains(t, doc, `<div class="split">`)
		assert.Contains(t, doc, `src="https://upload.example.org/tall.jpg"`)
		assert.NotContains(t, doc, `class="banner"`)
	})

	t.Run("Text only", func(t *testing.T) {
		doc, err := g.BuildHTML(layout.Resolve(article(nil), nil))
		require.NoError(t, err)
		assert.NotContains(t, doc, "<img")
	})

	t.Run("Unknown layout", func(t *testing.T) {
		_, err := g.BuildHTML(domain.RenderSpec{Layout: "diagonal"})
		assert.Error(t, err)
	})
}

func TestBuildHTML_Content(t *testing.T) {
	g := card.NewGenerator(&fakeRenderer{}, card.WithFooter("Daily card"))
	spec := layout.ResolveTheme(article(nil), domain.ThemeDark)

	doc, err := g.BuildHTML(spec)
	require.NoError(t, err)

	// Title is escaped, extract markup is kept.
	assert.Contains(t, doc, "Ada &lt;Lovelace&gt;")
	assert.Contains(t, doc, "<b>Ada Lovelace</b>")
	assert.Contains(t, doc, "<i>English</i>")

	assert.Contains(t, doc, "background-color: #202122")
	assert.Contains(t, doc, "color: #eaecf0")
	assert.Contains(t, doc, "font-size: 34px")
	assert.Contains(t, doc, "Daily card")
	assert.True(t, strings.Contains(doc, "background: transparent"))
}

func TestBuildHTML_ViewportWidth(t *testing.T) {
	g := card.NewGenerator(&fakeRenderer{}, card.WithViewport(800, 0))

	doc, err := g.BuildHTML(layout.Resolve(article(nil), nil))
	require.NoError(t, err)
	assert.Contains(t, doc, "width: 800px")
}

// stalledRenderer never finishes before the context does.
type stalledRenderer struct{}

func (stalledRenderer) Render(ctx context.Context, html string, opts ports.RenderOptions) ([]byte, error) {
	<-ctx.Done()
	return nil, &browserCrash{reason: ctx.Err().Error()}
}

func TestGenerate_KeepsDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	g := card.NewGenerator(stalledRenderer{})
	_, err := g.Generate(ctx, layout.Resolve(domain.Article{Title: "Slow"}, nil), "t")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRenderFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var crash *browserCrash
	assert.False(t, errors.As(err, &crash))
}
