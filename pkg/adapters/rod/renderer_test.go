package rod_test

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wikicard/pkg/adapters/rod"
	"github.com/aretw0/wikicard/pkg/card"
	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/layout"
	"github.com/aretw0/wikicard/pkg/ports"
)

func requireBrowser(t *testing.T) {
	t.Helper()
	if os.Getenv("WIKICARD_BROWSER_TESTS") != "1" {
		t.Skip("set WIKICARD_BROWSER_TESTS=1 to run headless Chrome tests")
	}
}

func TestRenderer_RequiresSelector(t *testing.T) {
	r := rod.New()
	_, err := r.Render(context.Background(), "<html></html>", ports.RenderOptions{})
	assert.Error(t, err)
	assert.NoError(t, r.Close())
}

func TestRenderer_RendersCard(t *testing.T) {
	requireBrowser(t)

	r := rod.New(rod.WithNoSandbox())
	t.Cleanup(func() { _ = r.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	g := card.NewGenerator(r, card.WithUserAgent("wikicard/test"))
	spec := layout.Resolve(domain.Article{
		Title:       "Gopher",
		ExtractHTML: "<p>The <b>gopher</b> is a small burrowing rodent.</p>",
	}, nil)

	png, err := g.Generate(ctx, spec, "browser-test")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")))
}

func TestRenderer_MissingElement(t *testing.T) {
	requireBrowser(t)

	r := rod.New(rod.WithNoSandbox())
	t.Cleanup(func() { _ = r.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.Render(ctx, "<html><body>nothing</body></html>", ports.RenderOptions{Selector: "#card"})
	assert.Error(t, err)
}
