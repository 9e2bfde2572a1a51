package tui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wikicard/internal/presentation/tui"
	"github.com/aretw0/wikicard/pkg/domain"
)

func TestArticleMarkdown(t *testing.T) {
	a := domain.Article{
		ID:           "42",
		Title:        "Alan Turing",
		ExtractPlain: "English mathematician.",
		Image:        &domain.Image{Width: 640, Height: 480},
	}
	spec := domain.RenderSpec{Layout: domain.LayoutLandscape, Theme: domain.ThemeDark, FontSizePx: 34}

	md := tui.ArticleMarkdown(a, spec)
	assert.Contains(t, md, "# Alan Turing")
	assert.Contains(t, md, "English mathematician.")
	assert.Contains(t, md, "| Layout | landscape |")
	assert.Contains(t, md, "| Font size | 34px |")
	assert.Contains(t, md, "640x480")
}

func TestPreview(t *testing.T) {
	out, err := tui.Preview(domain.Article{ID: "1", Title: "Go"}, domain.RenderSpec{Layout: domain.LayoutTextOnly})
	require.NoError(t, err)
	assert.Contains(t, out, "Go")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.NotEmpty(t, buf.String())
}
