package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/wikicard/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// ArticleMarkdown formats an article and its layout decision for terminal preview.
func ArticleMarkdown(a domain.Article, spec domain.RenderSpec) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", a.Title)
	if a.ExtractPlain != "" {
		sb.WriteString(a.ExtractPlain)
		sb.WriteString("\n\n")
	}
	sb.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Page ID | `%s` |\n", a.ID)
	fmt.Fprintf(&sb, "| Layout | %s |\n", spec.Layout)
	fmt.Fprintf(&sb, "| Theme | %s |\n", spec.Theme)
	fmt.Fprintf(&sb, "| Font size | %dpx |\n", spec.FontSizePx)
	if a.Image != nil {
		fmt.Fprintf(&sb, "| Image | %dx%d |\n", a.Image.Width, a.Image.Height)
	}
	return sb.String()
}

// Preview renders ArticleMarkdown through glamour.
func Preview(a domain.Article, spec domain.RenderSpec) (string, error) {
	return NewRenderer()(ArticleMarkdown(a, spec))
}
