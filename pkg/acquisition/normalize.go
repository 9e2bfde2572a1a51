package acquisition

import (
	"strings"
	"unicode"

	"github.com/aretw0/wikicard/pkg/domain"
)

// Normalize collapses every run of whitespace into a single space and trims both ends.
// The byte order mark U+FEFF counts as whitespace. Empty input yields empty output.
func Normalize(text string) string {
	return strings.Join(strings.FieldsFunc(text, isSpace), " ")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func normalizeArticle(a domain.Article) domain.Article {
	a.ExtractPlain = Normalize(a.ExtractPlain)
	return a
}
