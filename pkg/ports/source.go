package ports

import (
	"context"

	"github.com/aretw0/wikicard/pkg/domain"
)

// ArticleSource fetches article summaries from an upstream provider.
// Returned articles are raw: text normalization is the caller's job.
type ArticleSource interface {
	// Random returns a randomly drawn article. Each call is an independent draw.
	Random(ctx context.Context) (*domain.Article, error)

	// ByTitle returns the named article.
	// Implementations return an error matching domain.ErrNotFound if it does not exist.
	ByTitle(ctx context.Context, title string) (*domain.Article, error)
}
