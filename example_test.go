package wikicard_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/wikicard"
	"github.com/aretw0/wikicard/pkg/adapters/memory"
	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/ports"
)

// fixedSource serves a fixed list of articles in order.
type fixedSource struct {
	articles []domain.Article
}

func (s *fixedSource) Random(ctx context.Context) (*domain.Article, error) {
	if len(s.articles) == 0 {
		return nil, fmt.Errorf("no more articles")
	}
	a := s.articles[0]
	s.articles = s.articles[1:]
	return &a, nil
}

func (s *fixedSource) ByTitle(ctx context.Context, title string) (*domain.Article, error) {
	return nil, domain.ErrNotFound
}

// pngStub pretends to be a browser.
type pngStub struct{}

func (pngStub) Render(ctx context.Context, html string, opts ports.RenderOptions) ([]byte, error) {
	return []byte("\x89PNG\r\n\x1a\n"), nil
}

// ExampleBot_Spec shows how the layout follows the lead image.
func ExampleBot_Spec() {
	bot := wikicard.New(wikicard.WithRenderer(pngStub{}))

	dark := domain.ThemeDark
	spec := bot.Spec(domain.Article{
		ID:          "1",
		Title:       "Lighthouse",
		ExtractHTML: "<p>A <b>lighthouse</b> is a tower.</p>",
		Image:       &domain.Image{URL: "https://example.org/l.jpg", Width: 600, Height: 800},
	}, &dark)

	fmt.Println(spec.Layout, spec.Theme, spec.FontSizePx, spec.Palette.CardBg)
	// Output:
	// portrait_split dark 34 #202122
}

// ExampleNew_library uses wikicard as a library with an in-memory history:
// the article drawn first is skipped on the second draw.
func ExampleNew_library() {
	history := memory.NewStore()
	source := &fixedSource{articles: []domain.Article{
		{ID: "7", Title: "Seven"},
		{ID: "7", Title: "Seven"},
		{ID: "8", Title: "Eight"},
	}}

	bot := wikicard.New(
		wikicard.WithSource(source),
		wikicard.WithHistory(history),
		wikicard.WithRenderer(pngStub{}),
	)
	ctx := context.Background()

	for range 2 {
		card, err := bot.RandomCard(ctx, nil, "example")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(card.Article.Title, card.Spec.Layout)
	}
	fmt.Println("history size:", history.Len())
	// Output:
	// Seven text_only
	// Eight text_only
	// history size: 2
}
