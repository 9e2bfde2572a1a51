/*
Package wikicard turns random encyclopedia articles into shareable picture cards.

A card is produced in three steps. The acquisition service draws a random article
summary and checks it against a history of already distributed articles, drawing
again (up to five times) when it finds a duplicate. The layout engine then picks a
palette, a font size and a geometry (landscape banner, portrait split or text only)
from the article text and image. Finally a renderer rasterizes the filled HTML
template into a PNG cropped to the card.

# Architecture

The core lives in pkg/acquisition, pkg/layout and pkg/card and only talks to the
outside world through the ports in pkg/ports:

  - ArticleSource: the Wikipedia REST API (pkg/adapters/wikipedia).
  - HistoryStore: memory, file, sqlite or redis (pkg/adapters/...).
  - Renderer: headless Chrome through go-rod (pkg/adapters/rod).

# Usage

	bot := wikicard.New(
		wikicard.WithHistory(store),
		wikicard.WithLogger(logger),
	)
	defer bot.Close()

	c, err := bot.RandomCard(ctx, nil, "trace-1")
	switch {
	case errors.Is(err, domain.ErrExhaustedRetries):
		// every draw was a duplicate; try again later
	case err != nil:
		return err
	}
	os.WriteFile("card.png", c.PNG, 0o644)

The same Bot backs the CLI (cmd/wikicard), the HTTP API and the MCP server.
*/
package wikicard
