/*
Package domain contains the core data model of wikicard.

It defines what an article is once it has been fetched, how a distributed article is
remembered, and the fully resolved description of a card that a renderer draws.
This package is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Article: a single encyclopedia summary (title, plain and HTML extract, optional lead image).
  - HistoryRecord: the durable marker that an article has already been distributed.
  - RenderSpec: the renderer-agnostic description of a card (theme, palette, font size, layout).
  - Error: a typed failure carrying an ErrorKind so callers can branch without string matching.
*/
package domain
