/*
Package ports defines the driven ports (interfaces) of wikicard.

These interfaces decouple the acquisition and rendering logic from external
implementations, allowing the core to work with various article sources, history
backends, and rendering engines.

# Key Interfaces

  - ArticleSource: Fetches raw article summaries (random or by title).
  - HistoryStore: Remembers which article IDs have already been distributed.
  - Renderer: Turns an HTML document into a PNG cropped to one element.
*/
package ports
