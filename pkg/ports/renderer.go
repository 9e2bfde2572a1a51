package ports

import "context"

// RenderOptions controls how a Renderer captures the document.
type RenderOptions struct {
	// Selector names the element the output is cropped to (e.g. "#card").
	Selector string

	// Width and Height size the viewport in CSS pixels.
	Width  int
	Height int

	// UserAgent is sent with every request the renderer makes (fonts, images).
	UserAgent string
}

// Renderer turns an HTML document into a PNG image.
// The background outside the selected element must be transparent.
type Renderer interface {
	Render(ctx context.Context, html string, opts RenderOptions) ([]byte, error)
}
