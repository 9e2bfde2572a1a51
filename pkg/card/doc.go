// Package card turns a resolved domain.RenderSpec into a PNG image.
//
// The Generator fills an embedded HTML template and hands the document to a
// ports.Renderer. Renderer failures never escape as renderer types: callers only
// ever see a domain error of kind KindRenderFailed.
package card
