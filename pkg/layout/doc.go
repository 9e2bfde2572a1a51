// Package layout decides how an article is drawn on a card.
//
// Resolve is a pure function: the same article and theme always yield the same
// domain.RenderSpec. All branching on image orientation and text length happens here,
// so the HTML template only formats what it is given.
package layout
