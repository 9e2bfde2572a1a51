package domain

// Image is the illustrative lead image of an article.
type Image struct {
	URL    string `json:"url"`
	Width  uint   `json:"width"`
	Height uint   `json:"height"`
}

// IsLandscape reports whether the image is strictly wider than it is tall.
// Square images are treated as portrait.
func (i Image) IsLandscape() bool {
	return i.Width > i.Height
}

// Article is a fetched encyclopedia summary.
// It is immutable once it leaves the acquisition service.
type Article struct {
	// ID is the opaque page identifier. It is the only field used for deduplication.
	ID string `json:"id"`

	Title string `json:"title"`

	// ExtractPlain is the whitespace-normalized plain text extract.
	ExtractPlain string `json:"extract"`

	// ExtractHTML keeps the source markup (bold, italic) for rendering.
	ExtractHTML string `json:"extract_html"`

	// Image is nil when the article has no lead image.
	Image *Image `json:"image,omitempty"`
}

// HasImage reports whether the article carries a lead image.
func (a Article) HasImage() bool {
	return a.Image != nil
}
