package layout

import (
	"github.com/aretw0/wikicard/pkg/domain"
)

const (
	// LongTextThreshold is the plain-text length above which the smaller font is used.
	LongTextThreshold = 400

	FontSizeLong  uint = 26
	FontSizeShort uint = 34
)

var palettes = map[domain.Theme]domain.Palette{
	domain.ThemeLight: {
		CardBg:    "#ffffff",
		TextMain:  "#202122",
		TextTitle: "#000000",
		Border:    "#a2a9b1",
	},
	domain.ThemeDark: {
		CardBg:    "#202122",
		TextMain:  "#eaecf0",
		TextTitle: "#ffffff",
		Border:    "#a2a9b1",
	},
}

// PaletteFor returns the palette of a theme. Unknown themes get the light palette.
func PaletteFor(theme domain.Theme) domain.Palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes[domain.ThemeLight]
}

// FontSize returns the font size for a plain-text length.
// Exactly LongTextThreshold characters still get the larger size.
func FontSize(plainLen int) uint {
	if plainLen > LongTextThreshold {
		return FontSizeLong
	}
	return FontSizeShort
}

// Orientation picks the layout for an optional image. Square images are portrait.
func Orientation(img *domain.Image) domain.Layout {
	switch {
	case img == nil:
		return domain.LayoutTextOnly
	case img.IsLandscape():
		return domain.LayoutLandscape
	default:
		return domain.LayoutPortraitSplit
	}
}

// Resolve computes the render spec of an article. A nil theme means light.
func Resolve(article domain.Article, theme *domain.Theme) domain.RenderSpec {
	t := domain.ThemeLight
	if theme != nil && *theme != "" {
		t = *theme
	}
	if _, ok := palettes[t]; !ok {
		t = domain.ThemeLight
	}

	spec := domain.RenderSpec{
		Title:       article.Title,
		ExtractHTML: article.ExtractHTML,
		Theme:       t,
		Palette:     PaletteFor(t),
		FontSizePx:  FontSize(PlainLength(article.ExtractHTML)),
		Layout:      Orientation(article.Image),
	}
	if article.Image != nil {
		img := *article.Image
		spec.Image = &img
	}
	return spec
}

// ResolveTheme is Resolve with a non-optional theme.
func ResolveTheme(article domain.Article, theme domain.Theme) domain.RenderSpec {
	return Resolve(article, &theme)
}
