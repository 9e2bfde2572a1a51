package domain

import (
	"fmt"
	"strings"
)

// Theme selects the card palette.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme converts user input into a Theme.
// An empty string yields ThemeLight.
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ThemeLight):
		return ThemeLight, nil
	case string(ThemeDark):
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("unknown theme %q (expected light or dark)", s)
	}
}

// Layout is the visual arrangement of text and image on the card.
type Layout string

const (
	// LayoutLandscape puts the image as a banner above the text.
	LayoutLandscape Layout = "landscape"
	// LayoutPortraitSplit puts the image beside the text.
	LayoutPortraitSplit Layout = "portrait_split"
	// LayoutTextOnly is used when the article has no image.
	LayoutTextOnly Layout = "text_only"
)

// Palette holds the CSS colors of a theme.
type Palette struct {
	CardBg    string `json:"card_bg"`
	TextMain  string `json:"text_main"`
	TextTitle string `json:"text_title"`
	Border    string `json:"border"`
}

// RenderSpec is the fully resolved description of a card.
// It is derived and ephemeral; it is never persisted.
type RenderSpec struct {
	Title       string  `json:"title"`
	ExtractHTML string  `json:"extract_html"`
	Theme       Theme   `json:"theme"`
	Palette     Palette `json:"palette"`
	FontSizePx  uint    `json:"font_size_px"`
	Layout      Layout  `json:"layout"`
	Image       *Image  `json:"image,omitempty"`
}
