package acquisition

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTitleBytes is the longest page title Wikipedia accepts.
const MaxTitleBytes = 255

var (
	ErrTitleEmpty    = errors.New("title is empty")
	ErrTitleTooLarge = errors.New("title exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("title contains invalid UTF-8 sequences")
)

// SanitizeTitle cleans a user supplied page title: it rejects invalid UTF-8,
// drops control characters (ANSI escapes, NUL, BEL) and collapses whitespace.
// Titles that end up empty or longer than MaxTitleBytes are rejected rather
// than truncated.
func SanitizeTitle(title string) (string, error) {
	if !utf8.ValidString(title) {
		return "", ErrInvalidUTF8
	}

	// Fast path: no control characters.
	clean := strings.IndexFunc(title, isUnsafeControl) < 0
	if !clean {
		var b strings.Builder
		b.Grow(len(title))
		for _, r := range title {
			if !isUnsafeControl(r) {
				b.WriteRune(r)
			}
		}
		title = b.String()
	}

	title = Normalize(title)
	if title == "" {
		return "", ErrTitleEmpty
	}
	if len(title) > MaxTitleBytes {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTitleTooLarge, len(title), MaxTitleBytes)
	}
	return title, nil
}

// isUnsafeControl keeps whitespace controls so Normalize can fold them into spaces.
func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
