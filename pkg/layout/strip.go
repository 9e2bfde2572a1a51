package layout

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// StripTags removes markup from an HTML fragment and decodes entities.
// Text inside script and style elements is dropped.
func StripTags(fragment string) string {
	if fragment == "" {
		return ""
	}

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input: keep what was read so far.
			return sb.String()
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken:
			if isRawText(z) {
				skip++
			}
		case html.EndTagToken:
			if isRawText(z) && skip > 0 {
				skip--
			}
		}
	}
}

// PlainLength is the number of characters left after StripTags.
func PlainLength(fragment string) int {
	return utf8.RuneCountInString(StripTags(fragment))
}

func isRawText(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}
