package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/aretw0/wikicard/pkg/buildinfo"
)

// PrintBanner writes the wikicard ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Wikipedia greys into the link blue
	lines := []struct {
		text  string
		color string
	}{
		{"         _ _    _                  _ ", "#a2a9b1"},
		{" __ __ _(_) |__(_)__ __ _ _ _ __| |", "#72777d"},
		{" \\ V  V / | / /| / _/ _` | '_/ _` |", "#3366cc"},
		{"  \\_/\\_/|_|_\\_\\|_\\__\\__,_|_| \\__,_|", "#2a4b8d"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  "+buildinfo.Version).Faint())
	fmt.Fprintln(w)
}
