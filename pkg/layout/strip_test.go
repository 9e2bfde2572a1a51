package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/wikicard/pkg/layout"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Empty", "", ""},
		{"Plain", "hello", "hello"},
		{"Nested", "<p><b>Alan</b> <i>Turing</i></p>", "Alan Turing"},
		{"Entities", "Fish &amp; chips &lt;3", "Fish & chips <3"},
		{"Attributes", `<span class="x" title="a>b">text</span>`, "text"},
		{"Self closing", "a<br/>b", "ab"},
		{"Script dropped", "<p>x</p><script>var a = 1;</script><p>y</p>", "xy"},
		{"Style dropped", "<style>p{color:red}</style>z", "z"},
		{"Comment dropped", "a<!-- hidden -->b", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, layout.StripTags(tt.in))
		})
	}
}

func TestPlainLength(t *testing.T) {
	assert.Equal(t, 0, layout.PlainLength(""))
	assert.Equal(t, 5, layout.PlainLength("<b>héllo</b>"))
	assert.Equal(t, 1, layout.PlainLength("&amp;"))
}
