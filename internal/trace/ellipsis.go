package trace

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Ellipsis shortens s to at most maxWidth display cells, appending
// "..." when content was dropped. Diff output echoed in diagnostics
// can carry arbitrarily long or wide lines; widths are measured per
// grapheme cluster so CJK and combining characters count as rendered.
func Ellipsis(s string, maxWidth int) string {
	if uniseg.StringWidth(s) <= maxWidth {
		return s
	}
	budget := maxWidth - 3
	if budget < 1 {
		budget = 1
	}
	var b strings.Builder
	w := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cw := g.Width()
		if w+cw > budget {
			break
		}
		b.WriteString(g.Str())
		w += cw
	}
	b.WriteString("...")
	return b.String()
}
