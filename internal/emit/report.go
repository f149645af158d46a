package emit

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mgutz/ansi"

	"github.com/gosynge/diff3merge/internal/locale"
	"github.com/gosynge/diff3merge/internal/threeway"
)

// ReportOptions selects the report emitter's presentation knobs.
type ReportOptions struct {
	// InitialTab prefixes displayed lines with a tab instead of two
	// spaces so tabs in the content keep lining up (-T).
	InitialTab bool
	// Color highlights the hunk separators when the sink is a
	// terminal. Never set for piped output; the byte format is the
	// interface.
	Color bool
}

var sepColor = ansi.ColorFunc("yellow+b")

// Go 0, 2, 1 when the first and third outputs are equivalent.
var skewIncrement = [3]int{2, 3, 1}

// Report writes the tagged three-way report: for each hunk a
// separator naming the odd file out, then per file a header and the
// file's lines.
func Report(w io.Writer, chain threeway.Chain, m Mapping, opts ReportOptions) error {
	ew := &errWriter{w: w}
	prefix := "  "
	if opts.InitialTab {
		prefix = "\t"
	}

	for bi := range chain {
		b := &chain[bi]

		// ALL prints every file; ONLY_k suppresses the content of one
		// of the two files that match, keeping its header.
		dontprint := 3
		oddoneout := 3
		sep := "===="
		if b.Kind != threeway.All {
			oddoneout = m.Rev[int(b.Kind-threeway.Only1)]
			sep += strconv.Itoa(oddoneout + 1)
			if oddoneout == 0 {
				dontprint = 1
			} else {
				dontprint = 0
			}
		}
		if opts.Color {
			sep = sepColor(sep)
		}
		fmt.Fprintf(ew, "%s\n", sep)

		for i := 0; i < 3; i = nextPosition(i, oddoneout) {
			realfile := m.Map[i]
			r := b.Range(realfile)

			// An empty range between lines lo-1 and lo is an append
			// spot, written "Na" against the preceding line.
			switch r.Lo - r.Hi {
			case 1:
				fmt.Fprintf(ew, "%d:%da\n", i+1, r.Lo-1)
			case 0:
				fmt.Fprintf(ew, "%d:%dc\n", i+1, r.Lo)
			default:
				fmt.Fprintf(ew, "%d:%d,%dc\n", i+1, r.Lo, r.Hi)
			}

			if i == dontprint {
				continue
			}
			lines := b.Lines(realfile)
			for li, ln := range lines {
				_, _ = io.WriteString(ew, prefix)
				_, _ = ew.Write(ln.Text)
				if li == len(lines)-1 && (len(ln.Text) == 0 || ln.Text[len(ln.Text)-1] != '\n') {
					fmt.Fprintf(ew, "\n\\ %s\n", locale.W("No newline at end of file"))
				}
			}
		}
	}
	return ew.sinkErr()
}

func nextPosition(i, oddoneout int) int {
	if oddoneout == 1 {
		return skewIncrement[i]
	}
	return i + 1
}
