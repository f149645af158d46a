package emit

import (
	"fmt"
	"io"

	"github.com/gosynge/diff3merge/internal/diff2"
	"github.com/gosynge/diff3merge/internal/threeway"
)

// EdScript writes an ed script that applies the changes between the
// second and third files to the first. The chain is traversed in
// reverse so every command's line numbers refer to the file before
// any earlier command has been applied. Returns whether any conflict
// hunks were emitted.
func EdScript(w io.Writer, chain threeway.Chain, m Mapping, labels [3]string, p Policy) (bool, error) {
	ew := &errWriter{w: w}
	conflicts := false

	for bi := len(chain) - 1; bi >= 0; bi-- {
		b := &chain[bi]
		typ := effectiveKind(b, m)

		var conflict bool
		switch typ {
		case threeway.Only2:
			if !p.Show2nd {
				continue
			}
			conflict = true
		case threeway.Only3:
			if p.OverlapOnly {
				continue
			}
		case threeway.All:
			if p.SimpleOnly {
				continue
			}
			conflict = p.Flagging
		default:
			// ONLY_1: the first file already carries the change.
			continue
		}

		r0 := b.Range(m.Map[0])
		low0, high0 := r0.Lo, r0.Hi

		if conflict {
			conflicts = true

			// Close the conflict first; the opening bracket is
			// prepended by a second command below, so the appended
			// tail never shifts it.
			fmt.Fprintf(ew, "%da\n", high0)
			leadingDot := false
			if typ == threeway.All {
				if p.Show2nd {
					fmt.Fprintf(ew, "||||||| %s\n", labels[1])
					leadingDot = dotlines(ew, b.Lines(m.Map[1]))
				}
				_, _ = io.WriteString(ew, "=======\n")
				if dotlines(ew, b.Lines(m.Map[2])) {
					leadingDot = true
				}
			}
			fmt.Fprintf(ew, ">>>>>>> %s\n", labels[2])
			undotlines(ew, leadingDot, high0+2,
				b.NumLines(m.Map[1])+b.NumLines(m.Map[2])+1)

			name := labels[0]
			if typ != threeway.All {
				name = labels[1]
			}
			fmt.Fprintf(ew, "%da\n<<<<<<< %s\n", low0-1, name)
			leadingDot = false
			if typ == threeway.Only2 {
				leadingDot = dotlines(ew, b.Lines(m.Map[1]))
				_, _ = io.WriteString(ew, "=======\n")
			}
			undotlines(ew, leadingDot, low0+1, b.NumLines(m.Map[1]))
			continue
		}

		if b.NumLines(m.Map[2]) == 0 {
			if low0 == high0 {
				fmt.Fprintf(ew, "%dd\n", low0)
			} else {
				fmt.Fprintf(ew, "%d,%dd\n", low0, high0)
			}
			continue
		}

		switch high0 - low0 {
		case -1:
			fmt.Fprintf(ew, "%da\n", high0)
		case 0:
			fmt.Fprintf(ew, "%dc\n", high0)
		default:
			fmt.Fprintf(ew, "%d,%dc\n", low0, high0)
		}
		undotlines(ew, dotlines(ew, b.Lines(m.Map[2])), low0, b.NumLines(m.Map[2]))
	}

	if p.FinalWrite {
		_, _ = io.WriteString(ew, "w\nq\n")
	}
	return conflicts, ew.sinkErr()
}

// dotlines writes lines, doubling any leading '.' so ed's append mode
// cannot mistake the content for its terminator. Reports whether any
// dot was doubled.
func dotlines(w io.Writer, lines []diff2.Line) bool {
	leading := false
	for _, ln := range lines {
		if len(ln.Text) > 0 && ln.Text[0] == '.' {
			leading = true
			_, _ = w.Write([]byte{'.'})
		}
		_, _ = w.Write(ln.Text)
	}
	return leading
}

// undotlines closes an append with "." and, if dots were doubled,
// emits the substitute command that strips them back off, covering
// num lines starting at start.
func undotlines(w io.Writer, leadingDot bool, start, num int) {
	_, _ = io.WriteString(w, ".\n")
	if !leadingDot {
		return
	}
	if num == 1 {
		fmt.Fprintf(w, "%ds/^\\.//\n", start)
	} else {
		fmt.Fprintf(w, "%d,%ds/^\\.//\n", start, start+num-1)
	}
}
