package emit

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/gosynge/diff3merge/internal/diff3err"
	"github.com/gosynge/diff3merge/internal/threeway"
)

// Merge streams the first file through to w, splicing in each hunk's
// third-file lines and bracketing conflicts. It acts like applying
// the ed script, except it also works for binary data and lines with
// no trailing newline. Returns whether any conflict hunks were
// emitted.
func Merge(w io.Writer, ancestor io.Reader, chain threeway.Chain, m Mapping, labels [3]string, p Policy) (bool, error) {
	ew := &errWriter{w: w}
	in := bufio.NewReader(ancestor)
	conflicts := false
	linesread := 0

	for bi := range chain {
		b := &chain[bi]
		typ := effectiveKind(b, m)
		format2nd := "<<<<<<< %s\n"

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
			// In an ALL conflict the second file is the base, shown
			// between ||||||| and =======.
			format2nd = "||||||| %s\n"
		default:
			continue
		}

		// Copy the equal region before this hunk verbatim.
		for i0 := b.F0.Lo - linesread - 1; i0 > 0; i0-- {
			linesread++
			line, err := in.ReadBytes('\n')
			_, _ = ew.Write(line)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return conflicts, shrankErr()
				}
				return conflicts, diff3err.New(diff3err.IO, "input", err)
			}
		}

		if conflict {
			conflicts = true
			if typ == threeway.All {
				fmt.Fprintf(ew, "<<<<<<< %s\n", labels[0])
				writeLines(ew, b.Lines(m.Map[0]))
			}
			if p.Show2nd {
				fmt.Fprintf(ew, format2nd, labels[1])
				writeLines(ew, b.Lines(m.Map[1]))
			}
			_, _ = io.WriteString(ew, "=======\n")
		}

		writeLines(ew, b.Lines(m.Map[2]))

		if conflict {
			fmt.Fprintf(ew, ">>>>>>> %s\n", labels[2])
		}

		// Discard the first-file lines this hunk replaces. Hitting
		// EOF on the very last line of the last hunk just means the
		// file had no trailing newline.
		for i1 := b.NumLines(0); i1 > 0; i1-- {
			linesread++
			_, err := in.ReadBytes('\n')
			if err != nil {
				if !errors.Is(err, io.EOF) {
					return conflicts, diff3err.New(diff3err.IO, "input", err)
				}
				if i1 > 1 || bi+1 < len(chain) {
					return conflicts, shrankErr()
				}
				return conflicts, ew.sinkErr()
			}
		}
	}

	// Copy the tail of the first file verbatim.
	if _, err := io.Copy(ew, in); err != nil && ew.err == nil {
		return conflicts, diff3err.New(diff3err.IO, "input", err)
	}
	return conflicts, ew.sinkErr()
}

func shrankErr() error {
	return diff3err.New(diff3err.Internal, "", errors.New("input file shrank"))
}
