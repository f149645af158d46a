// Package emit renders a three-way block chain in the three output
// formats: the tagged report, the editor script, and the streamed
// merge with conflict markers. The merger itself is format-agnostic;
// every format decision lives here, driven by an immutable Policy
// value.
package emit

import (
	"io"

	"github.com/gosynge/diff3merge/internal/diff2"
	"github.com/gosynge/diff3merge/internal/diff3err"
	"github.com/gosynge/diff3merge/internal/threeway"
)

// Policy carries the option flags the CLI layer resolves once; the
// emitters never consult globals.
type Policy struct {
	// Flagging brackets ALL conflicts in editor-script and merge
	// output (-A, -E, or -m with no other format option).
	Flagging bool
	// Show2nd emits ONLY_2 hunks too, bracketed as conflicts (-A).
	Show2nd bool
	// SimpleOnly drops ALL hunks entirely (-3).
	SimpleOnly bool
	// OverlapOnly drops ONLY_3 hunks entirely (-x/-X).
	OverlapOnly bool
	// FinalWrite appends "w\nq\n" to editor scripts (-i).
	FinalWrite bool
}

// Mapping is the permutation between argv positions and internal file
// indices: Map[argv] = internal, Rev its inverse. Output always names
// files in the user's original order even when the internal order was
// permuted to keep the common file out of standard input.
type Mapping struct {
	Map [3]int
	Rev [3]int
}

// Identity is the mapping used when the third operand is the common
// file, which leaves the argv order untouched.
func Identity() Mapping {
	return Mapping{Map: [3]int{0, 1, 2}, Rev: [3]int{0, 1, 2}}
}

// mappedKind translates a block's kind into argv-relative numbering.
// ALL is invariant under the permutation; ONLY_k follows the file it
// names through Rev.
func mappedKind(k threeway.Kind, m Mapping) threeway.Kind {
	if k == threeway.All {
		return k
	}
	return threeway.Only1 + threeway.Kind(m.Rev[int(k-threeway.Only1)])
}

// effectiveKind is the kind the editor-script and merge emitters act
// on. It is the mapped kind, except that a block whose two derived
// sides changed identically (ONLY_3 before mapping) is never
// relabeled into the ONLY_2 conflict bucket: splicing in either side
// is a clean merge, so it stays a plain incorporation.
func effectiveKind(b *threeway.Block, m Mapping) threeway.Kind {
	k := mappedKind(b.Kind, m)
	if k == threeway.Only2 && b.Kind == threeway.Only3 {
		return threeway.Only3
	}
	return k
}

// errWriter latches the first write error so the emitters can format
// freely and report one failure at the end; every write to the
// final sink is accounted for.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

func (e *errWriter) sinkErr() error {
	if e.err == nil {
		return nil
	}
	return diff3err.New(diff3err.IO, "output", e.err)
}

func writeLines(w io.Writer, lines []diff2.Line) {
	for _, ln := range lines {
		_, _ = w.Write(ln.Text)
	}
}
