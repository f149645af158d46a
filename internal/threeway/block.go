// Package threeway implements the three-way merge algorithm that
// fuses two two-way diff block chains (each against a shared common
// file) into a single chain of three-way blocks.
package threeway

import "github.com/gosynge/diff3merge/internal/diff2"

// Kind classifies a three-way block by which sides differ.
type Kind int

const (
	// All is a conflict: both chains changed the region, and
	// differently.
	All Kind = iota
	// Only1 means only the first chain (F0 vs FC) changed the region.
	Only1
	// Only2 means only the second chain (F1 vs FC) changed the region.
	Only2
	// Only3 means both chains changed the region identically.
	Only3
)

func (k Kind) String() string {
	switch k {
	case All:
		return "ALL"
	case Only1:
		return "ONLY_1"
	case Only2:
		return "ONLY_2"
	case Only3:
		return "ONLY_3"
	default:
		return "?"
	}
}

// IsConflict reports whether k is a conflict under the given show_2nd
// policy: ALL always is; ONLY_2 is only when show2nd requests the
// second file be flagged too.
func (k Kind) IsConflict(show2nd bool) bool {
	return k == All || (show2nd && k == Only2)
}

// Block is one fabricated three-way hunk: three ranges and their
// literal content, one per side {F0, F1, FC}.
type Block struct {
	Kind           Kind
	F0, F1, FC     diff2.Range
	Lines0, Lines1 []diff2.Line
	LinesC         []diff2.Line
}

// Side indexes a block's three files: 0 is F0, 1 is F1, 2 is FC. The
// emitters address sides through the external mapping, so they index
// numerically instead of by field name.
func (b *Block) Range(side int) diff2.Range {
	switch side {
	case 0:
		return b.F0
	case 1:
		return b.F1
	default:
		return b.FC
	}
}

// Lines returns side's line array, parallel to Range(side).
func (b *Block) Lines(side int) []diff2.Line {
	switch side {
	case 0:
		return b.Lines0
	case 1:
		return b.Lines1
	default:
		return b.LinesC
	}
}

// NumLines returns the number of lines the block spans on side, 0 for
// an empty range.
func (b *Block) NumLines(side int) int {
	r := b.Range(side)
	return r.Hi - r.Lo + 1
}

// Chain is the ordered sequence of three-way blocks the merger
// fabricates; its FC projection covers the common file contiguously
// and without overlap.
type Chain []Block
