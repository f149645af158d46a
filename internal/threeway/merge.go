package threeway

import (
	"bytes"
	"fmt"

	"github.com/gosynge/diff3merge/internal/diff2"
	"github.com/gosynge/diff3merge/internal/diff3err"
)

// Merge fuses two two-way chains into a three-way chain. t0 is the
// diff of the first "other" file (F0) against the common file, t1 the
// diff of the second (F1). Both chains order their blocks by the
// common-file side.
//
// Each produced block is fabricated from a "using group": a maximal
// run of consecutive blocks, taken from either or both chains, whose
// common-file ranges transitively overlap or abut. Two blocks whose
// ranges touch without overlapping still land in one group.
func Merge(t0, t1 diff2.Chain) (Chain, error) {
	threads := [2]diff2.Chain{t0, t1}
	var cur [2]int
	var result Chain

	// The imaginary predecessor has high-lines 0 on every side, so
	// before the first block every side's line numbers coincide with
	// the common file's.
	var last Block

	for cur[0] < len(t0) || cur[1] < len(t1) {
		var using [2][]diff2.Block

		// Base selection: the thread whose head starts lower in the
		// common file seeds the group. Ties go to thread 0.
		var base int
		switch {
		case cur[0] >= len(t0):
			base = 1
		case cur[1] >= len(t1):
			base = 0
		default:
			if t0[cur[0]].B.Lo > t1[cur[1]].B.Lo {
				base = 1
			}
		}

		hwThread := base
		head := threads[hwThread][cur[hwThread]]
		hwMark := head.B.Hi
		using[hwThread] = append(using[hwThread], head)
		cur[hwThread]++

		// High-water extension: admit heads of the opposite thread for
		// as long as they start at or below hwMark+1. Whenever an
		// admitted block raises the mark, the opposite thread becomes
		// the one to examine. Blocks within one thread cannot overlap,
		// so once a comparison comes out equal the loop is on its last
		// pass.
		other := hwThread ^ 1
		for cur[other] < len(threads[other]) && threads[other][cur[other]].B.Lo <= hwMark+1 {
			od := threads[other][cur[other]]
			using[other] = append(using[other], od)
			cur[other]++
			if hwMark < od.B.Hi {
				hwThread = other
				hwMark = od.B.Hi
			}
			other = hwThread ^ 1
		}

		blk, err := fabricate(using, base, hwThread, &last)
		if err != nil {
			return nil, err
		}
		result = append(result, blk)
		last = blk
	}
	return result, nil
}

// fabricate builds one three-way block from a using group. lowThread
// seeded the group, highThread holds the block whose common-file
// high-line is the group's high-water mark, and last is the
// previously fabricated block, used to map pass-through ranges for a
// thread that contributed nothing.
func fabricate(using [2][]diff2.Block, lowThread, highThread int, last *Block) (Block, error) {
	lowc := using[lowThread][0].B.Lo
	hu := using[highThread]
	highc := hu[len(hu)-1].B.Hi

	// Ranges on the other sides. A thread with no blocks here is
	// identical to the common file over this region, so its range is
	// carried through the previous block: outside any diff, that file
	// and the common file advance together.
	var lo, hi [2]int
	lastHi := [3]int{last.F0.Hi, last.F1.Hi, last.FC.Hi}
	for d := 0; d < 2; d++ {
		if u := using[d]; len(u) != 0 {
			first, final := u[0], u[len(u)-1]
			lo[d] = lowc - first.B.Lo + first.A.Lo
			hi[d] = highc - final.B.Hi + final.A.Hi
		} else {
			lo[d] = lowc - lastHi[2] + lastHi[d]
			hi[d] = highc - lastHi[2] + lastHi[d]
		}
	}

	blk := Block{
		F0: diff2.Range{Lo: lo[0], Hi: hi[0]},
		F1: diff2.Range{Lo: lo[1], Hi: hi[1]},
		FC: diff2.Range{Lo: lowc, Hi: highc},
	}
	blk.Lines0 = make([]diff2.Line, blk.F0.Len())
	blk.Lines1 = make([]diff2.Line, blk.F1.Len())
	blk.LinesC = make([]diff2.Line, blk.FC.Len())

	// Fill the common side from every contributing block. When both
	// threads assert the same common-file line, the assertions must
	// agree byte-for-byte; the first one wins the slot and later equal
	// ones are aliases.
	asserted := make([]bool, len(blk.LinesC))
	for d := 0; d < 2; d++ {
		for _, b := range using[d] {
			off := b.B.Lo - lowc
			for i, ln := range b.BLines {
				if asserted[off+i] {
					if have := blk.LinesC[off+i]; !bytes.Equal(have.Text, ln.Text) {
						return Block{}, diff3err.New(diff3err.Internal, "",
							fmt.Errorf("common file line %d differs between the two diffs", lowc+off+i))
					}
					continue
				}
				blk.LinesC[off+i] = ln
				asserted[off+i] = true
			}
		}
	}

	// Fill each other side: literal lines inside that thread's blocks,
	// common-side aliases before the first block and in the gaps
	// between blocks.
	sides := [2][]diff2.Line{blk.Lines0, blk.Lines1}
	for d := 0; d < 2; d++ {
		u := using[d]
		target := sides[d]

		limit := hi[d] + 1
		if len(u) != 0 {
			limit = u[0].A.Lo
		}
		for i := 0; i+lo[d] < limit; i++ {
			target[i] = blk.LinesC[i]
		}

		for bi, b := range u {
			copy(target[b.A.Lo-lo[d]:], b.ALines)

			next := hi[d] + 1
			if bi+1 < len(u) {
				next = u[bi+1].A.Lo
			}
			linec := b.B.Hi + 1 - lowc
			for i := b.A.Hi + 1 - lo[d]; i < next-lo[d]; i++ {
				target[i] = blk.LinesC[linec]
				linec++
			}
		}
	}

	switch {
	case len(using[0]) == 0:
		blk.Kind = Only2
	case len(using[1]) == 0:
		blk.Kind = Only1
	case sameLines(blk.Lines0, blk.Lines1):
		blk.Kind = Only3
	default:
		blk.Kind = All
	}
	return blk, nil
}

func sameLines(a, b []diff2.Line) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i].Text, b[i].Text) {
			return false
		}
	}
	return true
}
