// Package diff3 orchestrates one comparison run: it launches the two
// subordinate diffs, fuses their block chains, and hands the result
// to the emitter the configuration selects. It owns no policy of its
// own; everything is decided in the Config before Run starts.
package diff3

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gosynge/diff3merge/internal/config"
	"github.com/gosynge/diff3merge/internal/diff2"
	"github.com/gosynge/diff3merge/internal/diff3err"
	"github.com/gosynge/diff3merge/internal/diffrun"
	"github.com/gosynge/diff3merge/internal/emit"
	"github.com/gosynge/diff3merge/internal/threeway"
	"github.com/gosynge/diff3merge/internal/trace"
)

// Run executes the whole pipeline and reports whether the output
// contains conflicts. The caller maps (conflicts, err) to the process
// exit code: 0 clean, 1 conflicts, 2 trouble.
func Run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) (conflicts bool, err error) {
	dbg := trace.NewDebuger(cfg.Verbose)

	files, cleanup, err := materializeStdin(cfg.Files)
	if err != nil {
		return false, err
	}
	defer cleanup()

	ropts := diffrun.Options{
		Program:            cfg.DiffProgram,
		Text:               cfg.Text,
		StripTrailingCR:    cfg.StripTrailingCR,
		HorizonLines:       cfg.HorizonLines,
		KeepMissingNewline: cfg.EdScript,
	}

	// Thread 0 diffs the operand playing internal FILE0 against the
	// common file, thread 1 the operand playing internal FILE1.
	commonName := files[cfg.RevMapping[2]]
	file0 := files[cfg.RevMapping[0]]
	file1 := files[cfg.RevMapping[1]]
	dbg.DbgPrint("diffing %s and %s against %s", file0, file1, commonName)

	t0, t1, n0, n1, err := diffrun.Pair(ctx, ropts, ropts, file0, file1, commonName)
	if err != nil {
		return false, err
	}
	if cfg.EdScript {
		forwardNotices(stderr, cfg.ProgramName, n0, n1)
	}

	chain, err := threeway.Merge(t0, t1)
	if err != nil {
		return false, err
	}
	dbg.DbgPrint("fabricated %d three-way hunks", len(chain))

	m := emit.Mapping{Map: cfg.Mapping, Rev: cfg.RevMapping}
	policy := emit.Policy{
		Flagging:    cfg.Flagging,
		Show2nd:     cfg.Show2nd,
		SimpleOnly:  cfg.SimpleOnly,
		OverlapOnly: cfg.OverlapOnly,
		FinalWrite:  cfg.FinalWrite,
	}

	switch {
	case cfg.EdScript:
		return emit.EdScript(stdout, chain, m, cfg.Labels, policy)
	case cfg.Merge:
		// The merge streams the operand playing internal FILE0, which
		// the mapping pins to the first argv position.
		fd, err := os.Open(files[cfg.RevMapping[0]])
		if err != nil {
			return false, diff3err.New(diff3err.IO, files[cfg.RevMapping[0]], err)
		}
		defer fd.Close() // nolint
		return emit.Merge(stdout, fd, chain, m, cfg.Labels, policy)
	default:
		err := emit.Report(stdout, chain, m, emit.ReportOptions{
			InitialTab: cfg.InitialTab,
			Color:      cfg.Color,
		})
		return false, err
	}
}

// forwardNotices echoes each missing-newline marker to the diagnostic
// sink, prefixed by the program name; ed scripts cannot represent a
// line with no trailing newline, so the user is told instead.
func forwardNotices(stderr io.Writer, progname string, groups ...[]diff2.Notice) {
	for _, notices := range groups {
		for _, n := range notices {
			fmt.Fprintf(stderr, "%s:%s", progname, n.Text)
		}
	}
}

// materializeStdin spools standard input to a temporary file when one
// of the operands is "-". The mapping was already chosen so the
// common side never reads stdin; spooling lets the remaining readers
// (the subordinate diff, and the merge emitter's second pass over the
// first file) treat every operand as a regular file.
func materializeStdin(operands [3]string) (files [3]string, cleanup func(), err error) {
	files = operands
	cleanup = func() {}
	for i, name := range files {
		if name != "-" {
			continue
		}
		tmp, err := os.CreateTemp("", "threemerge-stdin-")
		if err != nil {
			return files, cleanup, diff3err.New(diff3err.IO, "standard input", err)
		}
		if _, err := io.Copy(tmp, os.Stdin); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			return files, cleanup, diff3err.New(diff3err.IO, "standard input", err)
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(tmp.Name())
			return files, cleanup, diff3err.New(diff3err.IO, "standard input", err)
		}
		files[i] = tmp.Name()
		cleanup = func() { _ = os.Remove(tmp.Name()) }
		break
	}
	return files, cleanup, nil
}
