// Package diffrun invokes an external two-way diff program and turns
// its output into a diff2.Chain. The diff algorithm itself is an
// external collaborator: this package only supervises the subprocess
// and feeds its stdout to internal/diff2.
package diffrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gosynge/diff3merge/internal/diff2"
	"github.com/gosynge/diff3merge/internal/diff3err"
)

const (
	// DefaultHorizonLines is the fixed --horizon-lines value that
	// keeps hunks stable across the two subordinate invocations.
	DefaultHorizonLines = 100
	fallbackChunkSize   = 8 << 10
)

// Options describes one subordinate diff invocation: the program to
// run and the flags the CLI layer forwards to it.
type Options struct {
	// Program is the diff program, optionally with baked-in extra
	// arguments, as given to --diff-program. Parsed with shellquote
	// the way a shell would split it.
	Program         string
	Text            bool // -a/--text
	StripTrailingCR bool
	HorizonLines    int
	// KeepMissingNewline is set for editor-script output, where a
	// line with no trailing newline keeps its newline and the marker
	// is forwarded as a Notice instead.
	KeepMissingNewline bool
	Log                *logrus.Logger
}

func (o Options) logger() *logrus.Logger {
	if o.Log != nil {
		return o.Log
	}
	return logrus.StandardLogger()
}

func (o Options) argv(file1, file2 string) ([]string, error) {
	program := o.Program
	if program == "" {
		program = "diff"
	}
	parts, err := shellquote.Split(program)
	if err != nil || len(parts) == 0 {
		return nil, diff3err.New(diff3err.Usage, program, fmt.Errorf("bad --diff-program value"))
	}
	horizon := o.HorizonLines
	if horizon <= 0 {
		horizon = DefaultHorizonLines
	}
	args := append([]string{}, parts[1:]...)
	if o.Text {
		args = append(args, "-a")
	}
	if o.StripTrailingCR {
		args = append(args, "--strip-trailing-cr")
	}
	args = append(args, fmt.Sprintf("--horizon-lines=%d", horizon), "---no-directory", "--", file1, file2)
	return append([]string{parts[0]}, args...), nil
}

// Run diffs file1 against file2 (which, for every caller in this
// module, is the common ancestor) and parses the result.
func Run(ctx context.Context, opts Options, file1, file2 string) (diff2.Chain, []diff2.Notice, error) {
	argv, err := opts.argv(file1, file2)
	if err != nil {
		return nil, nil, err
	}
	log := opts.logger().WithFields(logrus.Fields{"file1": file1, "file2": file2, "program": argv[0]})

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, diff3err.New(diff3err.IO, argv[0], err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, nil, classifyStartError(argv[0], err)
	}

	buf, readErr := readAll(stdout)
	waitErr := cmd.Wait()
	log.WithFields(logrus.Fields{
		"exit_code": cmd.ProcessState.ExitCode(),
		"duration":  time.Since(start),
	}).Debug("diff subprocess exited")

	if readErr != nil {
		return nil, nil, diff3err.New(diff3err.IO, argv[0], readErr)
	}
	if err := classifyExit(argv[0], cmd, waitErr, stderr.Bytes()); err != nil {
		return nil, nil, err
	}

	chain, notices, err := diff2.Parse(buf, diff2.Options{
		StripTrailingCR:    opts.StripTrailingCR,
		KeepMissingNewline: opts.KeepMissingNewline,
	})
	if err != nil {
		return nil, nil, err
	}
	return chain, notices, nil
}

// Pair runs the two subordinate diffs, fileA vs ancestor and fileB
// vs ancestor, concurrently.
func Pair(ctx context.Context, optsA, optsB Options, fileA, fileB, ancestor string) (chainA, chainB diff2.Chain, noticesA, noticesB []diff2.Notice, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var e error
		chainA, noticesA, e = Run(gctx, optsA, fileA, ancestor)
		return e
	})
	g.Go(func() error {
		var e error
		chainB, noticesB, e = Run(gctx, optsB, fileB, ancestor)
		return e
	})
	if err = g.Wait(); err != nil {
		return nil, nil, nil, nil, err
	}
	return chainA, chainB, noticesA, noticesB, nil
}

// readAll drains r into a growable buffer, sizing each read from the
// pipe's reported block size, falling back to 8 KiB. A read
// interrupted by a signal is resumed by Go's runtime poller, so no
// explicit EINTR handling is needed.
func readAll(r io.ReadCloser) ([]byte, error) {
	defer r.Close()
	chunk := pipeBlockSize(r)
	var buf bytes.Buffer
	tmp := make([]byte, chunk)
	for {
		n, err := r.Read(tmp)
		if n > 0 {
			buf.Write(tmp[:n])
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func classifyStartError(program string, err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return diff3err.New(diff3err.NotFound, program, err)
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return diff3err.New(diff3err.ExecFailed, program, err)
	}
	return diff3err.New(diff3err.IO, program, err)
}

func classifyExit(program string, cmd *exec.Cmd, waitErr error, stderr []byte) error {
	if waitErr == nil {
		return nil
	}
	var ee *exec.ExitError
	if !errors.As(waitErr, &ee) {
		return diff3err.New(diff3err.IO, program, waitErr)
	}
	code := cmd.ProcessState.ExitCode()
	switch {
	case code < 0:
		// Terminated by a signal rather than exiting.
		return diff3err.New(diff3err.Subprocess, program, fmt.Errorf("%v: %s", ee, stderr))
	case code == 126:
		return diff3err.New(diff3err.ExecFailed, program, ee)
	case code == 127:
		return diff3err.New(diff3err.NotFound, program, ee)
	case code >= 2:
		return diff3err.New(diff3err.Subprocess, program, fmt.Errorf("exit status %d: %s", code, stderr))
	default:
		// 0 or 1 is normal for a diff program.
		return nil
	}
}
