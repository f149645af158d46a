package diffrun

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosynge/diff3merge/internal/diff3err"
)

// fakeDiffProgram writes a tiny shell script that ignores its
// arguments and prints a fixed normal-format diff, standing in for a
// real diff(1) binary.
func fakeDiffProgram(t *testing.T, exitCode int, output string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake diff program is a POSIX shell script")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "fakediff.sh")
	script := "#!/bin/sh\ncat <<'EOF'\n" + output + "EOF\nexit " + strconv.Itoa(exitCode) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestRunParsesNormalDiff(t *testing.T) {
	prog := fakeDiffProgram(t, 1, "1c1\n< a\n---\n> A\n")
	chain, _, err := Run(context.Background(), Options{Program: prog}, "file1", "file2")
	require.NoError(t, err)
	require.Len(t, chain, 1)
}

func TestRunNoDifferencesExitZero(t *testing.T) {
	prog := fakeDiffProgram(t, 0, "")
	chain, _, err := Run(context.Background(), Options{Program: prog}, "file1", "file2")
	require.NoError(t, err)
	require.Empty(t, chain)
}

func TestRunSubprocessFailure(t *testing.T) {
	prog := fakeDiffProgram(t, 2, "")
	_, _, err := Run(context.Background(), Options{Program: prog}, "file1", "file2")
	require.Error(t, err)
	kind, ok := diff3err.KindOf(err)
	require.True(t, ok)
	require.Equal(t, diff3err.Subprocess, kind)
}

func TestRunNotFound(t *testing.T) {
	_, _, err := Run(context.Background(), Options{Program: "/nonexistent/does-not-exist-diff"}, "file1", "file2")
	require.Error(t, err)
}

func TestPairRunsConcurrently(t *testing.T) {
	progA := fakeDiffProgram(t, 1, "1c1\n< a\n---\n> A\n")
	progB := fakeDiffProgram(t, 0, "")
	chainA, chainB, _, _, err := Pair(context.Background(),
		Options{Program: progA}, Options{Program: progB},
		"fileA", "fileB", "ancestor")
	require.NoError(t, err)
	require.Len(t, chainA, 1)
	require.Empty(t, chainB)
}
