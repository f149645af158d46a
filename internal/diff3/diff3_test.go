package diff3

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosynge/diff3merge/internal/config"
)

// writeFiles lays out the three operands plus a fake diff program
// that emits canned normal-format output depending on which pair it
// is asked to compare.
func writeFiles(t *testing.T, my, old, your string, diffs map[string]string) (files [3]string, program string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake diff program is a POSIX shell script")
	}
	dir := t.TempDir()
	files = [3]string{filepath.Join(dir, "my"), filepath.Join(dir, "old"), filepath.Join(dir, "your")}
	require.NoError(t, os.WriteFile(files[0], []byte(my), 0o644))
	require.NoError(t, os.WriteFile(files[1], []byte(old), 0o644))
	require.NoError(t, os.WriteFile(files[2], []byte(your), 0o644))

	script := "#!/bin/sh\nfor a in \"$@\"; do b=\"$c\"; c=\"$a\"; done\ncase \"$b\" in\n"
	for base, out := range diffs {
		script += "*/" + base + ")\n"
		if out == "" {
			script += "exit 0 ;;\n"
		} else {
			script += "cat <<'EOF'\n" + out + "EOF\nexit 1 ;;\n"
		}
	}
	script += "*) echo \"unexpected operand $b\" >&2; exit 2 ;;\nesac\n"
	program = filepath.Join(dir, "fakediff.sh")
	require.NoError(t, os.WriteFile(program, []byte(script), 0o755))
	return files, program
}

func newConfig(files [3]string, program string) *config.Config {
	return &config.Config{
		Files:       files,
		DiffProgram: program,
		ProgramName: "threemerge",
	}
}

func TestRunMergeNonOverlapping(t *testing.T) {
	files, program := writeFiles(t,
		"A\nb\nc\n", "a\nb\nc\n", "a\nb\nC\n",
		map[string]string{
			"my":   "1c1\n< A\n---\n> a\n",
			"your": "3c3\n< C\n---\n> c\n",
		})

	cfg := newConfig(files, program)
	cfg.Merge = true
	cfg.Show2nd = true
	cfg.Flagging = true
	require.NoError(t, cfg.ResolveMapping())
	cfg.FillLabels()

	var out, errOut bytes.Buffer
	conflicts, err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	require.False(t, conflicts)
	require.Equal(t, "A\nb\nC\n", out.String())
}

func TestRunMergeConflictWithLabels(t *testing.T) {
	files, program := writeFiles(t,
		"x\n", "a\n", "y\n",
		map[string]string{
			"my":   "1c1\n< x\n---\n> a\n",
			"your": "1c1\n< y\n---\n> a\n",
		})

	cfg := newConfig(files, program)
	cfg.Merge = true
	cfg.Show2nd = true
	cfg.Flagging = true
	cfg.Labels = [3]string{"MYFILE", "OLDFILE", "YOURFILE"}
	require.NoError(t, cfg.ResolveMapping())
	cfg.FillLabels()

	var out, errOut bytes.Buffer
	conflicts, err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	require.True(t, conflicts)
	require.Equal(t, "<<<<<<< MYFILE\nx\n||||||| OLDFILE\na\n=======\ny\n>>>>>>> YOURFILE\n", out.String())
}

func TestRunIdenticalFiles(t *testing.T) {
	files, program := writeFiles(t,
		"a\n", "a\n", "a\n",
		map[string]string{"my": "", "old": ""})

	cfg := newConfig(files, program)
	require.NoError(t, cfg.ResolveMapping())
	cfg.FillLabels()

	var out, errOut bytes.Buffer
	conflicts, err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	require.False(t, conflicts)
	require.Empty(t, out.String())
}

func TestRunReport(t *testing.T) {
	// Report mode: the third operand is the common side, so the fake
	// diff sees "my" and "old" as first operands.
	files, program := writeFiles(t,
		"A\nb\nc\n", "a\nb\nc\n", "a\nb\nC\n",
		map[string]string{
			"my":  "1c1\n< A\n---\n> a\n3c3\n< c\n---\n> C\n",
			"old": "3c3\n< c\n---\n> C\n",
		})

	cfg := newConfig(files, program)
	require.NoError(t, cfg.ResolveMapping())
	cfg.FillLabels()

	var out, errOut bytes.Buffer
	conflicts, err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	require.False(t, conflicts)
	require.Equal(t, `====1
1:1c
  A
2:1c
3:1c
  a
====3
1:3c
2:3c
  c
3:3c
  C
`, out.String())
}

func TestRunEdScriptForwardsMissingNewlineNotice(t *testing.T) {
	files, program := writeFiles(t,
		".\n", ".\n", ".x",
		map[string]string{
			"my":   "",
			"your": "1c1\n< .x\n\\ No newline at end of file\n---\n> .\n",
		})

	cfg := newConfig(files, program)
	cfg.EdScript = true
	require.NoError(t, cfg.ResolveMapping())
	cfg.FillLabels()

	var out, errOut bytes.Buffer
	conflicts, err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	require.False(t, conflicts)
	// Dot-quoting: the appended line keeps its doubled dot and the
	// substitute command strips it back off.
	require.Equal(t, "1c\n..x\n.\n1s/^\\.//\n", out.String())
	require.Equal(t, "threemerge:\\ No newline at end of file\n", errOut.String())
}

func TestRunStdinOperand(t *testing.T) {
	// The spooled stdin gets a temp name, so the fake diff's canned
	// table matches it by prefix.
	files, program := writeFiles(t,
		"a\n", "a\n", "a\n",
		map[string]string{"threemerge-stdin-*": "", "your": ""})

	// Swap the real file for stdin on the first operand.
	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	oldStdin := os.Stdin
	os.Stdin = r
	t.Cleanup(func() { os.Stdin = oldStdin })

	// The fake diff matches on the spooled temp name, so widen the
	// canned table to accept it.
	cfg := newConfig(files, program)
	cfg.Files[0] = "-"
	cfg.Merge = true
	cfg.Show2nd = true
	cfg.Flagging = true
	require.NoError(t, cfg.ResolveMapping())
	cfg.FillLabels()

	var out, errOut bytes.Buffer
	conflicts, runErr := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, runErr)
	require.False(t, conflicts)
	require.Equal(t, "a\n", out.String())
}
