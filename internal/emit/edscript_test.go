package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// In editor-script and merge modes the second operand is the common
// file, permuting the internal order.
func edMapping() Mapping {
	return Mapping{Map: [3]int{0, 2, 1}, Rev: [3]int{0, 2, 1}}
}

var edLabels = [3]string{"my", "old", "your"}

func TestEdScriptOverlapBracketed(t *testing.T) {
	// diff3 -E: both sides changed line 1 differently.
	chain := merged(t,
		"1c1\n< x\n---\n> a\n",
		"1c1\n< y\n---\n> a\n")

	var out strings.Builder
	conflicts, err := EdScript(&out, chain, edMapping(), edLabels, Policy{Flagging: true})
	require.NoError(t, err)
	require.True(t, conflicts)
	require.Equal(t, `1a
=======
y
>>>>>>> your
.
0a
<<<<<<< my
.
`, out.String())
}

func TestEdScriptShowAll(t *testing.T) {
	// diff3 -A additionally shows the common file between ||||||| and
	// =======.
	chain := merged(t,
		"1c1\n< x\n---\n> a\n",
		"1c1\n< y\n---\n> a\n")

	var out strings.Builder
	conflicts, err := EdScript(&out, chain, edMapping(), edLabels, Policy{Flagging: true, Show2nd: true})
	require.NoError(t, err)
	require.True(t, conflicts)
	require.Equal(t, `1a
||||||| old
a
=======
y
>>>>>>> your
.
0a
<<<<<<< my
.
`, out.String())
}

func TestEdScriptOverlapOnlyUnbracketed(t *testing.T) {
	// diff3 -x: overlaps incorporated without brackets.
	chain := merged(t,
		"1c1\n< x\n---\n> a\n",
		"1c1\n< y\n---\n> a\n")

	var out strings.Builder
	conflicts, err := EdScript(&out, chain, edMapping(), edLabels, Policy{OverlapOnly: true})
	require.NoError(t, err)
	require.False(t, conflicts)
	require.Equal(t, "1c\ny\n.\n", out.String())
}

func TestEdScriptDotQuoting(t *testing.T) {
	// A change whose replacement line starts with '.': the dot is
	// doubled inside the append and undone by a substitute command.
	chain := merged(t, "", "1c1\n< .x\n---\n> .\n")

	var out strings.Builder
	conflicts, err := EdScript(&out, chain, edMapping(), edLabels, Policy{})
	require.NoError(t, err)
	require.False(t, conflicts)
	require.Equal(t, "1c\n..x\n.\n1s/^\\.//\n", out.String())
}

func TestEdScriptDelete(t *testing.T) {
	// The third file dropped common line 2.
	chain := merged(t, "", "1a2\n> b\n")

	var out strings.Builder
	conflicts, err := EdScript(&out, chain, edMapping(), edLabels, Policy{})
	require.NoError(t, err)
	require.False(t, conflicts)
	require.Equal(t, "2d\n", out.String())
}

func TestEdScriptAppend(t *testing.T) {
	// The third file added a line after common line 1.
	chain := merged(t, "", "2d1\n< z\n")

	var out strings.Builder
	conflicts, err := EdScript(&out, chain, edMapping(), edLabels, Policy{})
	require.NoError(t, err)
	require.False(t, conflicts)
	require.Equal(t, "1a\nz\n.\n", out.String())
}

func TestEdScriptFirstFileOnlyChangesSkipped(t *testing.T) {
	// The first file already carries its own change; the script has
	// nothing to do.
	chain := merged(t, "1c1\n< x\n---\n> a\n", "")

	var out strings.Builder
	conflicts, err := EdScript(&out, chain, edMapping(), edLabels, Policy{})
	require.NoError(t, err)
	require.False(t, conflicts)
	require.Empty(t, out.String())
}

func TestEdScriptIdenticalChangesStayClean(t *testing.T) {
	// Both derived files made the same change: a plain edit, not an
	// ONLY_2 conflict, even under show_2nd.
	chain := merged(t,
		"1c1\n< b\n---\n> a\n",
		"1c1\n< b\n---\n> a\n")

	var out strings.Builder
	conflicts, err := EdScript(&out, chain, edMapping(), edLabels, Policy{Flagging: true, Show2nd: true})
	require.NoError(t, err)
	require.False(t, conflicts)
	require.Equal(t, "1c\nb\n.\n", out.String())
}

func TestEdScriptFinalWrite(t *testing.T) {
	chain := merged(t, "", "1c1\n< .x\n---\n> .\n")

	var out strings.Builder
	_, err := EdScript(&out, chain, edMapping(), edLabels, Policy{FinalWrite: true})
	require.NoError(t, err)
	require.Equal(t, "1c\n..x\n.\n1s/^\\.//\nw\nq\n", out.String())
}

func TestEdScriptReverseOrder(t *testing.T) {
	// Two separate edits: the later one must be emitted first so the
	// earlier one's line numbers stay valid.
	chain := merged(t, "", "1c1\n< X\n---\n> a\n3c3\n< Z\n---\n> c\n")

	var out strings.Builder
	_, err := EdScript(&out, chain, edMapping(), edLabels, Policy{})
	require.NoError(t, err)
	require.Equal(t, "3c\nZ\n.\n1c\nX\n.\n", out.String())
}
