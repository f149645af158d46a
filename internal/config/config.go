// Package config resolves the command surface into one immutable
// value threaded through the core: output mode, policy flags, the
// three operands, their display labels, and the permutation between
// argv order and internal file order.
package config

import (
	"errors"

	"github.com/gosynge/diff3merge/internal/diff3err"
	"github.com/gosynge/diff3merge/internal/locale"
)

// Config is frozen before any work starts; the merger and emitters
// never consult flag state anywhere else.
type Config struct {
	// Output selection. Report output is the default; at most one of
	// EdScript and Merge is set.
	EdScript bool
	Merge    bool

	// Output policy flags.
	Flagging    bool
	Show2nd     bool
	SimpleOnly  bool
	OverlapOnly bool
	FinalWrite  bool
	InitialTab  bool

	// Forwarded to the subordinate diff program.
	Text            bool
	StripTrailingCR bool
	DiffProgram     string
	HorizonLines    int

	Verbose bool
	// Color enables separator highlighting in report output; only
	// ever set when standard output is a terminal.
	Color bool

	// Files holds the three operands in argv order: MYFILE, OLDFILE,
	// YOURFILE. Labels parallels it; unset labels default to the file
	// names.
	Files  [3]string
	Labels [3]string

	// Mapping[argv] = internal file index; RevMapping is its inverse.
	Mapping    [3]int
	RevMapping [3]int

	ProgramName string
}

// ResolveMapping picks which operand serves as the common side of the
// two subordinate diffs and derives the argv↔internal permutation.
// The third operand is preferred for report output (historically the
// ancestor there), the second for merge and editor-script output; if
// that choice would put standard input on the common side it is
// swapped with the other candidate, since stdin cannot be diffed
// twice.
func (c *Config) ResolveMapping() error {
	common := 2
	if c.EdScript || c.Merge {
		common = 1
	}
	if c.Files[common] == "-" {
		common = 3 - common
		if c.Files[0] == "-" || c.Files[common] == "-" {
			return diff3err.New(diff3err.Usage, "",
				errors.New(locale.W("'-' specified for more than one input file")))
		}
	}
	c.Mapping = [3]int{0, 3 - common, common}
	for i, v := range c.Mapping {
		c.RevMapping[v] = i
	}
	return nil
}

// FillLabels defaults any label not given with -L to its file name,
// in argv order.
func (c *Config) FillLabels() {
	for i := range c.Labels {
		if c.Labels[i] == "" {
			c.Labels[i] = c.Files[i]
		}
	}
}
