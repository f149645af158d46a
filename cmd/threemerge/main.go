package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/gosynge/diff3merge/internal/config"
	"github.com/gosynge/diff3merge/internal/diff3"
	"github.com/gosynge/diff3merge/internal/diff3err"
	"github.com/gosynge/diff3merge/internal/locale"
	"github.com/gosynge/diff3merge/internal/termcolor"
	"github.com/gosynge/diff3merge/internal/trace"
	"github.com/gosynge/diff3merge/internal/version"
)

type App struct {
	ShowAll      bool             `short:"A" name:"show-all" help:"Output all changes, bracketing conflicts"`
	Ed           bool             `short:"e" name:"ed" help:"Output ed script incorporating changes from OLDFILE to YOURFILE into MYFILE"`
	ShowOverlap  bool             `short:"E" name:"show-overlap" help:"Like -e, but bracket conflicts"`
	EasyOnly     bool             `short:"3" name:"easy-only" help:"Like -e, but incorporate only nonoverlapping changes"`
	OverlapOnly  bool             `short:"x" name:"overlap-only" help:"Like -e, but incorporate only overlapping changes"`
	OverlapOnlyX bool             `short:"X" name:"overlap-only-compat" hidden:"" help:"Like -x"`
	FinalWrite   bool             `short:"i" name:"append-wq" hidden:"" help:"Append 'w' and 'q' commands to ed scripts"`
	Merge        bool             `short:"m" name:"merge" help:"Output actual merged file, according to -A if no other options are given"`
	Text         bool             `short:"a" name:"text" help:"Treat all files as text"`
	StripCR      bool             `name:"strip-trailing-cr" help:"Strip trailing carriage return on input"`
	InitialTab   bool             `short:"T" name:"initial-tab" help:"Make tabs line up by prepending a tab"`
	DiffProgram  string           `name:"diff-program" placeholder:"PROGRAM" help:"Use PROGRAM to compare files"`
	Labels       []string         `short:"L" name:"label" placeholder:"LABEL" help:"Use LABEL instead of file name (can be repeated up to three times)"`
	Config       string           `name:"config" placeholder:"PATH" help:"Read defaults from PATH instead of the standard location"`
	Verbose      bool             `short:"V" name:"verbose" help:"Make the operation more talkative"`
	Version      kong.VersionFlag `short:"v" name:"version" help:"Show version number and quit"`

	MyFile   string `arg:"" name:"myfile" help:"Your version of the file"`
	OldFile  string `arg:"" name:"oldfile" help:"The common ancestor"`
	YourFile string `arg:"" name:"yourfile" help:"The other version of the file"`
}

func progName() string {
	return filepath.Base(os.Args[0])
}

func main() {
	_ = locale.Initialize()
	var app App
	kong.Parse(&app,
		kong.Name("threemerge"),
		kong.Description(locale.W("Compare three files line by line.")),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{"version": version.GetVersionString()},
		kong.Exit(func(code int) {
			// Usage trouble is exit 2; only --help and --version
			// leave with 0.
			if code != 0 {
				os.Exit(2)
			}
			os.Exit(0)
		}),
	)
	os.Exit(app.run())
}

func tryHelp(message string) int {
	if message != "" {
		fmt.Fprintf(os.Stderr, "%s: %s\n", progName(), message)
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", progName(), locale.Sprintf("Try '%s --help' for more information.", progName()))
	return 2
}

// resolve folds the raw flags into the immutable configuration,
// enforcing the historical constraints: at most one of -AeExX3, -i
// and -m never together, -L only with a bracketing format.
func (app *App) resolve() (*config.Config, error) {
	incompat := 0
	for _, set := range []bool{app.ShowAll, app.ShowOverlap, app.OverlapOnlyX, app.OverlapOnly, app.Ed, app.EasyOnly} {
		if set {
			incompat++
		}
	}

	// -AeExX3 without -m implies ed script; -m without them implies -A.
	edscript := incompat > 0 && !app.Merge
	show2nd := app.ShowAll || (incompat == 0 && app.Merge)
	flagging := app.ShowAll || app.ShowOverlap || (incompat == 0 && app.Merge)

	if len(app.Labels) > 3 {
		return nil, fmt.Errorf("%s", locale.W("too many file label options"))
	}
	if incompat > 1 ||
		(app.FinalWrite && app.Merge) ||
		(len(app.Labels) > 0 && !flagging) {
		return nil, fmt.Errorf("%s", locale.W("incompatible options"))
	}

	cfg := &config.Config{
		EdScript:        edscript,
		Merge:           app.Merge,
		Flagging:        flagging,
		Show2nd:         show2nd,
		SimpleOnly:      app.EasyOnly,
		OverlapOnly:     app.OverlapOnly || app.OverlapOnlyX,
		FinalWrite:      app.FinalWrite,
		InitialTab:      app.InitialTab,
		Text:            app.Text,
		StripTrailingCR: app.StripCR,
		DiffProgram:     app.DiffProgram,
		Verbose:         app.Verbose,
		Color:           !edscript && !app.Merge && termcolor.StdoutMode != termcolor.NO_COLOR,
		Files:           [3]string{app.MyFile, app.OldFile, app.YourFile},
		ProgramName:     progName(),
	}
	for i := range app.Labels {
		cfg.Labels[i] = app.Labels[i]
	}

	fc, err := config.Load(app.Config)
	if err != nil {
		return nil, err
	}
	fc.Apply(cfg)

	if err := cfg.ResolveMapping(); err != nil {
		return nil, err
	}
	cfg.FillLabels()
	return cfg, nil
}

func (app *App) run() int {
	cfg, err := app.resolve()
	if err != nil {
		return tryHelp(err.Error())
	}
	if cfg.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	conflicts, err := diff3.Run(context.Background(), cfg, os.Stdout, os.Stderr)
	if err != nil {
		reportFailure(err)
		return diff3err.ToExitCode(err)
	}
	if conflicts {
		return 1
	}
	return 0
}

// reportFailure prints one diagnostic line per failure. Parse errors
// echo the offending diff line, trimmed to the terminal width so a
// binary-ish line cannot flood the screen.
func reportFailure(err error) {
	var de *diff3err.Error
	if errors.As(err, &de) && de.Kind == diff3err.Parse && de.Context != "" {
		width := 200
		if termcolor.IsTerminal(os.Stderr.Fd()) {
			if w, _, err := termcolor.GetSize(int(os.Stderr.Fd())); err == nil && w > 20 {
				width = w
			}
		}
		fmt.Fprintf(os.Stderr, "%s: diff failed: %s\n", progName(), trace.Ellipsis(de.Context, width))
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", progName(), err)
}
