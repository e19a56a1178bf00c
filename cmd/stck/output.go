package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"stck/internal/diag"
	"stck/internal/diagfmt"
	"stck/internal/observ"
	"stck/internal/source"
)

// errReported marks failures whose diagnostics were already printed.
var errReported = errors.New("errors reported")

func errorsReported(err error) bool {
	return errors.Is(err, errReported)
}

type outputFlags struct {
	format   string
	pathMode diagfmt.PathMode
	quiet    bool
	timings  bool
	maxDiags int
	color    bool
}

func readOutputFlags(cmd *cobra.Command) (outputFlags, error) {
	var out outputFlags
	var err error

	out.format, err = cmd.Flags().GetString("format")
	if err != nil {
		return out, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch out.format {
	case "pretty", "json":
	default:
		return out, fmt.Errorf("unknown format: %s", out.format)
	}

	pathMode, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return out, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	out.pathMode = diagfmt.ParsePathMode(pathMode)

	root := cmd.Root().PersistentFlags()
	if out.quiet, err = root.GetBool("quiet"); err != nil {
		return out, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if out.timings, err = root.GetBool("timings"); err != nil {
		return out, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if out.maxDiags, err = root.GetInt("max-diagnostics"); err != nil {
		return out, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	colorFlag, err := root.GetString("color")
	if err != nil {
		return out, fmt.Errorf("failed to get color flag: %w", err)
	}
	if out.color, err = resolveColor(colorFlag, os.Stderr); err != nil {
		return out, err
	}
	return out, nil
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().String("path-mode", "auto", "path display (auto|absolute|relative|basename)")
}

// printDiagnostics writes bag to w in the pretty form. Warnings are hidden
// by --quiet; errors never are.
func printDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet, flags outputFlags) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	if flags.quiet && !bag.HasErrors() {
		return
	}
	bag.Sort()
	diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
		Color:     flags.color,
		Context:   2,
		PathMode:  flags.pathMode,
		ShowNotes: true,
	})
}

func jsonDiagnostics(bag *diag.Bag, fs *source.FileSet, flags outputFlags) diagfmt.DiagnosticsOutput {
	if bag == nil {
		bag = diag.NewBag(0)
	}
	bag.Sort()
	return diagfmt.BuildDiagnosticsOutput(bag, fs, diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         flags.pathMode,
		IncludeNotes:     true,
	})
}

func printTimings(w io.Writer, reports ...observ.Report) {
	fmt.Fprint(w, observ.Sum(reports...).Summary())
}
