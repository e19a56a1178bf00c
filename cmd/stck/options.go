package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"stck/internal/diag"
	"stck/internal/driver"
	"stck/internal/project"
)

func addLexerFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("line-comments", false, "treat // to end of line as a comment")
	cmd.Flags().Bool("tab-is-space", false, "accept tab as whitespace")
	cmd.Flags().Bool("nfc", false, "normalize sources to Unicode NFC on load")
	cmd.Flags().Bool("no-manifest", false, "ignore stck.toml")
}

// driverOptions builds pipeline options from flags, then layers the
// stck.toml found above the first input under them.
func driverOptions(cmd *cobra.Command, out outputFlags, inputs []string) (driver.Options, error) {
	opts := driver.Options{MaxDiagnostics: out.maxDiags}
	var err error
	flags := cmd.Flags()
	if opts.LineComments, err = flags.GetBool("line-comments"); err != nil {
		return opts, fmt.Errorf("failed to get line-comments flag: %w", err)
	}
	if opts.TabIsSpace, err = flags.GetBool("tab-is-space"); err != nil {
		return opts, fmt.Errorf("failed to get tab-is-space flag: %w", err)
	}
	if opts.NFC, err = flags.GetBool("nfc"); err != nil {
		return opts, fmt.Errorf("failed to get nfc flag: %w", err)
	}
	noManifest, err := flags.GetBool("no-manifest")
	if err != nil {
		return opts, fmt.Errorf("failed to get no-manifest flag: %w", err)
	}
	if flags.Lookup("include") != nil {
		if opts.IncludeDirs, err = flags.GetStringSlice("include"); err != nil {
			return opts, fmt.Errorf("failed to get include flag: %w", err)
		}
		if opts.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
			return opts, fmt.Errorf("failed to get max-depth flag: %w", err)
		}
		if opts.Prelude, err = flags.GetString("prelude"); err != nil {
			return opts, fmt.Errorf("failed to get prelude flag: %w", err)
		}
	}

	if noManifest || len(inputs) == 0 {
		return opts, nil
	}
	manifest, ok, err := project.LoadManifest(manifestStartDir(inputs[0]))
	if err != nil {
		reportManifestError(err)
		return opts, errReported
	}
	if ok {
		opts = opts.WithManifest(manifest)
	}
	return opts, nil
}

func manifestStartDir(input string) string {
	info, err := os.Stat(input)
	if err == nil && info.IsDir() {
		return input
	}
	return filepath.Dir(input)
}

// reportManifestError prints a manifest failure in diagnostic form.
func reportManifestError(err error) {
	var merr *project.ManifestError
	if errors.As(err, &merr) {
		fmt.Fprintf(os.Stderr, "%s %s: %v\n", diag.SevError, merr.Code.ID(), merr)
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
