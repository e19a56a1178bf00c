package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"stck/internal/diagfmt"
	"stck/internal/driver"
	"stck/internal/observ"
	"stck/internal/trace"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess [flags] file.stck|dir...",
	Short: "Expand includes and macros",
	Long: `Preprocess lexes each input, splices included files and expands macros,
printing the resolved token stream. Directories are searched for .stck files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPreprocess,
}

func init() {
	addOutputFlags(preprocessCmd)
	addLexerFlags(preprocessCmd)
	preprocessCmd.Flags().StringSliceP("include", "I", nil, "library include directory (repeatable)")
	preprocessCmd.Flags().Int("max-depth", 0, "maximum include and expansion depth (0 = default)")
	preprocessCmd.Flags().String("prelude", "", "file included before every input")
	preprocessCmd.Flags().Int("jobs", 0, "max parallel files (0=auto)")
	preprocessCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	preprocessCmd.Flags().Bool("cache", false, "reuse resolved token streams from the disk cache")
	preprocessCmd.Flags().Bool("clear-cache", false, "drop the disk cache before running")
}

type preprocessJSON struct {
	File        string                    `json:"file"`
	Cached      bool                      `json:"cached,omitempty"`
	Tokens      []diagfmt.TokenOutput     `json:"tokens"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	flags, err := readOutputFlags(cmd)
	if err != nil {
		return err
	}
	opts, err := driverOptions(cmd, flags, args)
	if err != nil {
		return err
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	withUI, err := useProgressUI(uiFlag, flags)
	if err != nil {
		return err
	}
	if err := setupCache(cmd, &opts); err != nil {
		return err
	}

	paths, err := driver.ExpandInputs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no .stck files found")
	}

	ctx, span := trace.Start(cmd.Context(), trace.ScopeDriver, "preprocess")

	var results []*driver.Result
	if withUI {
		results, err = runPreprocessWithUI(ctx, "preprocessing", paths, opts, jobs)
	} else {
		results, err = driver.PreprocessFiles(ctx, paths, opts, jobs)
	}
	span.End(fmt.Sprintf("%d files", len(paths)))
	if err != nil {
		return err
	}

	if err := writeResults(cmd.OutOrStdout(), results, flags); err != nil {
		return err
	}

	if flags.timings {
		reports := make([]observ.Report, 0, len(results))
		for _, res := range results {
			reports = append(reports, res.Timing)
		}
		printTimings(os.Stderr, reports...)
	}

	for _, res := range results {
		if res.Failed() {
			return errReported
		}
	}
	return nil
}

func setupCache(cmd *cobra.Command, opts *driver.Options) error {
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if !useCache && !clearCache {
		return nil
	}
	cache, err := driver.OpenDiskCache("stck")
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if clearCache {
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}
	if useCache {
		opts.Cache = cache
	}
	return nil
}

func writeResults(out io.Writer, results []*driver.Result, flags outputFlags) error {
	if flags.format == "json" {
		payload := make([]preprocessJSON, 0, len(results))
		for _, res := range results {
			payload = append(payload, preprocessJSON{
				File:        res.Path,
				Cached:      res.Cached,
				Tokens:      diagfmt.BuildTokensOutput(res.Tokens, res.FileSet, flags.pathMode),
				Diagnostics: jsonDiagnostics(res.Bag, res.FileSet, flags),
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	for i, res := range results {
		printDiagnostics(os.Stderr, res.Bag, res.FileSet, flags)
		if res.Tokens == nil {
			continue
		}
		if len(results) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "== %s ==\n", res.Path)
		}
		if err := diagfmt.FormatTokensPretty(out, res.Tokens, res.FileSet, flags.pathMode); err != nil {
			return err
		}
	}
	return nil
}
