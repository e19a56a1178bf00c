package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stck/internal/diagfmt"
	"stck/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.stck",
	Short: "Tokenize a stck source file",
	Long:  `Tokenize lexes a single file without running the preprocessor`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	addOutputFlags(tokenizeCmd)
	addLexerFlags(tokenizeCmd)
}

type tokenizeJSON struct {
	File        string                    `json:"file"`
	Tokens      []diagfmt.TokenOutput     `json:"tokens"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
}

func runTokenize(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	flags, err := readOutputFlags(cmd)
	if err != nil {
		return err
	}
	opts, err := driverOptions(cmd, flags, args)
	if err != nil {
		return err
	}

	// Выполняем токенизацию
	result, err := driver.Tokenize(cmd.Context(), filePath, opts)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// Выводим токены в выбранном формате
	out := cmd.OutOrStdout()
	switch flags.format {
	case "json":
		payload := tokenizeJSON{
			File:        filePath,
			Tokens:      diagfmt.BuildTokensOutput(result.Tokens, result.FileSet, flags.pathMode),
			Diagnostics: jsonDiagnostics(result.Bag, result.FileSet, flags),
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return err
		}
	default:
		// Выводим диагностику в stderr, если есть
		printDiagnostics(os.Stderr, result.Bag, result.FileSet, flags)
		if err := diagfmt.FormatTokensPretty(out, result.Tokens, result.FileSet, flags.pathMode); err != nil {
			return err
		}
	}

	if flags.timings {
		printTimings(os.Stderr, result.Timing)
	}
	if result.Failed() {
		return errReported
	}
	return nil
}
