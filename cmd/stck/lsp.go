package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/glsp/server"

	"stck/internal/driver"
	"stck/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the stck language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().Int("verbosity", 0, "log verbosity written to stderr")
	lspCmd.Flags().String("log-file", "", "write server logs to file instead of stderr")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	verbosity, err := cmd.Flags().GetInt("verbosity")
	if err != nil {
		return fmt.Errorf("failed to get verbosity flag: %w", err)
	}
	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return fmt.Errorf("failed to get log-file flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	// stdout занят протоколом, логи только в stderr или файл
	var logPath *string
	if logFile != "" {
		logPath = &logFile
	}
	commonlog.Configure(verbosity, logPath)

	handler := lsp.NewHandler(driver.Options{MaxDiagnostics: maxDiagnostics})
	srv := server.NewServer(handler.Protocol(), lsp.ServerName, false)
	return srv.RunStdio()
}
