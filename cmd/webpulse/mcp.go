package main

import (
	"fmt"

	"github.com/nao1215/webpulse/internal/log"
	"github.com/nao1215/webpulse/internal/mcp"
	"github.com/spf13/cobra"
)

// NewMCPCmd creates the mcp command.
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run an MCP tool server on stdio",
		Long: `MCP serves the scanner and the scan history to AI assistants over the
Model Context Protocol, using stdin and stdout.

Tools:
  webpulse_scan       audit a URL and save the result
  webpulse_history    list recent scans, optionally for one URL
  webpulse_get_scan   get a saved scan as JSON, text or Markdown
  webpulse_stats      summarize the scan history

Logs are written to stderr as JSON; stdout carries the protocol only.

Example MCP client configuration:
  {"command": "webpulse", "args": ["mcp"]}`,
		Args: cobra.NoArgs,
		RunE: runMCPCmd,
	}

	cmd.Flags().Bool("no-save", false,
		"Do not save scans; the history tools then report an error")
	addScannerFlags(cmd)

	return cmd
}

// runMCPCmd executes the mcp command.
func runMCPCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	rt, err := newScanRuntime(ctx, cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	// A nil *ScanDB must not end up inside the interface.
	var store mcp.Store
	if cfg.SaveToDB {
		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	}

	logger.Info("mcp server starting on stdio", "history", store != nil)
	return mcp.NewServer(rt.scanner, store, getVersion()).ServeStdio(ctx)
}
