package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for webpulse.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webpulse",
		Short: "Audit web pages for SEO, accessibility and performance",
		Long: `webpulse fetches a web page, runs SEO, accessibility and performance
checks on its markup, and produces a scored report with a fix for every issue.

Scans are stored in a local history database so they can be listed,
compared and exported later. The same scanner is available as an HTTP API
(webpulse serve) and as an MCP tool server (webpulse mcp).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .webpulse in current or home directory)")
	cmd.PersistentFlags().String("data-dir", "",
		"Directory of the scan history database (default: XDG data directory)")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
