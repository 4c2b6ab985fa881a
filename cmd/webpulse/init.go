package main

import (
	"errors"
	"fmt"

	"github.com/nao1215/webpulse/internal/config"
	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new webpulse configuration file",
		Long: `Initialize creates a new .webpulse configuration file in the current directory.

The generated file includes:
- Default request headers sent to every site
- Commented examples for per-site cookies and headers
- AI suggestion, API server and proxy settings

Examples:
  # Create .webpulse in current directory
  webpulse init

  # Create config file at a specific path
  webpulse init -o myconfig.yaml

  # Force overwrite existing file
  webpulse init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if err := config.WriteTemplate(outputPath, force); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return fmt.Errorf("%w (use -f to overwrite)", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure settings such as:")
	fmt.Fprintln(out, "  - Cookies and headers for sites behind a login")
	fmt.Fprintln(out, "  - Claude suggestions (set ANTHROPIC_API_KEY as well)")
	fmt.Fprintln(out, "  - A SOCKS5 proxy or the embedded Tor daemon")

	return nil
}
