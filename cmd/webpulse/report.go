package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/webpulse/internal/config"
	"github.com/nao1215/webpulse/internal/database"
	"github.com/nao1215/webpulse/internal/model"
	"github.com/nao1215/webpulse/internal/report"
	"github.com/spf13/cobra"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <scan-id>",
		Short: "Export a saved scan as a report file",
		Long: `Report renders a saved scan as plain text, Markdown or JSON.

When --output names a directory, the file name is derived from the
scanned host, e.g. webpulse_example_com.md.

Examples:
  # Print a saved scan as Markdown
  webpulse report 7 --format markdown

  # Save a JSON report into the reports directory
  webpulse report 7 --format json -o reports/`,
		Args: cobra.ExactArgs(1),
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("format", "f", string(report.FormatText),
		"Report format: text, markdown or json")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file or directory instead of stdout")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	id, err := parseScanID(args[0])
	if err != nil {
		return err
	}

	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	return withHistory(cmd, func(ctx context.Context, cfg *config.Config, db *database.ScanDB) error {
		record, err := db.Get(ctx, id)
		if err != nil {
			return notFound(err, id)
		}

		path := reportPath(cfg.ReportFile, record.Report.URL, format)
		out, err := openOutput(path, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer out.Close()

		if err := renderReport(out, record.Report, format); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if path != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", path)
		}
		return nil
	})
}

// renderReport writes one report. JSON exports carry the tool version.
func renderReport(out io.Writer, rep *model.Report, format report.Format) error {
	var w report.Writer
	if format == report.FormatJSON {
		w = report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	} else {
		w = report.NewWriter(format, out)
	}
	_, err := w.Write(rep)
	return err
}

// reportPath resolves --output. A directory, or a path ending in a
// separator, gets a file name derived from the scanned URL.
func reportPath(output, rawURL string, format report.Format) string {
	if output == "" {
		return ""
	}
	if strings.HasSuffix(output, "/") || strings.HasSuffix(output, string(filepath.Separator)) {
		return filepath.Join(output, report.FileName(rawURL, format))
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, report.FileName(rawURL, format))
	}
	return output
}
