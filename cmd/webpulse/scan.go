package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/nao1215/webpulse/internal/config"
	"github.com/nao1215/webpulse/internal/model"
	"github.com/nao1215/webpulse/internal/pipeline"
	"github.com/nao1215/webpulse/internal/report"
	"github.com/spf13/cobra"
)

// errScanFailed is returned after the reports are written when at least one
// scan could not produce scores, so scripts can detect it from the exit code.
var errScanFailed = errors.New("scan failed")

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Audit web pages for SEO, accessibility and performance issues",
		Long: `Scan fetches each URL once and checks its markup for:
- SEO problems (title, meta description, headings, canonical, Open Graph)
- Accessibility and code quality problems (alt text, labels, dead links)
- Performance problems (response time, page size, blocking scripts)

Every issue comes with a suggested fix. Suggestions come from a built-in
table, or from Claude when AI is enabled and ANTHROPIC_API_KEY is set.
Results are saved to the scan history unless --no-save is given.

Examples:
  # Scan a single page (https:// is added when no scheme is given)
  webpulse scan example.com

  # Scan several pages, four at a time
  webpulse scan --batch 4 example.com example.org/about

  # Write a Markdown report to a file
  webpulse scan --markdown -o reports/example.md example.com

  # Output JSON without saving to the history
  webpulse scan --json --no-save example.com

  # Audit an onion service through an embedded Tor daemon
  webpulse scan --tor <address>.onion`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent scans")

	addScannerFlags(cmd)

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed); text and Markdown are also printed")
	cmd.Flags().Bool("no-save", false,
		"Do not save results to the scan history")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Targets = args

	if err := cfg.ValidateScan(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := normalizeTargets(cfg); err != nil {
		return err
	}

	status := cmd.ErrOrStderr()
	logger := setupLogger(cfg, status)
	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	logger.Info("starting scan",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	scanner := &recordingScanner{logger: logger}
	if cfg.SaveToDB {
		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		scanner.store = db
		logger.Info("scan history opened", "path", db.Path())
	}

	rt, err := newScanRuntime(ctx, cfg, logger, status)
	if err != nil {
		return err
	}
	defer rt.Close()
	scanner.next = rt.scanner

	reports, err := runScans(ctx, cfg, scanner, logger, status)
	if err != nil {
		return err
	}

	if err := writeReports(cfg, reports, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if cfg.ReportFile != "" {
		fmt.Fprintf(status, "Report written to %s\n", cfg.ReportFile)
	}

	return countFailures(reports)
}

// historyWriter is the part of the scan history a scan writes to.
type historyWriter interface {
	Save(ctx context.Context, report *model.Report, durationMs float64) (int64, error)
}

// recordingScanner saves every report its scanner produces, degraded ones
// included. Cancelled scans produce no report and are not saved.
type recordingScanner struct {
	next   pipeline.Scanner
	store  historyWriter
	logger *slog.Logger
}

// Scan runs the wrapped scanner and saves the result. A save failure is
// logged and does not fail the scan.
func (s *recordingScanner) Scan(ctx context.Context, url string) (*model.Report, error) {
	start := time.Now()
	rep, err := s.next.Scan(ctx, url)
	if rep == nil || s.store == nil {
		return rep, err
	}

	durationMs := float64(time.Since(start)) / float64(time.Millisecond)
	id, saveErr := s.store.Save(context.WithoutCancel(ctx), rep, durationMs)
	if saveErr != nil {
		s.logger.Error("failed to save scan", "url", url, "error", saveErr)
		return rep, err
	}
	s.logger.Info("scan saved", "url", url, "id", id)
	return rep, err
}

// runScans scans every target and returns the reports in target order.
// Only cancellation is an error; failed scans come back as degraded reports.
func runScans(ctx context.Context, cfg *config.Config, scanner pipeline.Scanner, logger *slog.Logger, status io.Writer) ([]*model.Report, error) {
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(status))

	if len(cfg.Targets) == 1 {
		target := cfg.Targets[0]
		s.Suffix = " Scanning " + target
		s.Start()
		rep, err := scanner.Scan(ctx, target)
		s.Stop()

		if rep == nil {
			return nil, err
		}
		if err != nil {
			logger.Warn("scan degraded", "url", target, "error", err)
		}
		return []*model.Report{rep}, nil
	}

	total := len(cfg.Targets)
	reports := make([]*model.Report, total)
	startTime := time.Now()

	s.Suffix = fmt.Sprintf(" Scanning %d URLs (concurrency: %d)", total, cfg.BatchSize)
	s.Start()

	bp := pipeline.NewBatchProcessor(scanner,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var mu sync.Mutex
	done := 0
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(rep *model.Report, index int, _ error) {
		mu.Lock()
		defer mu.Unlock()

		reports[index] = rep
		done++

		s.Lock()
		s.Suffix = fmt.Sprintf(" [%d/%d] Scanned %s", done, total, rep.URL)
		s.Unlock()
	})
	s.Stop()
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(status, "Scanned %d URLs in %s\n", total, time.Since(startTime).Round(time.Millisecond))
	return reports, nil
}

// writeReports writes the reports in the configured format. A single JSON
// report carries the tool version; several become one JSON array. Reports
// written to a file are also printed as text, except JSON.
func writeReports(cfg *config.Config, reports []*model.Report, stdout io.Writer) error {
	out, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer out.Close()

	if cfg.JSONReport {
		if len(reports) == 1 {
			_, err = report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint()).Write(reports[0])
			return err
		}
		_, err = report.NewJSONWriter(out, report.WithPrettyPrint()).WriteBatch(reports)
		return err
	}

	w := reportWriter(cfg, out)
	separators := []io.Writer{out}
	if cfg.ReportFile != "" {
		// Text and Markdown files are echoed to the terminal as text.
		w = report.NewMultiWriter(w, report.NewSimpleWriter(stdout,
			report.WithColor(!color.NoColor),
			report.WithVerbose(cfg.Verbose),
		))
		separators = append(separators, stdout)
	}

	for i, rep := range reports {
		if i > 0 {
			for _, sep := range separators {
				if _, err := fmt.Fprintln(sep); err != nil {
					return err
				}
			}
		}
		if _, err := w.Write(rep); err != nil {
			return err
		}
	}
	return nil
}

// reportWriter returns the Markdown writer or the text writer. The text
// report is colored only on a terminal.
func reportWriter(cfg *config.Config, out io.Writer) report.Writer {
	if cfg.MarkdownReport {
		return report.NewMarkdownWriter(out)
	}
	useColor := cfg.ReportFile == "" && !color.NoColor
	return report.NewSimpleWriter(out,
		report.WithColor(useColor),
		report.WithVerbose(cfg.Verbose),
	)
}

// countFailures returns errScanFailed when any report failed.
func countFailures(reports []*model.Report) error {
	failed := 0
	for _, rep := range reports {
		if rep.Failed() {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d URL(s) could not be audited", errScanFailed, failed, len(reports))
}
