package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/webpulse/internal/config"
	"github.com/nao1215/webpulse/internal/database"
	"github.com/nao1215/webpulse/internal/fetcher"
	"github.com/nao1215/webpulse/internal/model"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and manage saved scans",
		Long: `History lists the scans saved by 'webpulse scan', newest first.

Examples:
  # List the 20 most recent scans
  webpulse history

  # List every scan of one page
  webpulse history --url example.com

  # Show a saved report, then delete it
  webpulse history show 12
  webpulse history delete 12

  # Summarize the whole history
  webpulse history stats`,
		Args: cobra.NoArgs,
		RunE: runHistoryListCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Maximum number of scans to list")
	cmd.Flags().StringP("url", "u", "",
		"Only list scans of this URL")
	cmd.Flags().BoolP("json", "j", false,
		"Output the list as JSON")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryDeleteCmd())
	cmd.AddCommand(newHistoryStatsCmd())
	cmd.AddCommand(newHistoryURLsCmd())

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <scan-id>",
		Short: "Show a saved scan report",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <scan-id>",
		Short: "Delete a saved scan",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryDeleteCmd,
	}
}

func newHistoryStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize all saved scans",
		Args:  cobra.NoArgs,
		RunE:  runHistoryStatsCmd,
	}
	cmd.Flags().BoolP("json", "j", false, "Output statistics as JSON")
	return cmd
}

func newHistoryURLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "urls",
		Short: "List every URL in the scan history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryURLsCmd,
	}
}

// withHistory loads the configuration, opens the existing scan history and
// calls fn with it.
func withHistory(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, db *database.ScanDB) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	db, err := openExistingStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, cfg, db)
}

// parseScanID parses a positive scan id argument.
func parseScanID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid scan id %q: must be a positive integer", arg)
	}
	return id, nil
}

// notFound rewrites database.ErrNotFound into a message naming the id.
func notFound(err error, id int64) error {
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("scan %d not found (see 'webpulse history')", id)
	}
	return err
}

func runHistoryListCmd(cmd *cobra.Command, _ []string) error {
	return withHistory(cmd, func(ctx context.Context, cfg *config.Config, db *database.ScanDB) error {
		rawURL, err := cmd.Flags().GetString("url")
		if err != nil {
			return err
		}
		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}

		var scans []database.ScanSummary
		if rawURL != "" {
			target, err := fetcher.NormalizeURL(rawURL)
			if err != nil {
				return fmt.Errorf("invalid URL %q: %w", rawURL, err)
			}
			scans, err = db.HistoryForURL(ctx, target)
			if err != nil {
				return err
			}
			if len(scans) > cfg.HistoryLimit {
				scans = scans[:cfg.HistoryLimit]
			}
		} else {
			scans, err = db.Recent(ctx, cfg.HistoryLimit)
			if err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, scans)
		}
		if len(scans) == 0 {
			fmt.Fprintln(out, "No scans found. Run 'webpulse scan <url>' first.")
			return nil
		}
		return writeScanTable(out, scans)
	})
}

// writeScanTable prints history rows as a table with colored scores.
func writeScanTable(w io.Writer, scans []database.ScanSummary) error {
	table := newTable(w, []string{"ID", "Date", "URL", "Status", "Overall", "SEO", "A11y", "Perf", "Issues (H/M/L)"})
	for _, s := range scans {
		if err := table.Append([]string{
			strconv.FormatInt(s.ID, 10),
			formatTime(s.ScannedAt),
			s.URL,
			statusColor(s.Status),
			scoreColor(s.Scores.Overall),
			scoreColor(s.Scores.SEO),
			scoreColor(s.Scores.Accessibility),
			scoreColor(s.Scores.Performance),
			fmt.Sprintf("%d/%d/%d", s.IssueCounts.High, s.IssueCounts.Medium, s.IssueCounts.Low),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	id, err := parseScanID(args[0])
	if err != nil {
		return err
	}

	return withHistory(cmd, func(ctx context.Context, cfg *config.Config, db *database.ScanDB) error {
		record, err := db.Get(ctx, id)
		if err != nil {
			return notFound(err, id)
		}
		return writeReports(cfg, []*model.Report{record.Report}, cmd.OutOrStdout())
	})
}

func runHistoryDeleteCmd(cmd *cobra.Command, args []string) error {
	id, err := parseScanID(args[0])
	if err != nil {
		return err
	}

	return withHistory(cmd, func(ctx context.Context, _ *config.Config, db *database.ScanDB) error {
		if err := db.Delete(ctx, id); err != nil {
			return notFound(err, id)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted scan %d\n", id)
		return nil
	})
}

func runHistoryStatsCmd(cmd *cobra.Command, _ []string) error {
	return withHistory(cmd, func(ctx context.Context, _ *config.Config, db *database.ScanDB) error {
		stats, err := db.Stats(ctx)
		if err != nil {
			return err
		}

		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, stats)
		}

		fmt.Fprintf(out, "Total scans:    %d\n", stats.TotalScans)
		fmt.Fprintf(out, "Average score:  %.1f\n", stats.AverageScore)
		fmt.Fprintf(out, "Issues found:   %s high, %s medium, %d low\n",
			red(strconv.Itoa(stats.TotalIssues.High)),
			yellow(strconv.Itoa(stats.TotalIssues.Medium)),
			stats.TotalIssues.Low)
		return nil
	})
}

func runHistoryURLsCmd(cmd *cobra.Command, _ []string) error {
	return withHistory(cmd, func(ctx context.Context, _ *config.Config, db *database.ScanDB) error {
		urls, err := db.URLs(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, u := range urls {
			fmt.Fprintln(out, cyan(u))
		}
		return nil
	})
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
