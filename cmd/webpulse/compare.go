package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/webpulse/internal/config"
	"github.com/nao1215/webpulse/internal/database"
	"github.com/nao1215/webpulse/internal/fetcher"
	"github.com/nao1215/webpulse/internal/report"
	"github.com/spf13/cobra"
)

var (
	// errCompareArgs is returned when neither two scan ids nor --url is given.
	errCompareArgs = errors.New("specify two scan ids, or --url to compare the latest two scans of a page")

	// errNotEnoughScans is returned when a page has fewer than two scans.
	errNotEnoughScans = errors.New("at least two scans are needed to compare")
)

// NewCompareCmd creates the compare command.
// This command compares two scans stored in the history.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [old-scan-id new-scan-id]",
		Short: "Compare two saved scans",
		Long: `Compare shows how scores and issues changed between two saved scans:
- Score changes for the overall score and each area
- New issues that appeared in the newer scan
- Resolved issues that are no longer present

Issues are matched by severity and title.

Examples:
  # Compare two scans by ID (see 'webpulse history')
  webpulse compare 3 7

  # Compare the latest two scans of a page
  webpulse compare --url example.com

  # Output the comparison as JSON
  webpulse compare --json 3 7`,
		Args: cobra.RangeArgs(0, 2),
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("url", "u", "",
		"Compare the latest two scans of this URL")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	rawURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	var oldID, newID int64
	switch {
	case len(args) == 2 && rawURL == "":
		if oldID, err = parseScanID(args[0]); err != nil {
			return err
		}
		if newID, err = parseScanID(args[1]); err != nil {
			return err
		}
	case len(args) == 0 && rawURL != "":
	default:
		return errCompareArgs
	}

	return withHistory(cmd, func(ctx context.Context, _ *config.Config, db *database.ScanDB) error {
		if rawURL != "" {
			oldID, newID, err = latestPair(ctx, db, rawURL)
			if err != nil {
				return err
			}
		}

		older, err := db.Get(ctx, oldID)
		if err != nil {
			return notFound(err, oldID)
		}
		newer, err := db.Get(ctx, newID)
		if err != nil {
			return notFound(err, newID)
		}

		comparison := report.Compare(older.Report, newer.Report)
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), comparison)
		}
		return report.WriteComparison(cmd.OutOrStdout(), comparison)
	})
}

// latestPair returns the ids of the second latest and latest scans of a URL.
func latestPair(ctx context.Context, db *database.ScanDB, rawURL string) (int64, int64, error) {
	target, err := fetcher.NormalizeURL(rawURL)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	scans, err := db.HistoryForURL(ctx, target)
	if err != nil {
		return 0, 0, err
	}
	if len(scans) < 2 {
		return 0, 0, fmt.Errorf("%w: %s has %d", errNotEnoughScans, target, len(scans))
	}
	return scans[1].ID, scans[0].ID, nil
}
