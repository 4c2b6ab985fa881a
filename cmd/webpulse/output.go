package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/nao1215/webpulse/internal/database"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Score bands used for coloring, matching the text report.
const (
	goodScore = 80
	fairScore = 55
)

// listTimeLayout formats scan times in tables.
const listTimeLayout = "2006-01-02 15:04"

var (
	green  = color.New(color.FgHiGreen).SprintFunc()
	yellow = color.New(color.FgHiYellow).SprintFunc()
	red    = color.New(color.FgHiRed).SprintFunc()
	cyan   = color.New(color.FgHiCyan).SprintFunc()
)

// scoreColor returns the score colored by band.
func scoreColor(score int) string {
	s := strconv.Itoa(score)
	switch {
	case score >= goodScore:
		return green(s)
	case score >= fairScore:
		return yellow(s)
	default:
		return red(s)
	}
}

// statusColor returns the scan status colored.
func statusColor(status database.Status) string {
	if status == database.StatusFailed {
		return red(string(status))
	}
	return green(string(status))
}

// formatTime renders a stored UTC timestamp for tables.
func formatTime(t time.Time) string {
	return t.UTC().Format(listTimeLayout)
}

// newTable creates a tablewriter configured with consistent styling.
func newTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// nopWriteCloser lets stdout stand in for an output file.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// openOutput returns the destination of a report: the named file, or
// stdout when path is empty. Parent directories are created.
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{stdout}, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports can describe pages fetched with site cookies, so only the
	// owner may read them.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
