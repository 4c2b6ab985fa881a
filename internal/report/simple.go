package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/nao1215/webpulse/internal/aggregate"
	"github.com/nao1215/webpulse/internal/model"
)

const (
	// ruleWidth is the width of the section rules in the text report.
	ruleWidth = 65

	// wrapWidth is the width at which long paragraphs are wrapped.
	wrapWidth = 72

	placeholderMissing = "-- Missing --"
	placeholderNotSet  = "-- Not set --"
)

// Score bands used for coloring.
const (
	goodScore = 80
	fairScore = 55
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display and for the plain text
// download of the HTTP API.
//
// Design decision: Color is off by default so the same writer produces
// clean files and HTTP bodies. The CLI turns it on for terminals.
type SimpleWriter struct {
	baseWriter

	// colorize enables ANSI colors for scores and severities.
	colorize bool

	// verbose adds the page statistics section.
	verbose bool

	green  *color.Color
	yellow *color.Color
	red    *color.Color
	bold   *color.Color
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithColor enables or disables ANSI colors.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.colorize = enabled
	}
}

// WithVerbose enables verbose output with page statistics.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		green:      color.New(color.FgHiGreen),
		yellow:     color.New(color.FgHiYellow),
		red:        color.New(color.FgHiRed),
		bold:       color.New(color.Bold),
	}

	for _, opt := range opts {
		opt(w)
	}

	// The package-level NoColor switch follows the process stdout, which
	// says nothing about this writer's destination.
	for _, c := range []*color.Color{w.green, w.yellow, w.red, w.bold} {
		if w.colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	if report.Failed() {
		w.writeFailure(&sb, report)
	} else {
		w.writeScores(&sb, report)
		w.writeSummary(&sb, report)
		w.writePageInfo(&sb, report)
		if w.verbose {
			w.writeStats(&sb, report)
		}
		w.writeIssues(&sb, report)
	}
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString(w.bold.Sprint("  WebPulse  --  Website Audit Report") + "\n")
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	fmt.Fprintf(sb, "  URL:   %s\n", report.URL)
	fmt.Fprintf(sb, "  Date:  %s\n", report.FetchedAt.UTC().Format("2006-01-02 15:04 UTC"))
	if report.Error != "" && !report.Failed() {
		fmt.Fprintf(sb, "  Note:  %s\n", report.Error)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(w.bold.Sprint(title) + "\n")
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
}

func (w *SimpleWriter) writeFailure(sb *strings.Builder, report *model.Report) {
	w.writeSection(sb, "SCAN FAILED")
	for _, line := range wrap(report.Error, wrapWidth-2) {
		sb.WriteString("  " + w.red.Sprint(line) + "\n")
	}
	if report.StatusCode != nil {
		fmt.Fprintf(sb, "  HTTP status: %d\n", *report.StatusCode)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeScores(sb *strings.Builder, report *model.Report) {
	w.writeSection(sb, "SCORES")
	tier := aggregate.TierFor(report.Scores.Overall)
	fmt.Fprintf(sb, "  %-16s %s  (%s)\n", "Overall:", w.score(report.Scores.Overall), tier.Name)
	for _, area := range aggregate.Areas(report.Scores) {
		fmt.Fprintf(sb, "  %-16s %s\n", area.Label+":", w.score(area.Score))
	}
	sb.WriteString("\n")
}

// score renders "N/100" colored by band.
func (w *SimpleWriter) score(n int) string {
	s := strconv.Itoa(n) + "/100"
	switch {
	case n >= goodScore:
		return w.green.Sprint(s)
	case n >= fairScore:
		return w.yellow.Sprint(s)
	default:
		return w.red.Sprint(s)
	}
}

func (w *SimpleWriter) severity(s model.Severity) string {
	label := "[" + s.String() + "]"
	switch s {
	case model.SeverityHigh:
		return w.red.Sprint(label)
	case model.SeverityMedium:
		return w.yellow.Sprint(label)
	default:
		return label
	}
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.Report) {
	if report.ExecutiveSummary == "" {
		return
	}
	w.writeSection(sb, "SUMMARY")
	for _, line := range wrap(report.ExecutiveSummary, wrapWidth-2) {
		sb.WriteString("  " + line + "\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writePageInfo(sb *strings.Builder, report *model.Report) {
	meta := report.PageMeta
	w.writeSection(sb, "PAGE INFO")
	rows := [][2]string{
		{"Title", orMissing(meta.Title, placeholderMissing)},
		{"Description", orMissing(truncateString(meta.Description, 120), placeholderMissing)},
		{"H1", orMissing(meta.H1, placeholderMissing)},
		{"Canonical", orMissing(meta.Canonical, placeholderNotSet)},
		{"Response", fmt.Sprintf("%.1f ms", report.ResponseTimeMs)},
		{"Page size", fmt.Sprintf("%.1f KB", report.PageStats.PageSizeKB)},
	}
	if report.StatusCode != nil {
		rows = append(rows, [2]string{"HTTP status", strconv.Itoa(*report.StatusCode)})
	}
	for _, row := range rows {
		fmt.Fprintf(sb, "  %-13s %s\n", row[0]+":", row[1])
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeStats(sb *strings.Builder, report *model.Report) {
	stats := report.PageStats
	w.writeSection(sb, "PAGE STATS")
	fmt.Fprintf(sb, "  Images:            %d (%d missing alt, %d lazy)\n",
		stats.ImagesTotal, stats.ImagesMissingAlt, stats.ImagesLazy)
	fmt.Fprintf(sb, "  Alt text coverage: %.0f%%\n", stats.AltTextCoverage*100)
	fmt.Fprintf(sb, "  Links:             %d (%d without destination)\n", stats.LinksTotal, stats.EmptyLinks)
	fmt.Fprintf(sb, "  Form inputs:       %d (%d unlabeled)\n", stats.InputsTotal, stats.InputsUnlabeled)
	fmt.Fprintf(sb, "  Scripts:           %d external, %d render-blocking\n",
		stats.ExternalScripts, stats.RenderBlockingScripts)
	fmt.Fprintf(sb, "  Stylesheets:       %d\n", stats.ExternalStylesheets)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeIssues(sb *strings.Builder, report *model.Report) {
	counts := report.IssueCounts
	w.writeSection(sb, fmt.Sprintf("ISSUES & RECOMMENDATIONS (%d high, %d medium, %d low)",
		counts.High, counts.Medium, counts.Low))

	issues := report.SortedIssues()
	if len(issues) == 0 {
		sb.WriteString("  No issues found.\n\n")
		return
	}

	for i, issue := range issues {
		fmt.Fprintf(sb, "  %d. %s %s\n", i+1, w.severity(issue.Severity), issue.Title)
		fmt.Fprintf(sb, "     Category: %s\n", issue.Category)
		writeLabeled(sb, "Detail:   ", issue.Detail)
		writeLabeled(sb, "Fix:      ", issue.Suggestion)
		sb.WriteString("\n")
	}
}

// writeLabeled writes a wrapped paragraph whose continuation lines align
// with the text after the label. Empty text is skipped.
func writeLabeled(sb *strings.Builder, label, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	indent := strings.Repeat(" ", 5+len(label))
	for i, line := range wrap(text, wrapWidth-len(indent)) {
		if i == 0 {
			sb.WriteString("     " + label + line + "\n")
			continue
		}
		sb.WriteString(indent + line + "\n")
	}
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString("Report generated by webpulse\n")
}

// wrap splits text into lines of at most width characters at word
// boundaries. Words longer than width get a line of their own.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	lines := make([]string, 0, 1)
	current := words[0]
	for _, word := range words[1:] {
		if len([]rune(current))+1+len([]rune(word)) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}
