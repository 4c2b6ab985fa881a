package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/webpulse/internal/aggregate"
	"github.com/nao1215/webpulse/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, for example as a
// pull request comment or a wiki page.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	title cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		title:      cases.Title(language.English),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	if report.Failed() {
		md.Cautionf("The scan failed: %s", report.Error)
		md.PlainText("")
	} else {
		w.writeScores(md, report)
		w.writePageInfo(md, report)
		w.writeIssues(md, report)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Website Audit Report")
	md.PlainText("")

	rows := [][]string{
		{"URL", "`" + report.URL + "`"},
		{"Date", report.FetchedAt.UTC().Format("2006-01-02 15:04 UTC")},
		{"Response Time", fmt.Sprintf("%.1f ms", report.ResponseTimeMs)},
	}
	if report.StatusCode != nil {
		rows = append(rows, []string{"HTTP Status", strconv.Itoa(*report.StatusCode)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.Error != "" && !report.Failed() {
		md.Warningf("%s", report.Error)
		md.PlainText("")
	}
}

// writeScores writes the score table, the summary and the severity chart.
func (w *MarkdownWriter) writeScores(md *markdown.Markdown, report *model.Report) {
	md.H2("Scores")
	md.PlainText("")

	tier := aggregate.TierFor(report.Scores.Overall)
	rows := [][]string{
		{"**Overall**", "**" + strconv.Itoa(report.Scores.Overall) + "/100**", w.title.String(tier.Name)},
	}
	for _, area := range aggregate.Areas(report.Scores) {
		rows = append(rows, []string{area.Label, strconv.Itoa(area.Score) + "/100", scoreBadge(area.Score)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Score", "Rating"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.ExecutiveSummary != "" {
		md.H2("Summary")
		md.PlainText("")
		md.PlainText(report.ExecutiveSummary)
		md.PlainText("")
	}

	if report.IssueCounts.Total() > 0 {
		w.writePieChart(md, report.IssueCounts)
	}
	w.writeAlert(md, report)
}

// scoreBadge maps a category score to a colored marker.
func scoreBadge(score int) string {
	switch {
	case score >= goodScore:
		return "🟢"
	case score >= fairScore:
		return "🟡"
	default:
		return "🔴"
	}
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts model.IssueCounts) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Severity Distribution"),
		piechart.WithShowData(true),
	)

	for _, s := range model.Severities() {
		if n := counts.Get(s); n > 0 {
			chart.LabelAndIntValue(s.String(), uint64(n)) //nolint:gosec // counts are never negative
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	counts := report.IssueCounts
	switch {
	case counts.High > 0:
		md.Warningf("%d high severity issue(s) should be addressed first. The weakest area is %s.",
			counts.High, aggregate.Weakest(report.Scores).Label)
	case counts.Medium > 0:
		md.Importantf("%d medium severity issue(s) found.", counts.Medium)
	case counts.Total() > 0:
		md.Note("Only low severity issues detected.")
	default:
		md.Tip("No issues detected.")
	}
	md.PlainText("")
}

// writePageInfo writes the extracted page metadata.
func (w *MarkdownWriter) writePageInfo(md *markdown.Markdown, report *model.Report) {
	meta := report.PageMeta
	stats := report.PageStats

	md.H2("Page Info")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows: [][]string{
			{"Title", cell(orMissing(meta.Title, placeholderMissing))},
			{"Description", cell(orMissing(truncateString(meta.Description, 120), placeholderMissing))},
			{"H1", cell(orMissing(meta.H1, placeholderMissing))},
			{"Canonical", cell(orMissing(meta.Canonical, placeholderNotSet))},
			{"Page Size", fmt.Sprintf("%.1f KB", stats.PageSizeKB)},
			{"Images", fmt.Sprintf("%d (%.0f%% with alt, %d lazy)", stats.ImagesTotal, stats.AltTextCoverage*100, stats.ImagesLazy)},
			{"Links", fmt.Sprintf("%d (%d without destination)", stats.LinksTotal, stats.EmptyLinks)},
			{"Scripts", fmt.Sprintf("%d external, %d render-blocking", stats.ExternalScripts, stats.RenderBlockingScripts)},
		},
	})
	md.PlainText("")
}

// writeIssues writes the issues grouped by severity.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, report *model.Report) {
	md.H2("Issues")
	md.PlainText("")

	if len(report.Issues) == 0 {
		md.PlainText("No issues found.")
		md.PlainText("")
		return
	}

	headers := map[model.Severity]string{
		model.SeverityHigh:   "### 🔴 High",
		model.SeverityMedium: "### 🟡 Medium",
		model.SeverityLow:    "### 🔵 Low",
	}

	for _, s := range model.Severities() {
		issues := report.IssuesBySeverity(s)
		if len(issues) == 0 {
			continue
		}

		md.PlainText(headers[s])
		md.PlainText("")
		w.writeIssuesTable(md, issues)
	}
}

// writeIssuesTable writes a table of issues followed by the suggestions.
func (w *MarkdownWriter) writeIssuesTable(md *markdown.Markdown, issues []model.Issue) {
	rows := make([][]string, len(issues))
	for i, issue := range issues {
		rows[i] = []string{
			cell(issue.Title),
			string(issue.Category),
			cell(truncateString(issue.Detail, 100)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Issue", "Category", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, issue := range issues {
		if issue.Suggestion != "" {
			md.Details("How to fix: "+issue.Title, issue.Suggestion)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [webpulse](https://github.com/nao1215/webpulse)*")
}

// cell makes text safe for a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
