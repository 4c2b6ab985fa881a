package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/webpulse/internal/aggregate"
	"github.com/nao1215/webpulse/internal/model"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// ScoreDelta is the change of one score between two scans.
type ScoreDelta struct {
	Label string `json:"label"`
	Old   int    `json:"old"`
	New   int    `json:"new"`
}

// Change returns New minus Old.
func (d ScoreDelta) Change() int {
	return d.New - d.Old
}

// Comparison describes how a page changed between two scans.
type Comparison struct {
	OldURL string       `json:"oldUrl"`
	NewURL string       `json:"newUrl"`
	Scores []ScoreDelta `json:"scores"`

	// Added are issues present only in the newer scan.
	Added []string `json:"added"`

	// Resolved are issues present only in the older scan.
	Resolved []string `json:"resolved"`

	// Unchanged counts issues present in both scans.
	Unchanged int `json:"unchanged"`
}

// Compare diffs two reports. Issues are matched by their severity and
// title, one issue per line, so a changed title counts as one resolved and
// one added issue.
func Compare(older, newer *model.Report) Comparison {
	c := Comparison{
		OldURL:   older.URL,
		NewURL:   newer.URL,
		Added:    make([]string, 0),
		Resolved: make([]string, 0),
	}

	c.Scores = append(c.Scores, ScoreDelta{Label: "Overall", Old: older.Scores.Overall, New: newer.Scores.Overall})
	oldAreas := aggregate.Areas(older.Scores)
	for i, area := range aggregate.Areas(newer.Scores) {
		c.Scores = append(c.Scores, ScoreDelta{Label: area.Label, Old: oldAreas[i].Score, New: area.Score})
	}

	dmp := diffmatchpatch.New()
	oldChars, newChars, lines := dmp.DiffLinesToChars(issueLines(older), issueLines(newer))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(oldChars, newChars, false), lines)

	for _, d := range diffs {
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			if line == "" {
				continue
			}
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				c.Added = append(c.Added, line)
			case diffmatchpatch.DiffDelete:
				c.Resolved = append(c.Resolved, line)
			case diffmatchpatch.DiffEqual:
				c.Unchanged++
			}
		}
	}

	return c
}

// issueLines renders the sorted issues one per line.
func issueLines(report *model.Report) string {
	var sb strings.Builder
	for _, issue := range report.SortedIssues() {
		fmt.Fprintf(&sb, "[%s] %s\n", issue.Severity, issue.Title)
	}
	return sb.String()
}

// WriteComparison writes c as text.
func WriteComparison(w io.Writer, c Comparison) error {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString("  Scan Comparison\n")
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	if c.OldURL == c.NewURL {
		fmt.Fprintf(&sb, "  URL:  %s\n\n", c.NewURL)
	} else {
		fmt.Fprintf(&sb, "  Old:  %s\n  New:  %s\n\n", c.OldURL, c.NewURL)
	}

	sb.WriteString("SCORES\n")
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	for _, d := range c.Scores {
		fmt.Fprintf(&sb, "  %-30s %3d -> %3d  (%+d)\n", d.Label+":", d.Old, d.New, d.Change())
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "ISSUES (%d new, %d resolved, %d unchanged)\n", len(c.Added), len(c.Resolved), c.Unchanged)
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	for _, line := range c.Resolved {
		sb.WriteString("  - " + line + "\n")
	}
	for _, line := range c.Added {
		sb.WriteString("  + " + line + "\n")
	}
	if len(c.Added) == 0 && len(c.Resolved) == 0 {
		sb.WriteString("  No changes.\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
