package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nao1215/webpulse/internal/model"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	older := createTestReport()
	newer := createTestReport()
	newer.Scores = model.Scores{Overall: 80, SEO: 100, Accessibility: 60, Performance: 80}
	fixed := model.NewIssue(model.CategoryPerformance, model.SeverityLow, "No favicon found", "")
	added := model.NewIssue(model.CategoryPerformance, model.SeverityMedium, "Many external stylesheets (7)", "")
	newer.Issues = []model.Issue{
		fixed,
		model.NewIssue(model.CategoryAccessibility, model.SeverityMedium, "Missing viewport meta tag", ""),
		added,
	}

	c := Compare(older, newer)

	if len(c.Scores) != 4 {
		t.Fatalf("scores = %+v", c.Scores)
	}
	if c.Scores[0].Label != "Overall" || c.Scores[0].Change() != 8 {
		t.Errorf("overall delta = %+v", c.Scores[0])
	}
	if c.Scores[1].Label != "SEO" || c.Scores[1].Change() != 20 {
		t.Errorf("seo delta = %+v", c.Scores[1])
	}

	if len(c.Resolved) != 1 || c.Resolved[0] != "[High] Missing page title" {
		t.Errorf("resolved = %q", c.Resolved)
	}
	if len(c.Added) != 1 || c.Added[0] != "[Medium] Many external stylesheets (7)" {
		t.Errorf("added = %q", c.Added)
	}
	if c.Unchanged != 2 {
		t.Errorf("unchanged = %d, want 2", c.Unchanged)
	}
}

func TestCompareIdentical(t *testing.T) {
	t.Parallel()

	c := Compare(createTestReport(), createTestReport())
	if len(c.Added) != 0 || len(c.Resolved) != 0 || c.Unchanged != 3 {
		t.Errorf("comparison = %+v", c)
	}

	var buf bytes.Buffer
	if err := WriteComparison(&buf, c); err != nil {
		t.Fatal(err)
	}
	output := buf.String()
	if !strings.Contains(output, "No changes.") {
		t.Errorf("unexpected output:\n%s", output)
	}
	if !strings.Contains(output, "URL:  https://www.example.com/") {
		t.Error("same URL should be printed once")
	}
}

func TestWriteComparison(t *testing.T) {
	t.Parallel()

	c := Comparison{
		OldURL:   "https://a.example/",
		NewURL:   "https://b.example/",
		Scores:   []ScoreDelta{{Label: "Overall", Old: 70, New: 60}},
		Added:    []string{"[High] New problem"},
		Resolved: []string{"[Low] Old problem"},
	}

	var buf bytes.Buffer
	if err := WriteComparison(&buf, c); err != nil {
		t.Fatal(err)
	}
	output := buf.String()
	for _, want := range []string{
		"Old:  https://a.example/",
		"New:  https://b.example/",
		"70 ->  60  (-10)",
		"ISSUES (1 new, 1 resolved, 0 unchanged)",
		"  - [Low] Old problem",
		"  + [High] New problem",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in:\n%s", want, output)
		}
	}
}
