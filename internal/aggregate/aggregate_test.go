package aggregate

import (
	"strings"
	"testing"

	"github.com/nao1215/webpulse/internal/analyzer"
	"github.com/nao1215/webpulse/internal/model"
)

func issue(category model.Category, severity model.Severity, title string) model.Issue {
	return model.NewIssue(category, severity, title, "")
}

func TestMerge(t *testing.T) {
	t.Parallel()

	seo := []model.Issue{issue(model.CategorySEO, model.SeverityLow, "s1"), issue(model.CategorySEO, model.SeverityHigh, "s2")}
	a11y := []model.Issue{issue(model.CategoryBugs, model.SeverityMedium, "a1")}
	perf := []model.Issue{issue(model.CategoryPerformance, model.SeverityHigh, "p1")}

	got := Merge(seo, a11y, perf)
	want := []string{"s1", "s2", "a1", "p1"}
	if len(got) != len(want) {
		t.Fatalf("expected %d issues, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Errorf("issue %d = %q, want %q", i, got[i].Title, want[i])
		}
	}

	if empty := Merge(nil, nil, nil); empty == nil || len(empty) != 0 {
		t.Errorf("Merge(nil...) = %#v, want empty non-nil slice", empty)
	}
}

func TestOverall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seo, a11y, perf int
		want            int
	}{
		{seo: 100, a11y: 100, perf: 100, want: 100},
		{seo: 0, a11y: 0, perf: 0, want: 0},
		{seo: 100, a11y: 100, perf: 95, want: 98},
		{seo: 15, a11y: 70, perf: 95, want: 60},
		{seo: 0, a11y: 0, perf: 1, want: 0},
		{seo: 0, a11y: 1, perf: 1, want: 1},
	}

	for _, tt := range tests {
		if got := Overall(tt.seo, tt.a11y, tt.perf); got != tt.want {
			t.Errorf("Overall(%d, %d, %d) = %d, want %d", tt.seo, tt.a11y, tt.perf, got, tt.want)
		}
	}
}

func TestCountBySeverity(t *testing.T) {
	t.Parallel()

	issues := []model.Issue{
		issue(model.CategorySEO, model.SeverityHigh, "a"),
		issue(model.CategorySEO, model.SeverityHigh, "b"),
		issue(model.CategorySEO, model.SeverityMedium, "c"),
		issue(model.CategorySEO, model.SeverityLow, "d"),
	}
	got := CountBySeverity(issues)
	if got != (model.IssueCounts{High: 2, Medium: 1, Low: 1}) {
		t.Errorf("CountBySeverity() = %+v", got)
	}
	if got.Total() != len(issues) {
		t.Errorf("counts must sum to the number of issues")
	}
}

func TestPageStats(t *testing.T) {
	t.Parallel()

	t.Run("no images", func(t *testing.T) {
		t.Parallel()

		stats := PageStats(0, nil, nil)
		if stats.AltTextCoverage != 1 || stats.LazyImageRatio != 0 {
			t.Errorf("unexpected ratios %+v", stats)
		}
	})

	t.Run("ratios", func(t *testing.T) {
		t.Parallel()

		stats := PageStats(3,
			&model.AccessibilityStats{ImagesMissingAlt: 1, LinksTotal: 4},
			&model.PerformanceStats{ImagesLazy: 2, PageSizeKB: 12.5})
		if stats.AltTextCoverage != 0.667 {
			t.Errorf("AltTextCoverage = %v", stats.AltTextCoverage)
		}
		if stats.LazyImageRatio != 0.667 {
			t.Errorf("LazyImageRatio = %v", stats.LazyImageRatio)
		}
		if stats.LinksTotal != 4 || stats.PageSizeKB != 12.5 {
			t.Errorf("embedded stats not copied: %+v", stats)
		}
	})
}

func TestApply(t *testing.T) {
	t.Parallel()

	results := Results{
		SEO: analyzer.Result{
			Score:  80,
			Issues: []model.Issue{issue(model.CategorySEO, model.SeverityHigh, "Missing page title")},
			Meta:   &model.PageMeta{H1: "Hello", Headings: map[string]int{"h1": 1}},
		},
		Accessibility: analyzer.Result{
			Score:         90,
			Issues:        []model.Issue{issue(model.CategoryBugs, model.SeverityMedium, "Missing charset declaration")},
			Accessibility: &model.AccessibilityStats{ImagesMissingAlt: 0},
			ImagesTotal:   2,
		},
		Performance: analyzer.Result{
			Score:       100,
			Performance: &model.PerformanceStats{ImagesLazy: 1},
			ImagesTotal: 2,
		},
	}

	report := model.NewReport("https://example.com/")
	Apply(report, results, results.Issues())

	if report.Scores != (model.Scores{Overall: 90, SEO: 80, Accessibility: 90, Performance: 100}) {
		t.Errorf("Scores = %+v", report.Scores)
	}
	if report.IssueCounts != (model.IssueCounts{High: 1, Medium: 1}) {
		t.Errorf("IssueCounts = %+v", report.IssueCounts)
	}
	if len(report.Issues) != 2 || report.Issues[0].Category != model.CategorySEO {
		t.Errorf("Issues = %+v", report.Issues)
	}
	if report.PageMeta.H1 != "Hello" {
		t.Errorf("PageMeta = %+v", report.PageMeta)
	}
	if report.PageStats.ImagesTotal != 2 || report.PageStats.LazyImageRatio != 0.5 || report.PageStats.AltTextCoverage != 1 {
		t.Errorf("PageStats = %+v", report.PageStats)
	}
	if !strings.HasPrefix(report.ExecutiveSummary, "This website audit identified 2 issue(s)") {
		t.Errorf("ExecutiveSummary = %q", report.ExecutiveSummary)
	}
}
