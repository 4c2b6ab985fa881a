package aggregate

import (
	"math"

	"github.com/nao1215/webpulse/internal/analyzer"
	"github.com/nao1215/webpulse/internal/model"
)

// Results holds the output of the three analyzers by category.
type Results struct {
	SEO           analyzer.Result
	Accessibility analyzer.Result
	Performance   analyzer.Result
}

// Issues merges the issues of all three results in canonical order.
func (r Results) Issues() []model.Issue {
	return Merge(r.SEO.Issues, r.Accessibility.Issues, r.Performance.Issues)
}

// Scores returns the category scores with the overall score filled in.
func (r Results) Scores() model.Scores {
	return model.Scores{
		Overall:       Overall(r.SEO.Score, r.Accessibility.Score, r.Performance.Score),
		SEO:           r.SEO.Score,
		Accessibility: r.Accessibility.Score,
		Performance:   r.Performance.Score,
	}
}

// Merge concatenates issue lists as SEO, then Accessibility, then
// Performance. The result is never nil.
func Merge(seo, accessibility, performance []model.Issue) []model.Issue {
	merged := make([]model.Issue, 0, len(seo)+len(accessibility)+len(performance))
	merged = append(merged, seo...)
	merged = append(merged, accessibility...)
	merged = append(merged, performance...)
	return merged
}

// Overall returns the mean of the three category scores rounded to the
// nearest integer.
func Overall(seo, accessibility, performance int) int {
	return int(math.Round(float64(seo+accessibility+performance) / 3))
}

// CountBySeverity counts issues per severity. Issues of unknown severity are
// not counted.
func CountBySeverity(issues []model.Issue) model.IssueCounts {
	var counts model.IssueCounts
	for _, issue := range issues {
		switch issue.Severity {
		case model.SeverityHigh:
			counts.High++
		case model.SeverityMedium:
			counts.Medium++
		case model.SeverityLow:
			counts.Low++
		}
	}
	return counts
}

// PageStats combines the analyzer statistics and derives the image ratios.
// Nil statistics count as zero.
func PageStats(imagesTotal int, accessibility *model.AccessibilityStats, performance *model.PerformanceStats) model.PageStats {
	stats := model.PageStats{ImagesTotal: imagesTotal}
	if accessibility != nil {
		stats.AccessibilityStats = *accessibility
	}
	if performance != nil {
		stats.PerformanceStats = *performance
	}

	stats.AltTextCoverage = 1
	if imagesTotal > 0 {
		stats.AltTextCoverage = ratio(imagesTotal-stats.ImagesMissingAlt, imagesTotal)
		stats.LazyImageRatio = ratio(stats.ImagesLazy, imagesTotal)
	}
	return stats
}

// ratio returns part/total rounded to three decimals.
func ratio(part, total int) float64 {
	return math.Round(float64(part)/float64(total)*1000) / 1000
}

// Apply fills report from the analyzer results. issues is the merged list,
// usually enriched with suggestions; it must come from results.Issues.
func Apply(report *model.Report, results Results, issues []model.Issue) {
	if issues == nil {
		issues = make([]model.Issue, 0)
	}
	report.Issues = issues
	report.Scores = results.Scores()
	report.IssueCounts = CountBySeverity(issues)

	if results.SEO.Meta != nil {
		report.PageMeta = *results.SEO.Meta
	}
	if report.PageMeta.Headings == nil {
		report.PageMeta.Headings = make(map[string]int)
	}

	imagesTotal := max(results.Accessibility.ImagesTotal, results.Performance.ImagesTotal)
	report.PageStats = PageStats(imagesTotal, results.Accessibility.Accessibility, results.Performance.Performance)
	report.ExecutiveSummary = ExecutiveSummary(report.Scores, len(issues))
}
