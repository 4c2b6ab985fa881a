package analyzer

import (
	"github.com/nao1215/webpulse/internal/document"
	"github.com/nao1215/webpulse/internal/model"
)

// Score bounds.
const (
	MaxScore = 100
	MinScore = 0
)

// Input is everything an analyzer may look at.
type Input struct {
	// Doc is the parsed page. Analyzers must only read it.
	Doc *document.Document

	// URL is the audited URL as requested, before redirects.
	URL string

	// ResponseTimeMs is the fetch wall time.
	ResponseTimeMs float64

	// SizeBytes is the size of the decoded markup.
	SizeBytes int
}

// Result is the output of one analyzer. Only the statistics block owned
// by the analyzer is set; the others stay nil.
type Result struct {
	// Score is in [MinScore, MaxScore].
	Score int

	// Issues are in rule evaluation order.
	Issues []model.Issue

	// Meta is set by the SEO analyzer.
	Meta *model.PageMeta

	// Accessibility is set by the accessibility analyzer.
	Accessibility *model.AccessibilityStats

	// Performance is set by the performance analyzer.
	Performance *model.PerformanceStats

	// ImagesTotal is the number of <img> elements. Set by the accessibility
	// and performance analyzers.
	ImagesTotal int
}

// Analyzer is one independent rule set.
type Analyzer interface {
	// Name identifies the analyzer in logs and errors.
	Name() string

	// Analyze evaluates every rule against in. It must not mutate in.
	Analyze(in *Input) Result
}

// Defaults returns the three analyzers in canonical merge order:
// SEO, Accessibility, Performance.
func Defaults() []Analyzer {
	return []Analyzer{
		NewSEOAnalyzer(),
		NewAccessibilityAnalyzer(),
		NewPerformanceAnalyzer(),
	}
}

// Score computes clamp(100 - Σ deduction, 0, 100) over issues.
func Score(issues []model.Issue) int {
	score := MaxScore
	for _, issue := range issues {
		score -= issue.Severity.Deduction()
	}
	return max(MinScore, min(MaxScore, score))
}

// runeLen counts characters rather than bytes, so length rules behave the
// same for non-ASCII titles.
func runeLen(s string) int {
	return len([]rune(s))
}

// truncateRunes shortens s to at most n characters.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
