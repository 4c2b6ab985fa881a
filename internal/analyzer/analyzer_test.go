package analyzer

import (
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/webpulse/internal/document"
	"github.com/nao1215/webpulse/internal/model"
)

const (
	testDescription = "A practical guide to auditing web pages for search, accessibility and speed."

	// cleanHead satisfies every head-level rule of all three analyzers.
	cleanHead = `<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Webpulse audit fixture page</title>
<meta name="description" content="` + testDescription + `">
<link rel="canonical" href="https://example.com/">
<meta property="og:title" content="Fixture">
<meta property="og:description" content="Fixture description">
<meta property="og:image" content="https://example.com/og.png">
<link rel="icon" href="/favicon.ico">`

	cleanBody = `<h1>Welcome</h1><h2>Section</h2><p>Body text.</p>`
)

// page wraps head and body in a document with a lang attribute.
func page(head, body string) string {
	return `<!DOCTYPE html><html lang="en"><head>` + head + `</head><body>` + body + `</body></html>`
}

// newInput builds an https Input with a fast response time.
func newInput(markup string) *Input {
	return &Input{
		Doc:            document.Parse([]byte(markup)),
		URL:            "https://example.com/",
		ResponseTimeMs: 200,
		SizeBytes:      len(markup),
	}
}

func titles(issues []model.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Title)
	}
	return out
}

func findIssue(issues []model.Issue, prefix string) (model.Issue, bool) {
	for _, issue := range issues {
		if strings.HasPrefix(issue.Title, prefix) {
			return issue, true
		}
	}
	return model.Issue{}, false
}

func countPrefix(issues []model.Issue, prefix string) int {
	n := 0
	for _, issue := range issues {
		if strings.HasPrefix(issue.Title, prefix) {
			n++
		}
	}
	return n
}

func TestScore(t *testing.T) {
	t.Parallel()

	high := model.NewIssue(model.CategorySEO, model.SeverityHigh, "h", "")
	medium := model.NewIssue(model.CategorySEO, model.SeverityMedium, "m", "")
	low := model.NewIssue(model.CategorySEO, model.SeverityLow, "l", "")
	unknown := model.NewIssue(model.CategorySEO, model.SeverityUnknown, "u", "")

	tests := []struct {
		name   string
		issues []model.Issue
		want   int
	}{
		{name: "no issues", issues: nil, want: 100},
		{name: "one of each", issues: []model.Issue{high, medium, low}, want: 65},
		{name: "unknown deducts like low", issues: []model.Issue{unknown}, want: 95},
		{name: "exactly zero", issues: []model.Issue{high, high, high, high, high}, want: 0},
		{name: "clamped at zero", issues: []model.Issue{high, high, high, high, high, high, medium}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Score(tt.issues); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	analyzers := Defaults()
	want := []string{"seo", "accessibility", "performance"}
	if len(analyzers) != len(want) {
		t.Fatalf("expected %d analyzers, got %d", len(want), len(analyzers))
	}
	for i, a := range analyzers {
		if a.Name() != want[i] {
			t.Errorf("analyzer %d = %q, want %q", i, a.Name(), want[i])
		}
	}
}

// TestAnalyzersCleanPage checks that a well-formed page scores 100 everywhere.
func TestAnalyzersCleanPage(t *testing.T) {
	t.Parallel()

	in := newInput(page(cleanHead, cleanBody))
	for _, a := range Defaults() {
		result := a.Analyze(in)
		if len(result.Issues) != 0 {
			t.Errorf("%s: expected no issues, got %v", a.Name(), titles(result.Issues))
		}
		if result.Score != MaxScore {
			t.Errorf("%s: expected score 100, got %d", a.Name(), result.Score)
		}
	}
}

// TestAnalyzersEmptyDocument runs all analyzers over a bare skeleton.
func TestAnalyzersEmptyDocument(t *testing.T) {
	t.Parallel()

	in := newInput(`<html><head></head><body></body></html>`)

	seo := NewSEOAnalyzer().Analyze(in)
	wantSEO := []string{
		"Missing page title",
		"Missing meta description",
		"Missing H1 tag",
		"Missing canonical tag",
		"Incomplete Open Graph tags",
		"Missing lang attribute on <html>",
	}
	if !reflect.DeepEqual(titles(seo.Issues), wantSEO) {
		t.Errorf("seo issues = %v, want %v", titles(seo.Issues), wantSEO)
	}
	if seo.Score > 30 {
		t.Errorf("expected seo <= 30, got %d", seo.Score)
	}
	if seo.Score != 15 {
		t.Errorf("expected seo 15, got %d", seo.Score)
	}

	a11y := NewAccessibilityAnalyzer().Analyze(in)
	wantA11y := []string{"Missing viewport meta tag", "Missing charset declaration"}
	if !reflect.DeepEqual(titles(a11y.Issues), wantA11y) {
		t.Errorf("accessibility issues = %v, want %v", titles(a11y.Issues), wantA11y)
	}
	if a11y.Score != 70 {
		t.Errorf("expected accessibility 70, got %d", a11y.Score)
	}

	perf := NewPerformanceAnalyzer().Analyze(in)
	if !reflect.DeepEqual(titles(perf.Issues), []string{"No favicon found"}) {
		t.Errorf("performance issues = %v", titles(perf.Issues))
	}
	if perf.Score != 95 {
		t.Errorf("expected performance 95, got %d", perf.Score)
	}
}

// TestAnalyzersScoreMatchesIssues verifies every analyzer applies the shared
// deduction formula to the issues it returns.
func TestAnalyzersScoreMatchesIssues(t *testing.T) {
	t.Parallel()

	markups := []string{
		`<html><head></head><body></body></html>`,
		page(cleanHead, cleanBody),
		`<p>fragment <img src="x.png"> <a href="#"></a> <center>old</center>`,
		page(`<title>short</title><script src="a.js"></script>`, `<h1>a</h1><h1>b</h1><h4>c</h4><input name="q">`),
	}

	for _, markup := range markups {
		in := newInput(markup)
		in.URL = "http://example.com/"
		in.ResponseTimeMs = 2000
		for _, a := range Defaults() {
			result := a.Analyze(in)

			deducted := MaxScore
			for _, issue := range result.Issues {
				deducted -= issue.Severity.Deduction()
			}
			want := max(MinScore, deducted)
			if result.Score != want {
				t.Errorf("%s: score %d, want %d for %v", a.Name(), result.Score, want, titles(result.Issues))
			}
			for _, issue := range result.Issues {
				if !issue.Valid() {
					t.Errorf("%s: invalid issue %+v", a.Name(), issue)
				}
				if issue.Suggestion != "" {
					t.Errorf("%s: analyzer must not fill suggestions", a.Name())
				}
			}
		}
	}
}

func TestAnalyzersIdempotent(t *testing.T) {
	t.Parallel()

	in := newInput(page(`<title>x</title><script src="a.js"></script>`,
		`<h1>a</h1><h3>b</h3><img src="a.png"><img src="b.png"><img src="c.png"><img src="d.png"><a href="#"></a>`))

	for _, a := range Defaults() {
		first := a.Analyze(in)
		second := a.Analyze(in)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s: results differ between runs:\n%+v\n%+v", a.Name(), first, second)
		}
	}
}

func TestAnalyzersConcurrent(t *testing.T) {
	t.Parallel()

	in := newInput(page(cleanHead, cleanBody+`<img src="a.png"><a href="#">top</a>`))
	want := make(map[string]Result)
	for _, a := range Defaults() {
		want[a.Name()] = a.Analyze(in)
	}

	var wg sync.WaitGroup
	for range 8 {
		for _, a := range Defaults() {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if got := a.Analyze(in); !reflect.DeepEqual(got, want[a.Name()]) {
					t.Errorf("%s: concurrent result differs", a.Name())
				}
			}()
		}
	}
	wg.Wait()
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	if got := truncateRunes("héllo", 2); got != "hé" {
		t.Errorf("truncateRunes() = %q", got)
	}
	if got := truncateRunes("abc", 10); got != "abc" {
		t.Errorf("truncateRunes() = %q", got)
	}
	if got := runeLen("日本語"); got != 3 {
		t.Errorf("runeLen() = %d", got)
	}
}
