package analyzer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nao1215/webpulse/internal/document"
	"github.com/nao1215/webpulse/internal/model"
)

// Performance thresholds.
const (
	slowResponseMs = 3000
	highResponseMs = 1500

	veryLargeKB = 500
	largeKB     = 150

	// More blocking scripts than this escalate the issue to High.
	blockingScriptsHigh = 3

	stylesheetLimit = 6
	scriptLimit     = 10

	// The lazy loading rule needs more images than this to apply.
	lazyImageMinimum = 3

	// An inline style block longer than unminifiedChars characters with more
	// than unminifiedNewlines line breaks looks unminified.
	unminifiedChars    = 2000
	unminifiedNewlines = 50
)

// PerformanceAnalyzer estimates loading performance from the markup and
// the fetch metadata.
type PerformanceAnalyzer struct{}

// NewPerformanceAnalyzer creates a new PerformanceAnalyzer.
func NewPerformanceAnalyzer() *PerformanceAnalyzer {
	return &PerformanceAnalyzer{}
}

// Name returns the analyzer name.
func (a *PerformanceAnalyzer) Name() string {
	return "performance"
}

// Analyze runs every performance rule.
func (a *PerformanceAnalyzer) Analyze(in *Input) Result {
	doc := in.Doc
	stats := &model.PerformanceStats{}
	issues := make([]model.Issue, 0)

	issues = append(issues, a.checkHTTPS(in.URL)...)
	issues = append(issues, a.checkResponseTime(in.ResponseTimeMs, stats)...)
	issues = append(issues, a.checkSize(in.SizeBytes, stats)...)
	issues = append(issues, a.checkRenderBlocking(doc, stats)...)
	issues = append(issues, a.checkStylesheets(doc, stats)...)
	issues = append(issues, a.checkScripts(doc, stats)...)
	imagesTotal, lazyIssues := a.checkLazyLoading(doc, stats)
	issues = append(issues, lazyIssues...)
	issues = append(issues, a.checkInlineCSS(doc)...)
	issues = append(issues, a.checkFavicon(doc)...)

	return Result{
		Score:       Score(issues),
		Issues:      issues,
		Performance: stats,
		ImagesTotal: imagesTotal,
	}
}

func (a *PerformanceAnalyzer) checkHTTPS(rawURL string) []model.Issue {
	if !strings.HasPrefix(strings.ToLower(rawURL), "http://") {
		return nil
	}
	return []model.Issue{model.NewIssue(model.CategoryPerformance, model.SeverityHigh,
		"Site not served over HTTPS",
		"The page uses HTTP instead of HTTPS. This hurts SEO rankings and trust, and browsers flag it as insecure.")}
}

func (a *PerformanceAnalyzer) checkResponseTime(ms float64, stats *model.PerformanceStats) []model.Issue {
	stats.ResponseTimeMs = math.Round(ms*10) / 10

	switch {
	case ms > slowResponseMs:
		return []model.Issue{model.NewIssue(model.CategoryPerformance, model.SeverityHigh,
			fmt.Sprintf("Slow server response time (%.0fms)", ms),
			"Server responded in over 3 seconds. Target under 600ms. Investigate server resources, caching, and CDN.")}
	case ms > highResponseMs:
		return []model.Issue{model.NewIssue(model.CategoryPerformance, model.SeverityMedium,
			fmt.Sprintf("High server response time (%.0fms)", ms),
			"Server responded in over 1.5 seconds. Consider caching, CDN, or server optimisation to improve TTFB.")}
	}
	return nil
}

// checkSize compares the size rounded to 0.1 KB, which is also the value
// shown in the title.
func (a *PerformanceAnalyzer) checkSize(sizeBytes int, stats *model.PerformanceStats) []model.Issue {
	kb := math.Round(float64(sizeBytes)/1024*10) / 10
	stats.PageSizeKB = kb
	label := strconv.FormatFloat(kb, 'f', 1, 64)

	switch {
	case kb > veryLargeKB:
		return []model.Issue{model.NewIssue(model.CategoryPerformance, model.SeverityHigh,
			fmt.Sprintf("HTML document is very large (%s KB)", label),
			"The HTML alone exceeds 500KB. Large pages slow initial load. Consider server-side rendering, lazy loading content, or pagination.")}
	case kb > largeKB:
		return []model.Issue{model.NewIssue(model.CategoryPerformance, model.SeverityMedium,
			fmt.Sprintf("HTML document is large (%s KB)", label),
			"HTML exceeds 150KB. Look for embedded inline scripts, SVGs, or data that could be moved to external files.")}
	}
	return nil
}

// checkRenderBlocking counts external scripts in <head> that carry neither
// defer nor async.
func (a *PerformanceAnalyzer) checkRenderBlocking(doc *document.Document, stats *model.PerformanceStats) []model.Issue {
	blocking := 0
	for _, script := range doc.Within("head", "script") {
		if script.HasAttr("src") && !script.HasAttr("defer") && !script.HasAttr("async") {
			blocking++
		}
	}
	stats.RenderBlockingScripts = blocking

	if blocking == 0 {
		return nil
	}
	severity := model.SeverityMedium
	if blocking > blockingScriptsHigh {
		severity = model.SeverityHigh
	}
	return []model.Issue{model.NewIssue(model.CategoryPerformance, severity,
		fmt.Sprintf("%d render-blocking script(s) in <head>", blocking),
		"Scripts without async/defer in <head> block page rendering. Add 'defer' or move them before </body>.")}
}

func (a *PerformanceAnalyzer) checkStylesheets(doc *document.Document, stats *model.PerformanceStats) []model.Issue {
	count := len(doc.WithRel("link", "stylesheet"))
	stats.ExternalStylesheets = count

	if count <= stylesheetLimit {
		return nil
	}
	return []model.Issue{model.NewIssue(model.CategoryPerformance, model.SeverityMedium,
		fmt.Sprintf("Many external stylesheets (%d)", count),
		"Too many CSS files increase HTTP requests. Consider bundling or using a build tool like Webpack/Vite.")}
}

func (a *PerformanceAnalyzer) checkScripts(doc *document.Document, stats *model.PerformanceStats) []model.Issue {
	count := len(doc.Filter("script", func(e document.Element) bool {
		return e.HasAttr("src")
	}))
	stats.ExternalScripts = count

	if count <= scriptLimit {
		return nil
	}
	return []model.Issue{model.NewIssue(model.CategoryPerformance, model.SeverityMedium,
		fmt.Sprintf("High number of external scripts (%d)", count),
		"Many external scripts increase page weight and introduce third-party latency. Audit and remove unused scripts.")}
}

func (a *PerformanceAnalyzer) checkLazyLoading(doc *document.Document, stats *model.PerformanceStats) (int, []model.Issue) {
	images := doc.All("img")
	lazy := 0
	for _, img := range images {
		if img.AttrOr("loading", "") == "lazy" {
			lazy++
		}
	}
	stats.ImagesLazy = lazy

	if len(images) <= lazyImageMinimum || lazy > 0 {
		return len(images), nil
	}
	return len(images), []model.Issue{model.NewIssue(model.CategoryPerformance, model.SeverityMedium,
		"No images use lazy loading",
		fmt.Sprintf("Found %d images but none use loading='lazy'. Lazy loading improves initial page load time significantly.", len(images)))}
}

// checkInlineCSS reports at most one issue however many style blocks look
// unminified.
func (a *PerformanceAnalyzer) checkInlineCSS(doc *document.Document) []model.Issue {
	for _, style := range doc.All("style") {
		css := style.RawText()
		if runeLen(css) > unminifiedChars && strings.Count(css, "\n") > unminifiedNewlines {
			return []model.Issue{model.NewIssue(model.CategoryPerformance, model.SeverityLow,
				"Inline CSS appears unminified",
				"Large inline <style> blocks could be minified to reduce page size. Consider using a CSS minifier.")}
		}
	}
	return nil
}

// checkFavicon accepts any link whose rel mentions "icon", such as
// "shortcut icon" or "apple-touch-icon".
func (a *PerformanceAnalyzer) checkFavicon(doc *document.Document) []model.Issue {
	if len(doc.RelContains("link", "icon")) > 0 {
		return nil
	}
	return []model.Issue{model.NewIssue(model.CategoryPerformance, model.SeverityLow,
		"No favicon found",
		"Missing favicon causes an extra 404 request on every page load and reduces brand presence in browser tabs.")}
}
