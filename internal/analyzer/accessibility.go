package analyzer

import (
	"fmt"
	"strings"

	"github.com/nao1215/webpulse/internal/document"
	"github.com/nao1215/webpulse/internal/model"
)

// Accessibility thresholds.
const (
	// altSampleCount is how many offending image sources the detail names.
	altSampleCount = 3

	// altSampleLength caps each sample source.
	altSampleLength = 60

	// inlineStyleLimit is the number of style attributes tolerated.
	inlineStyleLimit = 20
)

// deprecatedTags are checked and named in this order.
var deprecatedTags = []string{"center", "font", "marquee", "blink", "frame", "frameset"}

// deadHrefs are link targets that go nowhere. Comparison happens after
// trimming whitespace.
var deadHrefs = map[string]bool{
	"":                   true,
	"#":                  true,
	"javascript:void(0)": true,
	"javascript:;":       true,
}

// unlabeledExemptTypes are input types that need no label.
var unlabeledExemptTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"reset":  true,
}

// AccessibilityAnalyzer checks assistive technology support and common
// markup defects. Its issues belong to the Accessibility and Bugs
// categories.
type AccessibilityAnalyzer struct{}

// NewAccessibilityAnalyzer creates a new AccessibilityAnalyzer.
func NewAccessibilityAnalyzer() *AccessibilityAnalyzer {
	return &AccessibilityAnalyzer{}
}

// Name returns the analyzer name.
func (a *AccessibilityAnalyzer) Name() string {
	return "accessibility"
}

// Analyze runs every accessibility rule.
func (a *AccessibilityAnalyzer) Analyze(in *Input) Result {
	doc := in.Doc
	stats := &model.AccessibilityStats{}
	issues := make([]model.Issue, 0)

	imagesTotal, imageIssues := a.checkImages(doc, stats)
	issues = append(issues, imageIssues...)
	issues = append(issues, a.checkViewport(doc)...)
	issues = append(issues, a.checkCharset(doc)...)
	issues = append(issues, a.checkLinks(doc, stats)...)
	issues = append(issues, a.checkInputs(doc, stats)...)
	issues = append(issues, a.checkButtons(doc)...)
	issues = append(issues, a.checkDeprecatedTags(doc)...)
	issues = append(issues, a.checkInlineStyles(doc)...)

	return Result{
		Score:         Score(issues),
		Issues:        issues,
		Accessibility: stats,
		ImagesTotal:   imagesTotal,
	}
}

// checkImages counts images without an alt attribute. An empty alt marks
// a decorative image and is not missing.
func (a *AccessibilityAnalyzer) checkImages(doc *document.Document, stats *model.AccessibilityStats) (int, []model.Issue) {
	images := doc.All("img")

	var samples []string
	missing := 0
	for _, img := range images {
		if img.HasAttr("alt") {
			continue
		}
		missing++
		if len(samples) < altSampleCount {
			samples = append(samples, truncateRunes(img.AttrOr("src", "unknown"), altSampleLength))
		}
	}
	stats.ImagesMissingAlt = missing

	if missing == 0 {
		return len(images), nil
	}
	return len(images), []model.Issue{model.NewIssue(model.CategoryAccessibility, model.SeverityHigh,
		fmt.Sprintf("%d image(s) missing alt text", missing),
		"Images without alt attributes hurt screen reader users and SEO. Examples: "+strings.Join(samples, ", "))}
}

func (a *AccessibilityAnalyzer) checkViewport(doc *document.Document) []model.Issue {
	if _, ok := doc.FindByAttr("meta", "name", "viewport"); ok {
		return nil
	}
	return []model.Issue{model.NewIssue(model.CategoryAccessibility, model.SeverityHigh,
		"Missing viewport meta tag",
		"No <meta name='viewport'> found. The page will not be mobile-responsive.")}
}

// checkCharset accepts either <meta charset> or an http-equiv Content-Type
// declaration.
func (a *AccessibilityAnalyzer) checkCharset(doc *document.Document) []model.Issue {
	declared := doc.Filter("meta", func(e document.Element) bool {
		if e.HasAttr("charset") {
			return true
		}
		return strings.EqualFold(e.AttrOr("http-equiv", ""), "Content-Type")
	})
	if len(declared) > 0 {
		return nil
	}
	return []model.Issue{model.NewIssue(model.CategoryBugs, model.SeverityMedium,
		"Missing charset declaration",
		"No charset meta tag found. This can cause character encoding issues across browsers.")}
}

func (a *AccessibilityAnalyzer) checkLinks(doc *document.Document, stats *model.AccessibilityStats) []model.Issue {
	links := doc.All("a")

	dead, textless := 0, 0
	for _, link := range links {
		href, ok := link.Attr("href")
		if !ok || deadHrefs[strings.TrimSpace(href)] {
			dead++
		}
		if link.Text() == "" && !link.HasDescendant("img") {
			textless++
		}
	}
	stats.LinksTotal = len(links)
	stats.EmptyLinks = dead

	issues := make([]model.Issue, 0, 2)
	if dead > 0 {
		issues = append(issues, model.NewIssue(model.CategoryBugs, model.SeverityMedium,
			fmt.Sprintf("%d link(s) with no destination", dead),
			"Links pointing to '#' or 'javascript:void(0)' create broken UX and confuse screen readers."))
	}
	if textless > 0 {
		issues = append(issues, model.NewIssue(model.CategoryAccessibility, model.SeverityMedium,
			fmt.Sprintf("%d link(s) with no visible text or image", textless),
			"Links must have descriptive text or an image with alt text so screen readers can identify them."))
	}
	return issues
}

// checkInputs finds form inputs with no label. An input is labeled by a
// <label for> matching its id, a non-empty aria-label or a non-empty
// placeholder. Inputs without a type default to text.
func (a *AccessibilityAnalyzer) checkInputs(doc *document.Document, stats *model.AccessibilityStats) []model.Issue {
	labelFor := make(map[string]bool)
	for _, label := range doc.All("label") {
		if target := label.AttrOr("for", ""); target != "" {
			labelFor[target] = true
		}
	}

	total, unlabeled := 0, 0
	for _, input := range doc.All("input") {
		inputType := strings.ToLower(strings.TrimSpace(input.AttrOr("type", "text")))
		if unlabeledExemptTypes[inputType] {
			continue
		}
		total++

		if id := input.AttrOr("id", ""); id != "" && labelFor[id] {
			continue
		}
		if input.AttrOr("aria-label", "") != "" || input.AttrOr("placeholder", "") != "" {
			continue
		}
		unlabeled++
	}
	stats.InputsTotal = total
	stats.InputsUnlabeled = unlabeled

	if unlabeled == 0 {
		return nil
	}
	return []model.Issue{model.NewIssue(model.CategoryAccessibility, model.SeverityHigh,
		fmt.Sprintf("%d form input(s) without labels", unlabeled),
		"Form inputs must have associated <label> elements or aria-label attributes for accessibility compliance.")}
}

func (a *AccessibilityAnalyzer) checkButtons(doc *document.Document) []model.Issue {
	empty := doc.Filter("button", func(b document.Element) bool {
		return b.Text() == "" && !b.HasDescendant("img") && b.AttrOr("aria-label", "") == ""
	})
	if len(empty) == 0 {
		return nil
	}
	return []model.Issue{model.NewIssue(model.CategoryAccessibility, model.SeverityMedium,
		fmt.Sprintf("%d button(s) with no accessible label", len(empty)),
		"Buttons must contain text or have an aria-label so assistive technology can describe their purpose.")}
}

func (a *AccessibilityAnalyzer) checkDeprecatedTags(doc *document.Document) []model.Issue {
	var found []string
	for _, tag := range deprecatedTags {
		if doc.Has(tag) {
			found = append(found, "<"+tag+">")
		}
	}
	if len(found) == 0 {
		return nil
	}
	return []model.Issue{model.NewIssue(model.CategoryBugs, model.SeverityMedium,
		"Deprecated HTML tags found: "+strings.Join(found, ", "),
		"Deprecated HTML elements are not supported in modern browsers and indicate outdated code.")}
}

func (a *AccessibilityAnalyzer) checkInlineStyles(doc *document.Document) []model.Issue {
	count := len(doc.WithAttr("style"))
	if count <= inlineStyleLimit {
		return nil
	}
	return []model.Issue{model.NewIssue(model.CategoryBugs, model.SeverityLow,
		fmt.Sprintf("Excessive inline styles (%d elements)", count),
		"Heavy use of inline styles makes maintenance difficult and increases page weight. Use CSS classes instead.")}
}
