package analyzer

import (
	"fmt"
	"strings"

	"github.com/nao1215/webpulse/internal/document"
	"github.com/nao1215/webpulse/internal/model"
)

// SEO thresholds. Bounds are strict: a value equal to a bound does not
// trigger the issue.
const (
	titleMinLength       = 10
	titleMaxLength       = 70
	descriptionMinLength = 50
	descriptionMaxLength = 165
)

// openGraphProperties are checked in this order and named in this order.
var openGraphProperties = []string{"og:title", "og:description", "og:image"}

// SEOAnalyzer checks search engine visibility signals and extracts page
// metadata.
type SEOAnalyzer struct{}

// NewSEOAnalyzer creates a new SEOAnalyzer.
func NewSEOAnalyzer() *SEOAnalyzer {
	return &SEOAnalyzer{}
}

// Name returns the analyzer name.
func (a *SEOAnalyzer) Name() string {
	return "seo"
}

// Analyze runs every SEO rule.
func (a *SEOAnalyzer) Analyze(in *Input) Result {
	doc := in.Doc
	meta := &model.PageMeta{Headings: make(map[string]int)}
	issues := make([]model.Issue, 0)

	issues = append(issues, a.checkTitle(doc, meta)...)
	issues = append(issues, a.checkDescription(doc, meta)...)
	issues = append(issues, a.checkH1(doc, meta)...)
	issues = append(issues, a.checkHeadingHierarchy(doc, meta)...)
	issues = append(issues, a.checkCanonical(doc, meta)...)
	issues = append(issues, a.checkOpenGraph(doc, meta)...)
	issues = append(issues, a.checkRobots(doc)...)
	issues = append(issues, a.checkLang(doc)...)

	return Result{
		Score:  Score(issues),
		Issues: issues,
		Meta:   meta,
	}
}

func (a *SEOAnalyzer) checkTitle(doc *document.Document, meta *model.PageMeta) []model.Issue {
	title, ok := doc.First("title")
	if !ok || title.Text() == "" {
		return []model.Issue{model.NewIssue(model.CategorySEO, model.SeverityHigh,
			"Missing page title",
			"No <title> tag found in the <head> section.")}
	}

	text := title.Text()
	meta.Title = text

	switch n := runeLen(text); {
	case n < titleMinLength:
		return []model.Issue{model.NewIssue(model.CategorySEO, model.SeverityMedium,
			"Page title too short",
			fmt.Sprintf("Title is only %d characters. Aim for 50–60.", n))}
	case n > titleMaxLength:
		return []model.Issue{model.NewIssue(model.CategorySEO, model.SeverityLow,
			"Page title too long",
			fmt.Sprintf("Title is %d characters. Keep it under 70 to avoid truncation in SERPs.", n))}
	}
	return nil
}

func (a *SEOAnalyzer) checkDescription(doc *document.Document, meta *model.PageMeta) []model.Issue {
	tag, ok := doc.FindByAttr("meta", "name", "description")
	text := strings.TrimSpace(tag.AttrOr("content", ""))
	if !ok || text == "" {
		return []model.Issue{model.NewIssue(model.CategorySEO, model.SeverityHigh,
			"Missing meta description",
			"No meta description tag found. Search engines use this as the page snippet.")}
	}

	meta.Description = text

	switch n := runeLen(text); {
	case n < descriptionMinLength:
		return []model.Issue{model.NewIssue(model.CategorySEO, model.SeverityMedium,
			"Meta description too short",
			fmt.Sprintf("Meta description is only %d characters. Aim for 120–160.", n))}
	case n > descriptionMaxLength:
		return []model.Issue{model.NewIssue(model.CategorySEO, model.SeverityLow,
			"Meta description too long",
			fmt.Sprintf("Meta description is %d characters. Keep it under 165 to prevent truncation.", n))}
	}
	return nil
}

func (a *SEOAnalyzer) checkH1(doc *document.Document, meta *model.PageMeta) []model.Issue {
	h1s := doc.All("h1")
	switch {
	case len(h1s) == 0:
		return []model.Issue{model.NewIssue(model.CategorySEO, model.SeverityHigh,
			"Missing H1 tag",
			"No H1 heading found on the page. Every page needs exactly one H1.")}
	case len(h1s) > 1:
		meta.H1 = h1s[0].Text()
		return []model.Issue{model.NewIssue(model.CategorySEO, model.SeverityMedium,
			"Multiple H1 tags",
			fmt.Sprintf("Found %d H1 tags. Use exactly one H1 per page.", len(h1s)))}
	default:
		meta.H1 = h1s[0].Text()
		return nil
	}
}

// checkHeadingHierarchy records the count of every heading level and
// reports the first gap between consecutive levels that are present.
// Later gaps are not reported.
func (a *SEOAnalyzer) checkHeadingHierarchy(doc *document.Document, meta *model.PageMeta) []model.Issue {
	present := make([]int, 0, 6)
	for level := 1; level <= 6; level++ {
		tag := fmt.Sprintf("h%d", level)
		count := doc.Count(tag)
		meta.Headings[tag] = count
		if count > 0 {
			present = append(present, level)
		}
	}

	for i := 0; i+1 < len(present); i++ {
		from, to := present[i], present[i+1]
		if to-from > 1 {
			return []model.Issue{model.NewIssue(model.CategorySEO, model.SeverityLow,
				fmt.Sprintf("Heading hierarchy skips H%d", from+1),
				fmt.Sprintf("Heading jumps from H%d to H%d. Use sequential headings for accessibility and SEO.", from, to))}
		}
	}
	return nil
}

func (a *SEOAnalyzer) checkCanonical(doc *document.Document, meta *model.PageMeta) []model.Issue {
	links := doc.WithRel("link", "canonical")
	if len(links) == 0 {
		return []model.Issue{model.NewIssue(model.CategorySEO, model.SeverityLow,
			"Missing canonical tag",
			"No <link rel='canonical'> found. Canonical tags prevent duplicate content issues.")}
	}
	meta.Canonical = links[0].AttrOr("href", "")
	return nil
}

// checkOpenGraph treats a property as present when its meta tag exists,
// whatever its content.
func (a *SEOAnalyzer) checkOpenGraph(doc *document.Document, meta *model.PageMeta) []model.Issue {
	values := make(map[string]string, len(openGraphProperties))
	var missing []string
	for _, property := range openGraphProperties {
		tag, ok := doc.FindByAttr("meta", "property", property)
		if !ok {
			missing = append(missing, property)
			continue
		}
		values[property] = tag.AttrOr("content", "")
	}

	meta.OGTitle = values["og:title"]
	meta.OGDescription = values["og:description"]
	meta.OGImage = values["og:image"]

	if len(missing) == 0 {
		return nil
	}
	return []model.Issue{model.NewIssue(model.CategorySEO, model.SeverityMedium,
		"Incomplete Open Graph tags",
		fmt.Sprintf("Missing Open Graph properties: %s. These affect how your page appears when shared on social media.",
			strings.Join(missing, ", ")))}
}

func (a *SEOAnalyzer) checkRobots(doc *document.Document) []model.Issue {
	robots, ok := doc.FindByAttr("meta", "name", "robots")
	if !ok || !strings.Contains(strings.ToLower(robots.AttrOr("content", "")), "noindex") {
		return nil
	}
	return []model.Issue{model.NewIssue(model.CategorySEO, model.SeverityHigh,
		"Page set to noindex",
		"The robots meta tag is set to 'noindex', preventing search engines from indexing this page.")}
}

// checkLang reports an absent or empty lang attribute. The issue counts
// against the SEO score although its category is Accessibility.
// The parser synthesizes <html> for fragments, so a fragment without an
// <html> tag is reported as missing lang too.
func (a *SEOAnalyzer) checkLang(doc *document.Document) []model.Issue {
	html, ok := doc.First("html")
	if !ok || html.AttrOr("lang", "") != "" {
		return nil
	}
	return []model.Issue{model.NewIssue(model.CategoryAccessibility, model.SeverityMedium,
		"Missing lang attribute on <html>",
		"The <html> tag has no 'lang' attribute. This is important for screen readers and SEO.")}
}
