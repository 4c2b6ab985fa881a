package model

// Category groups issues by the area of quality they affect.
type Category string

const (
	// CategorySEO covers search engine visibility signals.
	CategorySEO Category = "SEO"

	// CategoryAccessibility covers issues affecting assistive technology users.
	CategoryAccessibility Category = "Accessibility"

	// CategoryBugs covers markup and code quality defects.
	CategoryBugs Category = "Bugs"

	// CategoryPerformance covers transport and loading performance.
	CategoryPerformance Category = "Performance"
)

// Issue is a single defect found on the audited page.
//
// Title is a short, stable label. The suggestion enricher matches on it,
// so analyzers must keep their title wording stable across releases.
type Issue struct {
	// Category is the area of quality the issue belongs to.
	Category Category `json:"category"`

	// Severity determines the score deduction.
	Severity Severity `json:"severity"`

	// Title is the short human-readable label.
	Title string `json:"title"`

	// Detail is the technical explanation, possibly with measured values.
	Detail string `json:"detail"`

	// Suggestion is the remediation text. Empty until enriched.
	Suggestion string `json:"suggestion"`
}

// NewIssue creates an Issue without a suggestion.
func NewIssue(category Category, severity Severity, title, detail string) Issue {
	return Issue{
		Category: category,
		Severity: severity,
		Title:    title,
		Detail:   detail,
	}
}

// Valid reports whether the issue satisfies the model invariant:
// category, severity and title are set and the severity is known.
func (i Issue) Valid() bool {
	return i.Category != "" && i.Title != "" && i.Severity != SeverityUnknown
}
