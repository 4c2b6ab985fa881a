package model

import (
	"sort"
	"time"
)

// Report is the complete result of auditing one URL.
// It is created once per scan by the pipeline, fully populated before it is
// returned, and treated as immutable afterwards. The API layer, the scan
// history and the report writers consume it verbatim.
//
// Design decision: We use one flat struct with nested value types rather
// than pointers so that a degraded report (fetch failure) still has every
// field present with a zero value. Renderers never need to special-case a
// missing section.
type Report struct {
	// URL is the audited URL as given to the pipeline (already normalized).
	URL string `json:"url"`

	// FetchedAt is when the scan started.
	FetchedAt time.Time `json:"fetchedAt"`

	// ResponseTimeMs is the elapsed fetch time, rounded to 0.1ms.
	ResponseTimeMs float64 `json:"responseTimeMs"`

	// StatusCode is the HTTP status of the final response.
	// It is nil when retrieval failed before a response was received.
	StatusCode *int `json:"statusCode,omitempty"`

	// Scores holds the per-category and overall scores.
	Scores Scores `json:"scores"`

	// IssueCounts counts Issues per severity.
	IssueCounts IssueCounts `json:"issueCounts"`

	// Issues are ordered SEO, then Accessibility, then Performance.
	// They are not sorted by severity.
	Issues []Issue `json:"issues"`

	// PageMeta holds SEO metadata extracted from the page.
	PageMeta PageMeta `json:"pageMeta"`

	// PageStats holds element counts and derived ratios.
	PageStats PageStats `json:"pageStats"`

	// ExecutiveSummary is a one-paragraph plain-English summary.
	ExecutiveSummary string `json:"executiveSummary"`

	// Error is set on degraded reports and carries an advisory message when
	// the server answered with an error status.
	Error string `json:"error,omitempty"`
}

// Scores holds category scores in the range [0,100].
type Scores struct {
	Overall       int `json:"overall"`
	SEO           int `json:"seo"`
	Accessibility int `json:"accessibility"`
	Performance   int `json:"performance"`
}

// IssueCounts counts issues per severity.
type IssueCounts struct {
	High   int `json:"High"`   //nolint:tagliatelle // severity names are the keys
	Medium int `json:"Medium"` //nolint:tagliatelle // severity names are the keys
	Low    int `json:"Low"`    //nolint:tagliatelle // severity names are the keys
}

// Total returns the sum of all counts.
func (c IssueCounts) Total() int {
	return c.High + c.Medium + c.Low
}

// Get returns the count for a severity.
func (c IssueCounts) Get(s Severity) int {
	switch s {
	case SeverityHigh:
		return c.High
	case SeverityMedium:
		return c.Medium
	case SeverityLow:
		return c.Low
	default:
		return 0
	}
}

// PageMeta holds SEO metadata. Empty strings mean "not present".
type PageMeta struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	H1            string `json:"h1"`
	Canonical     string `json:"canonical"`
	OGTitle       string `json:"ogTitle"`
	OGDescription string `json:"ogDescription"`
	OGImage       string `json:"ogImage"`

	// Headings maps "h1".."h6" to their element counts.
	Headings map[string]int `json:"headings"`
}

// AccessibilityStats is gathered by the accessibility analyzer.
type AccessibilityStats struct {
	ImagesMissingAlt int `json:"imagesMissingAlt"`
	LinksTotal       int `json:"linksTotal"`
	EmptyLinks       int `json:"emptyLinks"`
	InputsTotal      int `json:"inputsTotal"`
	InputsUnlabeled  int `json:"inputsUnlabeled"`
}

// PerformanceStats is gathered by the performance analyzer.
type PerformanceStats struct {
	PageSizeKB            float64 `json:"pageSizeKb"`
	ResponseTimeMs        float64 `json:"responseTimeMs"`
	RenderBlockingScripts int     `json:"renderBlockingScripts"`
	ExternalStylesheets   int     `json:"externalStylesheets"`
	ExternalScripts       int     `json:"externalScripts"`
	ImagesLazy            int     `json:"imagesLazy"`
}

// PageStats combines the statistics of the accessibility and performance
// analyzers with a few derived ratios. Both analyzers count images, so the
// total lives here once.
type PageStats struct {
	ImagesTotal int `json:"imagesTotal"`

	AccessibilityStats
	PerformanceStats

	// AltTextCoverage is the share of images that carry an alt attribute.
	// It is 1 when the page has no images.
	AltTextCoverage float64 `json:"altTextCoverage"`

	// LazyImageRatio is the share of images using loading="lazy".
	LazyImageRatio float64 `json:"lazyImageRatio"`
}

// NewReport creates an empty report for url stamped with the current time.
func NewReport(url string) *Report {
	return &Report{
		URL:       url,
		FetchedAt: time.Now(),
		Issues:    make([]Issue, 0),
		PageMeta: PageMeta{
			Headings: make(map[string]int),
		},
	}
}

// Degrade turns the report into the degraded shape used for failed scans:
// no issues, zero scores and counts, and msg as the error.
// StatusCode and timing are left untouched.
func (r *Report) Degrade(msg string) {
	r.Error = msg
	r.Issues = make([]Issue, 0)
	r.Scores = Scores{}
	r.IssueCounts = IssueCounts{}
	r.ExecutiveSummary = ""
}

// Failed reports whether the report is degraded, meaning the scan produced
// no analysis at all.
func (r *Report) Failed() bool {
	return r.Error != "" && len(r.Issues) == 0 && r.Scores == (Scores{})
}

// SetStatusCode records the HTTP status code.
func (r *Report) SetStatusCode(code int) {
	r.StatusCode = &code
}

// IssuesBySeverity returns the issues of one severity in report order.
func (r *Report) IssuesBySeverity(s Severity) []Issue {
	var result []Issue
	for _, issue := range r.Issues {
		if issue.Severity == s {
			result = append(result, issue)
		}
	}
	return result
}

// SortedIssues returns a copy of the issues ordered High to Low.
// Issues of equal severity keep their report order.
func (r *Report) SortedIssues() []Issue {
	sorted := make([]Issue, len(r.Issues))
	copy(sorted, r.Issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity > sorted[j].Severity
	})
	return sorted
}
