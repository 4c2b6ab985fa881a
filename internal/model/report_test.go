package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewReport(t *testing.T) {
	t.Parallel()

	r := NewReport("https://example.com")

	if r.URL != "https://example.com" {
		t.Errorf("URL = %q", r.URL)
	}
	if r.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}
	if r.Issues == nil {
		t.Error("Issues should be an empty slice, not nil")
	}
	if r.PageMeta.Headings == nil {
		t.Error("Headings should be initialized")
	}
	if r.StatusCode != nil {
		t.Error("StatusCode should be nil")
	}
}

func TestReportDegrade(t *testing.T) {
	t.Parallel()

	r := NewReport("https://example.com")
	r.SetStatusCode(500)
	r.Issues = append(r.Issues, NewIssue(CategorySEO, SeverityHigh, "Missing page title", ""))
	r.Scores = Scores{Overall: 60, SEO: 80, Accessibility: 50, Performance: 50}
	r.IssueCounts = IssueCounts{High: 1}
	r.ExecutiveSummary = "summary"

	r.Degrade("Analysis failed: boom")

	if len(r.Issues) != 0 {
		t.Errorf("Issues = %d, expected 0", len(r.Issues))
	}
	if r.Scores != (Scores{}) {
		t.Errorf("Scores = %+v, expected zero", r.Scores)
	}
	if r.IssueCounts.Total() != 0 {
		t.Errorf("IssueCounts total = %d, expected 0", r.IssueCounts.Total())
	}
	if r.StatusCode == nil || *r.StatusCode != 500 {
		t.Error("StatusCode should be kept")
	}
	if !r.Failed() {
		t.Error("Failed() should be true")
	}
}

func TestReportFailedWithAdvisory(t *testing.T) {
	t.Parallel()

	r := NewReport("https://example.com")
	r.Issues = append(r.Issues, NewIssue(CategorySEO, SeverityHigh, "Missing page title", ""))
	r.Scores = Scores{Overall: 93, SEO: 80, Accessibility: 100, Performance: 100}
	r.Error = "Server returned HTTP 404"

	if r.Failed() {
		t.Error("an advisory error on a full report is not a failure")
	}
}

func TestReportJSONShape(t *testing.T) {
	t.Parallel()

	t.Run("degraded report keeps every required field", func(t *testing.T) {
		t.Parallel()

		r := NewReport("https://example.com")
		r.Degrade("Request timed out after 15s")

		data, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("Marshal error: %v", err)
		}

		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("Unmarshal error: %v", err)
		}

		for _, key := range []string{
			"url", "fetchedAt", "responseTimeMs", "scores", "issueCounts",
			"issues", "pageMeta", "pageStats", "executiveSummary", "error",
		} {
			if _, ok := m[key]; !ok {
				t.Errorf("missing key %q", key)
			}
		}
		if _, ok := m["statusCode"]; ok {
			t.Error("statusCode should be omitted when nil")
		}
		if !strings.Contains(string(data), `"issues":[]`) {
			t.Errorf("issues should serialize as an empty array: %s", data)
		}
	})

	t.Run("stats are flattened", func(t *testing.T) {
		t.Parallel()

		r := NewReport("https://example.com")
		r.PageStats.ImagesTotal = 4
		r.PageStats.ImagesMissingAlt = 1
		r.PageStats.ImagesLazy = 2

		data, err := json.Marshal(r.PageStats)
		if err != nil {
			t.Fatalf("Marshal error: %v", err)
		}
		for _, want := range []string{`"imagesTotal":4`, `"imagesMissingAlt":1`, `"imagesLazy":2`} {
			if !strings.Contains(string(data), want) {
				t.Errorf("expected %s in %s", want, data)
			}
		}
	})
}

func TestSortedIssues(t *testing.T) {
	t.Parallel()

	r := NewReport("https://example.com")
	r.Issues = []Issue{
		NewIssue(CategorySEO, SeverityLow, "a", ""),
		NewIssue(CategorySEO, SeverityHigh, "b", ""),
		NewIssue(CategoryPerformance, SeverityMedium, "c", ""),
		NewIssue(CategoryPerformance, SeverityHigh, "d", ""),
	}

	sorted := r.SortedIssues()
	var titles []string
	for _, issue := range sorted {
		titles = append(titles, issue.Title)
	}
	if got := strings.Join(titles, ""); got != "bdca" {
		t.Errorf("sorted order = %q, expected \"bdca\"", got)
	}
	if r.Issues[0].Title != "a" {
		t.Error("SortedIssues must not reorder the report")
	}
	if n := len(r.IssuesBySeverity(SeverityHigh)); n != 2 {
		t.Errorf("IssuesBySeverity(High) = %d, expected 2", n)
	}
}

func TestIssueValid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		issue Issue
		valid bool
	}{
		{"complete", NewIssue(CategorySEO, SeverityHigh, "Missing page title", "d"), true},
		{"no category", NewIssue("", SeverityHigh, "t", ""), false},
		{"no title", NewIssue(CategoryBugs, SeverityLow, "", ""), false},
		{"unknown severity", NewIssue(CategoryBugs, SeverityUnknown, "t", ""), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.issue.Valid(); got != tc.valid {
				t.Errorf("Valid() = %v, expected %v", got, tc.valid)
			}
		})
	}
}
