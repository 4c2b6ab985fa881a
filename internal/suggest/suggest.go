package suggest

import (
	"context"
	"strings"

	"github.com/nao1215/webpulse/internal/model"
)

// Mode names reported by Suggester.Name.
const (
	ModeStatic = "static"
	ModeClaude = "claude"
)

// Fallback advice per severity.
const (
	adviceHigh    = "This issue has a significant impact on your site's performance or visibility and should be addressed as soon as possible."
	adviceMedium  = "This issue affects user experience or SEO and is worth fixing in your next development sprint."
	adviceLow     = "This is a minor improvement that will contribute to overall site quality."
	adviceGeneric = "Review and address this issue."
)

// Suggester produces remediation text for one issue.
//
// Implementations must be safe for concurrent use: the Enricher calls
// Suggest from several goroutines at once.
type Suggester interface {
	// Name returns the suggestion mode, ModeStatic or ModeClaude.
	Name() string

	// Suggest returns the remediation text for issue.
	Suggest(ctx context.Context, issue model.Issue) (string, error)
}

// Static looks suggestions up in the built-in table.
type Static struct{}

// NewStatic creates a new Static suggester.
func NewStatic() *Static {
	return &Static{}
}

// Name returns ModeStatic.
func (s *Static) Name() string {
	return ModeStatic
}

// Suggest never fails.
func (s *Static) Suggest(_ context.Context, issue model.Issue) (string, error) {
	return Lookup(issue), nil
}

// Lookup returns the text of the first table entry whose key occurs in the
// lowercased title, or Fallback(issue) when none does.
func Lookup(issue model.Issue) string {
	title := strings.ToLower(issue.Title)
	for _, entry := range table {
		if strings.Contains(title, entry.Key) {
			return entry.Text
		}
	}
	return Fallback(issue)
}

// Fallback builds advice for issues the table does not know.
func Fallback(issue model.Issue) string {
	return severityAdvice(issue.Severity) +
		" Category: " + string(issue.Category) +
		". Technical detail: " + issue.Detail
}

func severityAdvice(s model.Severity) string {
	switch s {
	case model.SeverityHigh:
		return adviceHigh
	case model.SeverityMedium:
		return adviceMedium
	case model.SeverityLow:
		return adviceLow
	default:
		return adviceGeneric
	}
}
