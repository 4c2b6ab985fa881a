package aggregate

import (
	"fmt"

	"github.com/nao1215/webpulse/internal/model"
)

// Tier is a quality band of the overall score.
type Tier struct {
	// Name is the adjective used in the summary, e.g. "good".
	Name string

	// Outlook is the closing sentence of the summary.
	Outlook string

	// Min is the lowest overall score in the band.
	Min int
}

// tiers are ordered from best to worst.
var tiers = []Tier{
	{Name: "excellent", Min: 85, Outlook: "Minor improvements will push it to near-perfect."},
	{Name: "good", Min: 65, Outlook: "Addressing the highlighted issues will meaningfully improve rankings and conversions."},
	{Name: "fair", Min: 45, Outlook: "Several important issues need attention to reach competitive standards."},
	{Name: "needs significant improvement", Min: 0, Outlook: "Resolving the high-severity issues should be prioritised immediately."},
}

// Area is one scored category.
type Area struct {
	// Key is the short identifier: "seo", "bugs" or "performance".
	Key string

	// Label is the display name.
	Label string

	// Score is the category score.
	Score int
}

// TierFor returns the quality tier of an overall score.
func TierFor(overall int) Tier {
	for _, t := range tiers {
		if overall >= t.Min {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// Areas lists the categories in tie-break order.
func Areas(scores model.Scores) []Area {
	return []Area{
		{Key: "seo", Label: "SEO", Score: scores.SEO},
		{Key: "bugs", Label: "Accessibility & Code Quality", Score: scores.Accessibility},
		{Key: "performance", Label: "Performance", Score: scores.Performance},
	}
}

// Weakest returns the lowest-scoring category. Ties go to the category
// listed first by Areas. The overall score never competes.
func Weakest(scores model.Scores) Area {
	areas := Areas(scores)
	weakest := areas[0]
	for _, a := range areas[1:] {
		if a.Score < weakest.Score {
			weakest = a
		}
	}
	return weakest
}

// ExecutiveSummary writes the one-paragraph plain-English summary.
func ExecutiveSummary(scores model.Scores, totalIssues int) string {
	tier := TierFor(scores.Overall)
	weakest := Weakest(scores)
	return fmt.Sprintf("This website audit identified %d issue(s) across SEO, accessibility, and performance. "+
		"The overall quality score is %d/100, which is %s. "+
		"The weakest area is %s (score: %d/100). %s",
		totalIssues, scores.Overall, tier.Name, weakest.Label, weakest.Score, tier.Outlook)
}
