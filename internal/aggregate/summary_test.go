package aggregate

import (
	"testing"

	"github.com/nao1215/webpulse/internal/model"
)

func TestTierFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		overall int
		want    string
	}{
		{overall: 100, want: "excellent"},
		{overall: 85, want: "excellent"},
		{overall: 84, want: "good"},
		{overall: 65, want: "good"},
		{overall: 64, want: "fair"},
		{overall: 45, want: "fair"},
		{overall: 44, want: "needs significant improvement"},
		{overall: 0, want: "needs significant improvement"},
	}

	for _, tt := range tests {
		if got := TierFor(tt.overall).Name; got != tt.want {
			t.Errorf("TierFor(%d) = %q, want %q", tt.overall, got, tt.want)
		}
	}
}

func TestWeakest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scores model.Scores
		want   string
	}{
		{name: "seo lowest", scores: model.Scores{Overall: 0, SEO: 10, Accessibility: 50, Performance: 90}, want: "seo"},
		{name: "performance lowest", scores: model.Scores{SEO: 90, Accessibility: 80, Performance: 40}, want: "performance"},
		{name: "tie goes to seo", scores: model.Scores{SEO: 60, Accessibility: 60, Performance: 60}, want: "seo"},
		{name: "tie goes to bugs before performance", scores: model.Scores{SEO: 90, Accessibility: 50, Performance: 50}, want: "bugs"},
		{name: "overall never competes", scores: model.Scores{Overall: 1, SEO: 99, Accessibility: 98, Performance: 97}, want: "performance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Weakest(tt.scores).Key; got != tt.want {
				t.Errorf("Weakest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExecutiveSummary(t *testing.T) {
	t.Parallel()

	scores := model.Scores{Overall: 60, SEO: 15, Accessibility: 70, Performance: 95}
	got := ExecutiveSummary(scores, 9)
	want := "This website audit identified 9 issue(s) across SEO, accessibility, and performance. " +
		"The overall quality score is 60/100, which is fair. " +
		"The weakest area is SEO (score: 15/100). " +
		"Several important issues need attention to reach competitive standards."
	if got != want {
		t.Errorf("ExecutiveSummary() =\n%q\nwant\n%q", got, want)
	}

	got = ExecutiveSummary(model.Scores{Overall: 90, SEO: 95, Accessibility: 80, Performance: 95}, 1)
	want = "This website audit identified 1 issue(s) across SEO, accessibility, and performance. " +
		"The overall quality score is 90/100, which is excellent. " +
		"The weakest area is Accessibility & Code Quality (score: 80/100). " +
		"Minor improvements will push it to near-perfect."
	if got != want {
		t.Errorf("ExecutiveSummary() =\n%q\nwant\n%q", got, want)
	}
}
