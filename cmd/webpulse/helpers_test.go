package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/webpulse/internal/config"
	"github.com/nao1215/webpulse/internal/database"
	"github.com/nao1215/webpulse/internal/model"
	"github.com/spf13/cobra"
)

// runCLI executes the full command tree and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeTestConfig writes a configuration file so tests never pick up a
// .webpulse from the working or home directory.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".webpulse")
	if content == "" {
		content = "defaults: {}\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// newFlagCmd returns cmd with the root persistent flags attached and args
// parsed, ready for loadConfig.
func newFlagCmd(t *testing.T, cmd *cobra.Command, args ...string) *cobra.Command {
	t.Helper()

	cmd.Flags().BoolP("verbose", "v", false, "")
	cmd.Flags().StringP("config", "c", "", "")
	cmd.Flags().String("data-dir", "", "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return cmd
}

// newTestReport builds a completed report with one issue per severity
// given in titles.
func newTestReport(url string, overall int, titles map[model.Severity]string) *model.Report {
	rep := model.NewReport(url)
	rep.FetchedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rep.SetStatusCode(200)
	rep.Scores = model.Scores{Overall: overall, SEO: overall, Accessibility: overall, Performance: overall}
	for _, sev := range model.Severities() {
		title, ok := titles[sev]
		if !ok {
			continue
		}
		issue := model.NewIssue(model.CategorySEO, sev, title, title+" detail.")
		issue.Suggestion = "Fix " + title + "."
		rep.Issues = append(rep.Issues, issue)
		switch sev {
		case model.SeverityHigh:
			rep.IssueCounts.High++
		case model.SeverityMedium:
			rep.IssueCounts.Medium++
		default:
			rep.IssueCounts.Low++
		}
	}
	rep.ExecutiveSummary = "Test summary."
	return rep
}

// seedHistory saves reports into the history under dataDir and returns
// their ids in order.
func seedHistory(t *testing.T, dataDir string, reports ...*model.Report) []int64 {
	t.Helper()

	db, err := database.Open(filepath.Join(dataDir, config.DBFileName), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ids := make([]int64, 0, len(reports))
	for _, rep := range reports {
		id, err := db.Save(context.Background(), rep, 100)
		if err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

// stubScanner returns canned reports and records the URLs it scanned.
type stubScanner struct {
	mu      sync.Mutex
	calls   []string
	reports map[string]*model.Report
	errs    map[string]error
}

func (s *stubScanner) Scan(_ context.Context, url string) (*model.Report, error) {
	s.mu.Lock()
	s.calls = append(s.calls, url)
	s.mu.Unlock()

	if err := s.errs[url]; err != nil {
		return s.reports[url], err
	}
	if rep, ok := s.reports[url]; ok {
		return rep, nil
	}
	return newTestReport(url, 90, nil), nil
}

// stubStore records saved reports.
type stubStore struct {
	mu        sync.Mutex
	saved     []*model.Report
	durations []float64
	err       error
}

func (s *stubStore) Save(_ context.Context, rep *model.Report, durationMs float64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.saved = append(s.saved, rep)
	s.durations = append(s.durations, durationMs)
	return int64(len(s.saved)), nil
}
