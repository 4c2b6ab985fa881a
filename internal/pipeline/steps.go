package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/webpulse/internal/aggregate"
	"github.com/nao1215/webpulse/internal/analyzer"
	"github.com/nao1215/webpulse/internal/document"
	"github.com/nao1215/webpulse/internal/fetcher"
	"github.com/nao1215/webpulse/internal/suggest"
)

// Fetcher retrieves a page. *fetcher.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.Response, error)
}

// FetchStep retrieves the page and records the response metadata.
//
// A transport failure (timeout, refused connection, TLS or DNS error)
// degrades the report and halts the scan; it is not a pipeline error. An
// HTTP error status is only an advisory: the markup is still analyzed.
type FetchStep struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewFetchStep creates a new fetch step.
func NewFetchStep(f Fetcher, logger *slog.Logger) *FetchStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchStep{fetcher: f, logger: logger}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do executes the fetch step.
func (s *FetchStep) Do(ctx context.Context, state *ScanState) error {
	report := state.Report

	resp, err := s.fetcher.Fetch(ctx, report.URL)
	if err != nil {
		var fetchErr *fetcher.Error
		if !errors.As(err, &fetchErr) {
			return err
		}
		s.logger.Warn("fetch failed",
			"url", report.URL,
			"kind", fetchErr.Kind.String(),
			"error", fetchErr.Error(),
		)
		report.Degrade(fetchErr.Error())
		state.Halt()
		return nil
	}

	state.Response = resp
	report.ResponseTimeMs = resp.ElapsedMs
	report.SetStatusCode(resp.StatusCode)
	if resp.StatusCode >= 400 {
		report.Error = fmt.Sprintf("Server returned HTTP %d", resp.StatusCode)
	}

	s.logger.Debug("page fetched",
		"url", report.URL,
		"final_url", resp.FinalURL,
		"status", resp.StatusCode,
		"bytes", len(resp.Markup),
		"elapsed_ms", resp.ElapsedMs,
	)
	return nil
}

// ParseStep builds the document model from the fetched markup.
// Parsing never fails; malformed markup yields a best-effort tree.
type ParseStep struct{}

// NewParseStep creates a new parse step.
func NewParseStep() *ParseStep {
	return &ParseStep{}
}

// Name returns the step name.
func (s *ParseStep) Name() string {
	return "parse"
}

// Do executes the parse step.
func (s *ParseStep) Do(_ context.Context, state *ScanState) error {
	if state.Response == nil {
		return ErrNoResponse
	}
	state.Doc = document.Parse(state.Response.Markup)
	return nil
}

// AnalyzerSet holds one analyzer per category.
type AnalyzerSet struct {
	SEO           analyzer.Analyzer
	Accessibility analyzer.Analyzer
	Performance   analyzer.Analyzer
}

// DefaultAnalyzers returns the built-in analyzers.
func DefaultAnalyzers() AnalyzerSet {
	return AnalyzerSet{
		SEO:           analyzer.NewSEOAnalyzer(),
		Accessibility: analyzer.NewAccessibilityAnalyzer(),
		Performance:   analyzer.NewPerformanceAnalyzer(),
	}
}

// withDefaults fills unset analyzers with the built-in ones.
func (s AnalyzerSet) withDefaults() AnalyzerSet {
	defaults := DefaultAnalyzers()
	if s.SEO == nil {
		s.SEO = defaults.SEO
	}
	if s.Accessibility == nil {
		s.Accessibility = defaults.Accessibility
	}
	if s.Performance == nil {
		s.Performance = defaults.Performance
	}
	return s
}

// AnalyzeStep runs the three analyzers concurrently over the parsed
// document and joins their results in canonical order.
//
// Design decision: An analyzer panic fails the whole scan. Dropping the
// faulty analyzer's issues would publish a perfect score for a category
// that never ran.
type AnalyzeStep struct {
	analyzers AnalyzerSet
	logger    *slog.Logger
}

// NewAnalyzeStep creates a new analyze step. Unset analyzers in set are
// replaced by the built-in ones.
func NewAnalyzeStep(set AnalyzerSet, logger *slog.Logger) *AnalyzeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeStep{analyzers: set.withDefaults(), logger: logger}
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do executes the analyze step.
func (s *AnalyzeStep) Do(_ context.Context, state *ScanState) error {
	if state.Doc == nil || state.Response == nil {
		return ErrNoResponse
	}

	in := &analyzer.Input{
		Doc:            state.Doc,
		URL:            state.Report.URL,
		ResponseTimeMs: state.Response.ElapsedMs,
		SizeBytes:      len(state.Response.Markup),
	}

	ordered := []analyzer.Analyzer{s.analyzers.SEO, s.analyzers.Accessibility, s.analyzers.Performance}
	results := make([]analyzer.Result, len(ordered))

	// Analysis is not cancellable: it is bounded by the document size.
	var g errgroup.Group
	for i, a := range ordered {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %s analyzer: %v", ErrAnalysisFailed, a.Name(), r)
				}
			}()
			results[i] = a.Analyze(in)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("analyzer fault", "url", state.Report.URL, "error", err)
		state.Report.Degrade(faultMessage(err))
		state.Halt()
		return err
	}

	state.Results = aggregate.Results{
		SEO:           results[0],
		Accessibility: results[1],
		Performance:   results[2],
	}
	return nil
}

// faultMessage renders an analysis fault for end users.
func faultMessage(err error) string {
	return "Analysis failed: " + strings.TrimPrefix(err.Error(), ErrAnalysisFailed.Error()+": ")
}

// EnrichStep merges the issues in canonical order and attaches
// suggestions to them.
type EnrichStep struct {
	enricher *suggest.Enricher
}

// NewEnrichStep creates a new enrich step.
func NewEnrichStep(enricher *suggest.Enricher) *EnrichStep {
	return &EnrichStep{enricher: enricher}
}

// Name returns the step name.
func (s *EnrichStep) Name() string {
	return "enrich"
}

// Do executes the enrich step.
func (s *EnrichStep) Do(ctx context.Context, state *ScanState) error {
	issues, err := s.enricher.Enrich(ctx, state.Results.Issues())
	if err != nil {
		return fmt.Errorf("failed to enrich issues: %w", err)
	}
	state.Issues = issues
	return nil
}

// AggregateStep computes scores, counts, statistics and the executive
// summary and writes them to the report.
type AggregateStep struct{}

// NewAggregateStep creates a new aggregate step.
func NewAggregateStep() *AggregateStep {
	return &AggregateStep{}
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate"
}

// Do executes the aggregate step.
func (s *AggregateStep) Do(_ context.Context, state *ScanState) error {
	issues := state.Issues
	if issues == nil {
		issues = state.Results.Issues()
	}
	aggregate.Apply(state.Report, state.Results, issues)
	return nil
}
