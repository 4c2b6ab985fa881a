package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/webpulse/internal/fetcher"
	"github.com/nao1215/webpulse/internal/model"
	"github.com/nao1215/webpulse/internal/suggest"
)

// Config is everything an Orchestrator needs. It is passed explicitly at
// construction; the pipeline reads no environment or global state.
type Config struct {
	// Timeout bounds the fetch. Used only when Fetcher is nil.
	Timeout time.Duration

	// Fetcher retrieves pages. Nil means a fetcher.Client with Timeout.
	Fetcher Fetcher

	// Suggester produces remediation text. Nil means the static table.
	Suggester suggest.Suggester

	// EnrichConcurrency bounds concurrent Suggest calls per scan.
	EnrichConcurrency int

	// Analyzers overrides the built-in analyzers. Unset fields keep the
	// defaults.
	Analyzers AnalyzerSet

	// Logger receives structured logs. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the default timeout and
// concurrency.
func DefaultConfig() Config {
	return Config{
		Timeout:           fetcher.DefaultTimeout,
		EnrichConcurrency: suggest.DefaultConcurrency,
	}
}

// Orchestrator audits one URL at a time by running a fresh pipeline of
// fetch, parse, analyze, enrich and aggregate steps. It is safe for
// concurrent use.
type Orchestrator struct {
	fetcher   Fetcher
	enricher  *suggest.Enricher
	analyzers AnalyzerSet
	logger    *slog.Logger
	opts      []Option
}

// NewOrchestrator creates an Orchestrator. opts configure the pipeline
// built for each scan.
func NewOrchestrator(cfg Config, opts ...Option) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	f := cfg.Fetcher
	if f == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = fetcher.DefaultTimeout
		}
		f = fetcher.New(fetcher.WithTimeout(timeout))
	}

	return &Orchestrator{
		fetcher: f,
		enricher: suggest.NewEnricher(cfg.Suggester,
			suggest.WithConcurrency(cfg.EnrichConcurrency),
			suggest.WithEnricherLogger(logger)),
		analyzers: cfg.Analyzers.withDefaults(),
		logger:    logger,
		opts:      append([]Option{WithLogger(logger)}, opts...),
	}
}

// SuggestionMode returns the name of the configured suggester.
func (o *Orchestrator) SuggestionMode() string {
	return o.enricher.Mode()
}

// Steps returns the steps of one scan in execution order.
func (o *Orchestrator) Steps() []Step {
	return []Step{
		NewFetchStep(o.fetcher, o.logger),
		NewParseStep(),
		NewAnalyzeStep(o.analyzers, o.logger),
		NewEnrichStep(o.enricher),
		NewAggregateStep(),
	}
}

// Scan audits url, which must already be normalized.
//
// A fetch failure is not an error: the returned report is degraded, with
// no issues, zero scores and the failure message in Error. An analyzer
// fault returns a degraded report together with an error wrapping
// ErrAnalysisFailed. Cancellation of ctx returns ctx.Err() and no report.
func (o *Orchestrator) Scan(ctx context.Context, url string) (*model.Report, error) {
	start := time.Now()
	state := NewScanState(url)

	p := New(o.opts...)
	p.AddSteps(o.Steps()...)

	if err := p.Execute(ctx, state); err != nil {
		if errors.Is(err, ErrAnalysisFailed) {
			return state.Report, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	report := state.Report
	o.logger.Info("scan completed",
		"url", url,
		"overall", report.Scores.Overall,
		"issues", len(report.Issues),
		"failed", report.Failed(),
		"elapsed", time.Since(start),
	)
	return report, nil
}
