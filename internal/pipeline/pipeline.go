package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/webpulse/internal/aggregate"
	"github.com/nao1215/webpulse/internal/document"
	"github.com/nao1215/webpulse/internal/fetcher"
	"github.com/nao1215/webpulse/internal/model"
)

// ScanState is the per-scan data passed from step to step.
// It is owned by one scan invocation and discarded afterwards.
type ScanState struct {
	// Report is the result under construction.
	Report *model.Report

	// Response is set by the fetch step.
	Response *fetcher.Response

	// Doc is set by the parse step. It is never mutated after parsing.
	Doc *document.Document

	// Results is set by the analyze step.
	Results aggregate.Results

	// Issues is the merged, enriched issue list set by the enrich step.
	Issues []model.Issue

	// halted stops the remaining steps without failing the scan.
	halted bool
}

// NewScanState creates the state for auditing url.
func NewScanState(url string) *ScanState {
	return &ScanState{Report: model.NewReport(url)}
}

// Halt skips every remaining step. The report is returned as is.
func (s *ScanState) Halt() {
	s.halted = true
}

// Halted reports whether a step called Halt.
func (s *ScanState) Halted() bool {
	return s.halted
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the state
// accumulated by the previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
type Step interface {
	// Do executes the pipeline step. Conditions the report can express,
	// such as an unreachable site, are recorded on the state and return
	// nil. A returned error fails the whole scan.
	Do(ctx context.Context, state *ScanState) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, the default logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in order until one fails, one halts the scan or
// ctx is cancelled.
//
// Design decision: We check ctx before each step rather than during,
// because steps handle their own timeouts. The fetch step is bounded by
// its client; the analysis steps are bounded by document size.
func (p *Pipeline) Execute(ctx context.Context, state *ScanState) error {
	url := state.Report.URL

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"url", url,
				"reason", err,
			)
			return err
		}

		start := time.Now()
		p.logger.Debug("executing step",
			"step", step.Name(),
			"url", url,
		)

		if err := step.Do(ctx, state); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"url", url,
				"error", err,
			)
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"url", url,
			"elapsed", time.Since(start),
		)

		if state.Halted() {
			p.logger.Info("scan halted",
				"step", step.Name(),
				"url", url,
				"reason", state.Report.Error,
			)
			return nil
		}
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
