package suggest

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/webpulse/internal/model"
)

// DefaultConcurrency is the number of issues enriched at once.
const DefaultConcurrency = 8

// Enricher fills the Suggestion field of every issue.
type Enricher struct {
	suggester   Suggester
	concurrency int
	logger      *slog.Logger
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithConcurrency bounds the number of concurrent Suggest calls.
// Values below 1 are ignored.
func WithConcurrency(n int) EnricherOption {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithEnricherLogger sets the logger.
func WithEnricherLogger(logger *slog.Logger) EnricherOption {
	return func(e *Enricher) {
		e.logger = logger
	}
}

// NewEnricher creates an Enricher. A nil suggester means the static table.
func NewEnricher(s Suggester, opts ...EnricherOption) *Enricher {
	if s == nil {
		s = NewStatic()
	}
	e := &Enricher{
		suggester:   s,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode returns the name of the underlying suggester.
func (e *Enricher) Mode() string {
	return e.suggester.Name()
}

// Enrich returns a copy of issues with suggestions filled in. The order of
// issues is preserved. A suggester error falls back to the static table for
// that issue; only cancellation of ctx fails the call.
func (e *Enricher) Enrich(ctx context.Context, issues []model.Issue) ([]model.Issue, error) {
	enriched := make([]model.Issue, len(issues))
	copy(enriched, issues)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range enriched {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := e.suggester.Suggest(gctx, enriched[i])
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				e.logger.Debug("suggester failed, using static table",
					"mode", e.suggester.Name(),
					"title", enriched[i].Title,
					"error", err)
				text = Lookup(enriched[i])
			}
			// Each goroutine writes only its own index.
			enriched[i].Suggestion = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return enriched, nil
}
