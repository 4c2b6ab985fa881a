package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/webpulse/internal/model"
)

// DefaultBatchConcurrency is the number of URLs scanned at once.
const DefaultBatchConcurrency = 4

// msgCancelled marks reports of scans that never started.
const msgCancelled = "Scan cancelled"

// Scanner audits one URL. *Orchestrator implements it.
type Scanner interface {
	Scan(ctx context.Context, url string) (*model.Report, error)
}

// BatchProcessor handles concurrent scanning of multiple URLs.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Orchestrator because it keeps a scan a single attempt
// over a single URL, and batch policies stay out of the core.
type BatchProcessor struct {
	scanner     Scanner
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scans.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(scanner Scanner, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		scanner:     scanner,
		concurrency: DefaultBatchConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch scans urls concurrently and returns one report per URL in
// input order. A scan that fails with an error still gets a degraded
// report carrying the error message, and scans that never started because
// ctx was cancelled get a "Scan cancelled" report.
//
// The error return is non-nil only when ctx was cancelled before every
// scan could start.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*model.Report, error) {
	reports := make([]*model.Report, len(urls))
	err := bp.ProcessBatchWithCallback(ctx, urls, func(report *model.Report, index int, _ error) {
		// Each goroutine writes only its own index.
		reports[index] = report
	})

	for i, report := range reports {
		if report == nil {
			reports[i] = model.NewReport(urls[i])
			reports[i].Degrade(msgCancelled)
		}
	}
	return reports, err
}

// ProcessBatchWithCallback scans urls and calls callback for each
// completed scan with the report, the index of the URL in urls and the
// scan error, if any. The report is never nil.
//
// The callback is called from the goroutine that completed the scan, so it
// must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	urls []string,
	callback func(report *model.Report, index int, err error),
) error {
	bp.logger.Info("starting batch processing",
		"total_urls", len(urls),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, url := range urls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			bp.logger.Debug("scanning url",
				"url", url,
				"index", i+1,
				"total", len(urls),
			)

			report, err := bp.scanner.Scan(ctx, url)
			if err != nil {
				bp.logger.Warn("scan failed", "url", url, "error", err)
				if report == nil {
					report = model.NewReport(url)
					report.Degrade(err.Error())
				}
			}

			callback(report, i, err)

			// A failed scan never stops the others.
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_urls", len(urls),
		"elapsed", time.Since(startTime),
	)

	return err
}
