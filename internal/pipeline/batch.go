package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shiori-dev/pdfa11ycrawl/internal/model"
)

// CrawlFunc runs one full crawl from a start URL and returns its report.
type CrawlFunc func(ctx context.Context, startURL string) (*model.CrawlReport, error)

// BatchProcessor crawls multiple start URLs concurrently.
//
// Design decision: Batching lives here rather than in the crawler because
// a single crawl is strictly sequential; concurrency only exists between
// independent start URLs, never inside one site's traversal.
type BatchProcessor struct {
	// crawl runs one target. Each call gets its own spider and pipeline,
	// so no state leaks between targets.
	crawl CrawlFunc

	// concurrency is the maximum number of targets crawled at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent crawls.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor around a crawl function.
func NewBatchProcessor(crawl CrawlFunc, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		crawl:       crawl,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch crawls all targets and returns their reports in input
// order. A failed target leaves a nil slot; the first failure is returned
// after all targets have been attempted, cancellation excepted.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.CrawlReport, error) {
	bp.logger.Info("starting batch crawl",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	reports := make([]*model.CrawlReport, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("crawling target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			report, err := bp.crawl(ctx, target)
			if err != nil {
				bp.logger.Error("crawl failed",
					"target", target,
					"error", err,
				)
				return err
			}

			reports[i] = report
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch crawl finished",
		"total_targets", len(targets),
		"duration", time.Since(startTime),
	)

	return reports, err
}
