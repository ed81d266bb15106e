package pipeline

import (
	"context"
	"log/slog"

	"github.com/shiori-dev/pdfa11ycrawl/internal/model"
)

// Step defines one stage of the per-document analysis.
// Steps are executed in sequence against the same record; each step reads
// the fields earlier steps populated and decides for itself whether it
// applies.
//
// Design decision: We use an interface rather than function types because:
//  1. It allows steps to carry configuration state
//  2. It provides a Name() method for logging and debugging
//  3. It's more extensible for future features (e.g., retries)
type Step interface {
	// Do executes the step, mutating the record in place. Anomalies are
	// recorded as notes on the record; the error return is reserved for
	// faults outside the record's scope (e.g. an unwritable work dir).
	Do(ctx context.Context, record *model.DocumentResult) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of the analysis steps for one
// document at a time.
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

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// Execute runs all steps in sequence against the record.
//
// Design decision: A step error never stops the remaining steps, because
// every per-document fault is already captured on the record itself and
// later stages gate themselves on the record's state. Cancellation is the
// only way out early.
func (p *Pipeline) Execute(ctx context.Context, record *model.DocumentResult) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"url", record.PDFURL,
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"url", record.PDFURL,
		)

		if err := step.Do(ctx, record); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"url", record.PDFURL,
				"error", err,
			)
			record.AddNote(step.Name() + " error: " + err.Error())
		}
	}

	return nil
}

// Processor adapts a Pipeline to the crawler's DocumentProcessor interface.
type Processor struct {
	pipeline *Pipeline
}

// NewProcessor wraps a pipeline for use by the crawler.
func NewProcessor(pipeline *Pipeline) *Processor {
	return &Processor{pipeline: pipeline}
}

// Process runs the pipeline against one discovered document.
func (p *Processor) Process(ctx context.Context, record *model.DocumentResult) {
	// Execute only returns the context error, which the crawl loop also
	// observes on its next iteration.
	_ = p.pipeline.Execute(ctx, record)
}
