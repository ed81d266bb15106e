package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shiori-dev/pdfa11ycrawl/internal/model"
)

// timeRounding keeps the printed duration readable.
const timeRounding = 10 * time.Millisecond

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display after a run.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
//  1. It works in all terminals without compatibility issues
//  2. It's easier to pipe to files or other tools
//  3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables a per-document listing after the summary counts.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-document detail.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	summary := report.Summary
	if summary == nil {
		summary = model.NewSummary(report)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Crawl of %s finished in %s (%d pages visited).\n",
		report.StartURL, report.Duration.Round(timeRounding), report.PagesVisited)
	fmt.Fprintf(&b, "PDFs found: %d\n", summary.Total)
	fmt.Fprintf(&b, "Text-based (fonts found): %d\n", summary.TextBased)
	fmt.Fprintf(&b, "Image-only (no fonts): %d\n", summary.ImageOnly)
	fmt.Fprintf(&b, "Unknown/failed: %d\n", summary.Unknown)
	if n := len(report.Duplicates); n > 0 {
		fmt.Fprintf(&b, "Duplicate links: %d\n", n)
	}

	if w.verbose {
		w.writeDetail(&b, report)
	}

	return w.output.Write([]byte(b.String()))
}

// writeDetail appends one line per record.
func (w *SimpleWriter) writeDetail(b *strings.Builder, report *model.CrawlReport) {
	if len(report.Results) == 0 {
		return
	}

	b.WriteString("\nDocuments:\n")
	for _, r := range report.Results {
		fmt.Fprintf(b, "  [%s] %s", verdictLabel(r.HasTextLayer), r.PDFURL)
		if notes := r.JoinedNotes(); notes != "" {
			fmt.Fprintf(b, " (%s)", notes)
		}
		b.WriteByte('\n')
	}
}

// verdictLabel renders the text-layer verdict as a fixed-width tag.
func verdictLabel(t model.Tristate) string {
	switch t {
	case model.TristateTrue:
		return "text "
	case model.TristateFalse:
		return "image"
	default:
		return "  ?  "
	}
}
