package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/shiori-dev/pdfa11ycrawl/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
//  1. Type-safe markdown generation
//  2. Support for tables, lists, and code blocks
//  3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeResults(md, report)
	w.writeDuplicates(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("PDF Accessibility Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + report.StartURL + "`"},
			{"Crawl Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.String()},
			{"Pages Visited", strconv.Itoa(report.PagesVisited)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the classification counts and a distribution chart.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.CrawlReport) {
	summary := report.Summary
	if summary == nil {
		summary = model.NewSummary(report)
	}

	md.H2("Summary")
	md.Table(markdown.TableSet{
		Header: []string{"Classification", "Count"},
		Rows: [][]string{
			{"PDFs found", strconv.Itoa(summary.Total)},
			{"Text-based (fonts found)", strconv.Itoa(summary.TextBased)},
			{"Image-only (no fonts)", strconv.Itoa(summary.ImageOnly)},
			{"Unknown/failed", strconv.Itoa(summary.Unknown)},
		},
	})

	if summary.Total > 0 {
		w.writePieChart(md, summary)
	}

	if summary.ImageOnly > 0 {
		md.Warningf(
			"%d document(s) appear to be image-only scans with no text layer; screen readers cannot read them.",
			summary.ImageOnly,
		)
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart for the text-layer distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Text-Layer Distribution"),
		piechart.WithShowData(true),
	)

	if summary.TextBased > 0 {
		chart.LabelAndIntValue("Text-based", uint64(summary.TextBased))
	}
	if summary.ImageOnly > 0 {
		chart.LabelAndIntValue("Image-only", uint64(summary.ImageOnly))
	}
	if summary.Unknown > 0 {
		chart.LabelAndIntValue("Unknown", uint64(summary.Unknown))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeResults writes one table row per document record.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Results) == 0 {
		return
	}

	md.H2("Documents")
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		rows = append(rows, []string{
			"`" + r.PDFURL + "`",
			intCell(r.HTTPStatus),
			tristateCell(r.HasTextLayer),
			floatCell(r.TextDensity),
			tristateCell(r.ConformancePassed),
			r.JoinedNotes(),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"PDF", "Status", "Text Layer", "Density", "PDF/UA", "Notes"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDuplicates lists PDFs that were linked from more than one page.
func (w *MarkdownWriter) writeDuplicates(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Duplicates) == 0 {
		return
	}

	md.H2("Duplicate Links")
	md.PlainText("The following documents were linked from more than one page. Only the first sighting was analyzed.")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Duplicates))
	for pdfURL, pages := range report.Duplicates {
		rows = append(rows, []string{
			"`" + pdfURL + "`",
			strconv.Itoa(len(pages) + 1),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"PDF", "Times Linked"},
		Rows:   rows,
	})
	md.PlainText("")
}
