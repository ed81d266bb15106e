package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shiori-dev/pdfa11ycrawl/internal/model"
)

// csvHeader is the column order for runs that produced records.
var csvHeader = []string{
	"pdf_url",
	"source_page",
	"http_status",
	"content_type",
	"bytes_downloaded",
	"sha256",
	"has_text_layer",
	"font_object_count",
	"extraction_attempted",
	"extraction_succeeded",
	"extracted_text_path",
	"extracted_byte_count",
	"extracted_char_count",
	"text_density",
	"conformance_attempted",
	"conformance_passed",
	"notes",
}

// csvFallbackHeader is written for an empty run, so downstream spreadsheet
// tooling still gets a parseable file with the core columns.
var csvFallbackHeader = []string{
	"pdf_url",
	"source_page",
	"http_status",
	"content_type",
	"bytes_downloaded",
	"sha256",
	"has_text_layer",
	"font_object_count",
	"conformance_attempted",
	"conformance_passed",
	"notes",
}

// CSVWriter outputs one row per document record.
// This format is designed for spreadsheet review of large crawls.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report's records as CSV. Absent fields become empty
// cells; tri-states render as "true", "false", or empty.
func (w *CSVWriter) Write(report *model.CrawlReport) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	header := csvHeader
	if len(report.Results) == 0 {
		header = csvFallbackHeader
	}
	if err := cw.Write(header); err != nil {
		return counter.n, err
	}

	for _, r := range report.Results {
		if err := cw.Write(recordRow(r)); err != nil {
			return counter.n, err
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// recordRow renders one record in csvHeader order.
func recordRow(r *model.DocumentResult) []string {
	return []string{
		r.PDFURL,
		r.SourcePage,
		intCell(r.HTTPStatus),
		r.ContentType,
		int64Cell(r.BytesDownloaded),
		r.SHA256,
		tristateCell(r.HasTextLayer),
		intCell(r.FontObjectCount),
		strconv.FormatBool(r.ExtractionAttempted),
		tristateCell(r.ExtractionSucceeded),
		r.ExtractedTextPath,
		int64Cell(r.ExtractedByteCount),
		int64Cell(r.ExtractedCharCount),
		floatCell(r.TextDensity),
		strconv.FormatBool(r.ConformanceAttempted),
		tristateCell(r.ConformancePassed),
		r.JoinedNotes(),
	}
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func int64Cell(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func tristateCell(t model.Tristate) string {
	if v, known := t.Bool(); known {
		return strconv.FormatBool(v)
	}
	return ""
}

// countingWriter tracks bytes written through it so CSVWriter can satisfy
// the Writer interface's byte count.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
