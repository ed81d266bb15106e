package model

import (
	"encoding/json"
	"strings"
)

// DocumentResult is the analysis record for one discovered PDF candidate.
// Its identity is the (PDFURL, SourcePage) pair: the record is created when
// a PDF-shaped link is first seen during a page's link scan, and later
// sightings of the same URL are deduplicated by the crawler.
//
// Fields are grouped by pipeline stage. Every field that depends on a hash
// or a downloaded file stays absent (nil pointer, empty string, or
// TristateUnknown) whenever the transport stage did not complete
// successfully; a stale or default value is never reported.
type DocumentResult struct {
	// PDFURL is the absolute, fragment-stripped URL of the candidate document.
	PDFURL string `json:"pdf_url"`

	// SourcePage is the absolute URL of the page that linked the document.
	SourcePage string `json:"source_page"`

	// HTTPStatus is the download response status. Nil on transport failure.
	HTTPStatus *int `json:"http_status"`

	// ContentType is the download response Content-Type header.
	ContentType string `json:"content_type,omitempty"`

	// BytesDownloaded is the number of body bytes received. On a truncated
	// download this is the count at the point of abort; nil on transport
	// failure.
	BytesDownloaded *int64 `json:"bytes_downloaded"`

	// SHA256 is the lowercase hex content hash. It is present if and only
	// if the full byte stream was stored without exceeding the size cap;
	// a truncated download never reports a hash.
	SHA256 string `json:"sha256,omitempty"`

	// HasTextLayer reports whether the font inventory found font objects.
	HasTextLayer Tristate `json:"has_text_layer"`

	// FontObjectCount is the number of font rows reported by the font
	// inventory tool. Nil when the tool did not produce a verdict.
	FontObjectCount *int `json:"font_object_count"`

	// ExtractionAttempted reports whether the text-extraction stage ran.
	ExtractionAttempted bool `json:"extraction_attempted"`

	// ExtractionSucceeded is the extraction outcome; unknown when the
	// stage was skipped.
	ExtractionSucceeded Tristate `json:"extraction_succeeded"`

	// ExtractedTextPath is the path of the extracted text file on success.
	ExtractedTextPath string `json:"extracted_text_path,omitempty"`

	// ExtractedByteCount is the UTF-8 byte size of the extracted text.
	ExtractedByteCount *int64 `json:"extracted_byte_count"`

	// ExtractedCharCount is the character count of the extracted text.
	ExtractedCharCount *int64 `json:"extracted_char_count"`

	// TextDensity is ExtractedByteCount divided by BytesDownloaded.
	// Nil when either operand is unavailable.
	TextDensity *float64 `json:"text_density"`

	// ConformanceAttempted reports whether the conformance checker ran.
	ConformanceAttempted bool `json:"conformance_attempted"`

	// ConformancePassed is the conformance verdict; unknown when the tool
	// produced no recognizable pass/fail token.
	ConformancePassed Tristate `json:"conformance_passed"`

	// Notes is the ordered, append-only diagnostic trail. It is kept as a
	// list while the record is populated and joined with "; " only at
	// serialization time.
	Notes []string `json:"-"`

	// LocalPath is the on-disk location of the downloaded document.
	// Working state for the pipeline, not part of the report.
	LocalPath string `json:"-"`
}

// NewDocumentResult creates a record for a newly discovered PDF candidate.
func NewDocumentResult(pdfURL, sourcePage string) *DocumentResult {
	return &DocumentResult{
		PDFURL:     pdfURL,
		SourcePage: sourcePage,
	}
}

// AddNote appends a diagnostic message to the record's notes trail.
// Empty messages are ignored.
func (r *DocumentResult) AddNote(note string) {
	if note == "" {
		return
	}
	r.Notes = append(r.Notes, note)
}

// JoinedNotes returns the notes trail joined with "; ", or an empty string
// when no anomalies were recorded.
func (r *DocumentResult) JoinedNotes() string {
	return strings.Join(r.Notes, "; ")
}

// MarshalJSON serializes the record with the notes trail joined into a
// single string, or null when the trail is empty.
func (r *DocumentResult) MarshalJSON() ([]byte, error) {
	type alias DocumentResult

	var notes *string
	if len(r.Notes) > 0 {
		joined := r.JoinedNotes()
		notes = &joined
	}

	return json.Marshal(&struct {
		*alias
		Notes *string `json:"notes"`
	}{
		alias: (*alias)(r),
		Notes: notes,
	})
}

// IntPtr returns a pointer to v. Helper for populating optional counters.
func IntPtr(v int) *int { return &v }

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 { return &v }

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }
