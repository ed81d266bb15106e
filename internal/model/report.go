package model

import (
	"time"
)

// CrawlReport aggregates everything produced by one crawl run: the ordered
// document records, the duplicate-sighting ledger, and run metadata.
//
// Design decision: We keep a run-level report struct (rather than returning
// a bare record slice) because the report writers, the console summary, and
// the scan-history database all need the same metadata, and threading half
// a dozen loose values through those layers invites drift.
type CrawlReport struct {
	// StartURL is the URL the crawl was seeded with.
	StartURL string `json:"start_url"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock time of the crawl.
	Duration time.Duration `json:"duration_ms"`

	// PagesVisited is the number of pages actually fetched.
	PagesVisited int `json:"pages_visited"`

	// Results holds one record per unique PDF candidate, in discovery order.
	Results []*DocumentResult `json:"results"`

	// Duplicates maps a PDF URL to the source pages that linked it again
	// after it had already been recorded. First-seen wins for the record
	// itself; this ledger only surfaces the later sightings.
	Duplicates map[string][]string `json:"duplicates,omitempty"`

	// Summary holds the post-hoc classification counts. Populated by
	// Finalize after the crawl completes.
	Summary *Summary `json:"summary,omitempty"`
}

// NewCrawlReport creates an empty report for the given start URL.
func NewCrawlReport(startURL string) *CrawlReport {
	return &CrawlReport{
		StartURL:  startURL,
		StartedAt: time.Now(),
		Results:   make([]*DocumentResult, 0),
	}
}

// AddResult appends a document record to the report.
func (c *CrawlReport) AddResult(r *DocumentResult) {
	c.Results = append(c.Results, r)
}

// RecordDuplicate notes that pdfURL was linked again from sourcePage after
// it had already been recorded.
func (c *CrawlReport) RecordDuplicate(pdfURL, sourcePage string) {
	if c.Duplicates == nil {
		c.Duplicates = make(map[string][]string)
	}
	c.Duplicates[pdfURL] = append(c.Duplicates[pdfURL], sourcePage)
}

// Finalize computes the duration and the summary counts. Call once, after
// the crawl loop has drained.
func (c *CrawlReport) Finalize() {
	c.Duration = time.Since(c.StartedAt)
	c.Summary = NewSummary(c)
}

// Summary is the post-hoc classification of a run's records: how many
// documents have a text layer, how many are image-only, and how many could
// not be judged. This is a count over the final record set, not a pipeline
// stage.
type Summary struct {
	// Total is the number of PDF candidates recorded.
	Total int `json:"total"`

	// TextBased counts records with HasTextLayer = true.
	TextBased int `json:"text_based"`

	// ImageOnly counts records with HasTextLayer = false.
	ImageOnly int `json:"image_only"`

	// Unknown counts everything else: transport failures, missing tools,
	// dry-run stubs.
	Unknown int `json:"unknown_or_failed"`
}

// NewSummary classifies the report's records by their text-layer verdict.
func NewSummary(c *CrawlReport) *Summary {
	s := &Summary{Total: len(c.Results)}
	for _, r := range c.Results {
		switch r.HasTextLayer {
		case TristateTrue:
			s.TextBased++
		case TristateFalse:
			s.ImageOnly++
		default:
			s.Unknown++
		}
	}
	return s
}
