package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/shiori-dev/pdfa11ycrawl/internal/model"
)

// DocumentProcessor runs the download-and-analysis pipeline for one PDF
// candidate, populating the record in place.
//
// Design decision: The spider dispatches through this interface rather than
// owning the pipeline so that traversal logic can be tested with a canned
// processor and the pipeline can be tested without a web server.
type DocumentProcessor interface {
	Process(ctx context.Context, record *model.DocumentResult)
}

// Spider drives the breadth-first crawl: it owns the frontier queue and the
// dedup sets, fetches pages, scans their links, and hands PDF-shaped links
// to the DocumentProcessor.
//
// Page URLs move unseen → queued → fetched; PDF URLs move unseen → recorded
// (terminal, first-seen wins). Traversal is strict FIFO with no revisits,
// no priorities, and no retries. The visited sets live in Crawl itself, so
// a single Spider value is safe to reuse across runs.
type Spider struct {
	// fetcher retrieves HTML pages.
	fetcher *Fetcher

	// processor runs the per-document pipeline.
	processor DocumentProcessor

	// maxPages caps how many pages are taken off the frontier.
	maxPages int

	// recursive enables following same-origin HTML links beyond the start
	// page. When false only the start URL's links are scanned.
	recursive bool

	// dryRun records discovered PDFs as stubs without downloading.
	dryRun bool

	// includeExternal allows recording PDFs hosted off-origin relative to
	// the start URL. When false those links are skipped entirely.
	includeExternal bool

	// delay is an optional politeness pause between page fetches.
	delay time.Duration

	// progress, when set, is called after each page fetch attempt.
	progress func(fetched int, pageURL string)

	// logger for structured logging.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages caps the number of pages fetched per crawl.
func WithMaxPages(n int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = n
	}
}

// WithRecursive enables breadth-first following of same-origin links.
func WithRecursive(recursive bool) SpiderOption {
	return func(s *Spider) {
		s.recursive = recursive
	}
}

// WithDryRun discovers PDFs without downloading or analyzing them.
func WithDryRun(dryRun bool) SpiderOption {
	return func(s *Spider) {
		s.dryRun = dryRun
	}
}

// WithIncludeExternalPDFs allows recording off-origin PDF links.
func WithIncludeExternalPDFs(include bool) SpiderOption {
	return func(s *Spider) {
		s.includeExternal = include
	}
}

// WithDelay sets a politeness pause between page fetches.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithProgress registers a callback invoked after each page fetch attempt
// with the running page count. Used by the CLI for progress output.
func WithProgress(fn func(fetched int, pageURL string)) SpiderOption {
	return func(s *Spider) {
		s.progress = fn
	}
}

// WithSpiderLogger sets a custom logger.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider. The fetcher and processor are required; the
// remaining behavior is configured through options.
func NewSpider(fetcher *Fetcher, processor DocumentProcessor, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:   fetcher,
		processor: processor,
		maxPages:  200,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl runs the traversal from startURL and returns the crawl report.
// A cancelled context returns the partial report together with ctx.Err();
// every other failure mode is local to a single URL and never aborts the
// crawl.
func (s *Spider) Crawl(ctx context.Context, startURL string) (*model.CrawlReport, error) {
	start, err := url.Parse(startURL)
	if err != nil || !start.IsAbs() {
		return nil, fmt.Errorf("invalid start URL %q", startURL)
	}
	// The start URL participates in dedup like any discovered link.
	seed := Normalize(start, startURL)
	if seed == "" {
		return nil, fmt.Errorf("invalid start URL %q", startURL)
	}

	report := model.NewCrawlReport(seed)
	visitedPages := make(map[string]bool)
	visitedPDFs := make(map[string]bool)
	frontier := []string{seed}

	for len(frontier) > 0 && report.PagesVisited < s.maxPages {
		select {
		case <-ctx.Done():
			report.Finalize()
			return report, ctx.Err()
		default:
		}

		pageURL := frontier[0]
		frontier = frontier[1:]

		if visitedPages[pageURL] {
			continue
		}
		visitedPages[pageURL] = true
		report.PagesVisited++

		if s.progress != nil {
			s.progress(report.PagesVisited, pageURL)
		}

		page, err := s.fetcher.FetchPage(ctx, pageURL)
		if err != nil {
			s.logger.Debug("page fetch failed", "url", pageURL, "error", err)
			continue
		}
		if !page.Usable() {
			s.logger.Debug("page not usable",
				"url", pageURL,
				"status", page.StatusCode,
				"contentType", page.ContentType,
			)
			continue
		}

		links := s.extractLinks(pageURL, page.Body)

		for _, link := range links {
			if IsLikelyPDF(link) {
				s.handlePDFLink(ctx, report, visitedPDFs, seed, pageURL, link)
				continue
			}

			if s.recursive && SameOrigin(seed, link) && !visitedPages[link] {
				frontier = append(frontier, link)
			}
		}

		// Non-recursive mode processes only the start URL's links.
		if !s.recursive {
			break
		}

		if s.delay > 0 && len(frontier) > 0 {
			select {
			case <-ctx.Done():
				report.Finalize()
				return report, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	report.Finalize()
	return report, nil
}

// handlePDFLink applies the dedup and origin policies for one PDF-shaped
// link and, when the link is fresh and eligible, produces its record.
func (s *Spider) handlePDFLink(ctx context.Context, report *model.CrawlReport, visitedPDFs map[string]bool, seed, sourcePage, link string) {
	if visitedPDFs[link] {
		// First-seen wins; later sightings only feed the duplicates ledger.
		report.RecordDuplicate(link, sourcePage)
		return
	}
	visitedPDFs[link] = true

	if !s.includeExternal && !SameOrigin(seed, link) {
		s.logger.Debug("skipping off-origin PDF", "url", link, "source", sourcePage)
		return
	}

	record := model.NewDocumentResult(link, sourcePage)
	if s.dryRun {
		record.AddNote("dry-run (not downloaded)")
	} else {
		s.processor.Process(ctx, record)
	}
	report.AddResult(record)
}

// extractLinks parses a page body into normalized absolute links.
// Malformed HTML yields whatever anchors were parseable.
func (s *Spider) extractLinks(pageURL, body string) []string {
	parser, err := NewParser(pageURL)
	if err != nil {
		return nil
	}

	links, err := parser.Links(strings.NewReader(body))
	if err != nil {
		s.logger.Debug("link extraction failed", "url", pageURL, "error", err)
		return nil
	}
	return links
}
