package crawler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// maxPageBodySize limits how much of an HTML page is read. Pages larger
// than this are truncated; 5 MB covers any realistic HTML document.
const maxPageBodySize = 5 * 1024 * 1024

// Fetcher performs single-attempt GET requests for HTML pages.
//
// The contract distinguishes three non-usable outcomes from a usable page:
// transport failure (error), HTTP failure (status >= 400, no body), and
// content-type mismatch (status and type reported, no body). There are no
// retries; one attempt is definitive.
type Fetcher struct {
	// client performs the requests. Redirects are followed by default.
	client *http.Client

	// timeout bounds each individual request.
	timeout time.Duration

	// userAgent is sent with every request.
	userAgent string

	// headers are additional request headers (per-site configuration).
	headers map[string]string

	// cookie is an optional Cookie header value.
	cookie string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetcherTimeout sets the per-request timeout.
func WithFetcherTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithFetcherUserAgent sets the User-Agent header.
func WithFetcherUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithFetcherHeaders sets additional request headers.
func WithFetcherHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithFetcherCookie sets the Cookie header value.
func WithFetcherCookie(cookie string) FetcherOption {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithFetcherClient replaces the underlying HTTP client.
// Used by tests and by callers that need custom transports.
func WithFetcherClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a Fetcher with a 20 second default timeout.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{},
		timeout:   20 * time.Second,
		userAgent: "pdf-a11y-crawl/0.1",
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// PageResult is the outcome of a page fetch that reached the server.
type PageResult struct {
	// StatusCode is the final HTTP status after redirects.
	StatusCode int

	// ContentType is the raw Content-Type header value.
	ContentType string

	// Body is the decoded page text. Empty when the status was an error
	// or the content type was not HTML; callers must not attempt link
	// extraction on an empty body.
	Body string
}

// Usable reports whether the body can be scanned for links.
func (p *PageResult) Usable() bool {
	return p != nil && p.Body != ""
}

// FetchPage performs one GET for an HTML page. A transport-level failure
// (network, DNS, timeout) returns an error and no result, signalling "page
// unusable" to the caller. All server responses, including HTTP errors and
// non-HTML content, return a PageResult instead.
//
// The body is decoded using the server's apparent encoding: the declared
// charset when present, otherwise detection from the document bytes. This
// mirrors how browsers treat pages with missing or unreliable declarations.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) (*PageResult, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := &PageResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if resp.StatusCode >= 400 {
		return result, nil
	}
	if !isHTMLContentType(result.ContentType) {
		return result, nil
	}

	// Decode with the apparent encoding. charset.NewReader consults the
	// Content-Type charset, falls back to sniffing the document bytes, and
	// yields UTF-8 either way.
	limited := io.LimitReader(resp.Body, maxPageBodySize)
	decoded, err := charset.NewReader(limited, result.ContentType)
	if err != nil {
		// Undecodable response: treat like a content mismatch, not a
		// transport failure. Status and type remain reported.
		return result, nil
	}

	body, err := io.ReadAll(decoded)
	if err != nil {
		return nil, err
	}

	result.Body = string(body)
	return result, nil
}

// setHeaders applies the fetcher's identity and per-site headers.
func (f *Fetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}
}

// isHTMLContentType reports whether a Content-Type header names an HTML or
// XHTML document.
func isHTMLContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
