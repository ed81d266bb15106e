package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// copyChunkSize is the streaming buffer size. The byte ceiling is checked
// per chunk, so a download may be counted slightly past the cap before it
// is aborted; the crossing chunk is never written.
const copyChunkSize = 64 * 1024

// Result carries the outcome of one download attempt. Absent fields stay
// nil/empty; Note holds the single diagnostic for this stage, if any.
//
// Design decision: Every failure mode is folded into the Result rather
// than returned as an error because no download failure is fatal to the
// crawl. The caller copies fields onto the document record and moves on.
type Result struct {
	// Status is the HTTP status code, nil on transport failure.
	Status *int

	// ContentType is the response Content-Type header, empty if unknown.
	ContentType string

	// Bytes is the number of bytes counted off the wire, nil if no body
	// was read. On truncation it includes the chunk that crossed the cap.
	Bytes *int64

	// SHA256 is the lowercase hex digest of the stored bytes. Set only
	// when the full stream was written without exceeding the cap.
	SHA256 string

	// Note is the diagnostic for a failed or truncated attempt.
	Note string

	// Complete reports whether the file on disk holds the entire stream.
	Complete bool
}

// Downloader performs streaming GET requests for discovered documents.
//
// Design decision: We keep a shared http.Client on the struct rather than
// building one per call so connection pooling works across the many
// downloads of a single crawl, and so tests can inject a client.
type Downloader struct {
	// client issues the requests.
	client *http.Client

	// timeout is the per-download deadline.
	timeout time.Duration

	// maxBytes is the byte ceiling; zero or negative disables the cap.
	maxBytes int64

	// userAgent identifies the crawler to servers.
	userAgent string

	// headers are extra request headers from per-site configuration.
	headers map[string]string

	// cookie is an optional raw Cookie header value.
	cookie string
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithTimeout sets the per-download deadline.
func WithTimeout(d time.Duration) Option {
	return func(dl *Downloader) {
		dl.timeout = d
	}
}

// WithMaxBytes sets the byte ceiling. Zero disables the cap.
func WithMaxBytes(n int64) Option {
	return func(dl *Downloader) {
		dl.maxBytes = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(dl *Downloader) {
		dl.userAgent = ua
	}
}

// WithHeaders sets extra request headers.
func WithHeaders(h map[string]string) Option {
	return func(dl *Downloader) {
		dl.headers = h
	}
}

// WithCookie sets a raw Cookie header value.
func WithCookie(cookie string) Option {
	return func(dl *Downloader) {
		dl.cookie = cookie
	}
}

// WithClient replaces the HTTP client. Used in tests.
func WithClient(client *http.Client) Option {
	return func(dl *Downloader) {
		dl.client = client
	}
}

// NewDownloader creates a Downloader with a 20 second timeout and a
// 50MB byte ceiling unless overridden.
func NewDownloader(opts ...Option) *Downloader {
	dl := &Downloader{
		client:    &http.Client{},
		timeout:   20 * time.Second,
		maxBytes:  50_000_000,
		userAgent: "pdf-a11y-crawl/0.1",
	}

	for _, opt := range opts {
		opt(dl)
	}

	return dl
}

// Download streams rawURL to destPath. The parent directory is created if
// needed. A status of 400 or higher aborts before any write. When the
// accumulated byte count exceeds the cap, the partial file is removed and
// the hash withheld; the returned count includes the crossing chunk.
func (dl *Downloader) Download(ctx context.Context, rawURL, destPath string) *Result {
	res := &Result{}

	ctx, cancel := context.WithTimeout(ctx, dl.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		res.Note = fmt.Sprintf("download error: %v", err)
		return res
	}
	req.Header.Set("User-Agent", dl.userAgent)
	for k, v := range dl.headers {
		req.Header.Set(k, v)
	}
	if dl.cookie != "" {
		req.Header.Set("Cookie", dl.cookie)
	}

	resp, err := dl.client.Do(req)
	if err != nil {
		res.Note = fmt.Sprintf("download error: %v", err)
		return res
	}
	defer resp.Body.Close() //nolint:errcheck // read-side close

	status := resp.StatusCode
	res.Status = &status
	res.ContentType = resp.Header.Get("Content-Type")

	if status >= http.StatusBadRequest {
		res.Note = fmt.Sprintf("HTTP %d", status)
		return res
	}

	// Servers mislabeling the content type are tolerated: the link
	// classifier already decided this URL is worth trying.

	if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
		res.Note = fmt.Sprintf("download error: %v", err)
		return res
	}

	f, err := os.Create(destPath) //nolint:gosec // path derived from URL hash
	if err != nil {
		res.Note = fmt.Sprintf("download error: %v", err)
		return res
	}

	total, digest, streamErr := dl.stream(resp, f)
	closeErr := f.Close()

	switch {
	case streamErr != nil:
		// Mid-stream transport failure. The partial file is useless.
		_ = os.Remove(destPath)
		res.Note = fmt.Sprintf("download error: %v", streamErr)
	case digest == nil:
		// Byte ceiling exceeded. Truncated content is never reported
		// as verified-complete, so the hash stays absent.
		_ = os.Remove(destPath)
		res.Bytes = &total
		res.Note = fmt.Sprintf("exceeded max_bytes=%d", dl.maxBytes)
	case closeErr != nil:
		_ = os.Remove(destPath)
		res.Note = fmt.Sprintf("download error: %v", closeErr)
	default:
		res.Bytes = &total
		res.SHA256 = hex.EncodeToString(digest.Sum(nil))
		res.Complete = true
	}

	return res
}

// stream copies the response body to f in fixed-size chunks, hashing as it
// goes. It returns the byte count, the digest (nil when the cap was hit),
// and any read/write error. The chunk that pushes the count past the cap
// is counted but not written or hashed.
func (dl *Downloader) stream(resp *http.Response, f *os.File) (int64, hash.Hash, error) {
	digest := sha256.New()
	buf := make([]byte, copyChunkSize)

	var total int64
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			total += int64(n)
			if dl.maxBytes > 0 && total > dl.maxBytes {
				return total, nil, nil
			}
			if _, werr := f.Write(buf[:n]); werr != nil {
				return total, nil, werr
			}
			digest.Write(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return total, nil, err
		}
	}

	return total, digest, nil
}
