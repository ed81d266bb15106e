package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These mirror the defaults users see in
// the CLI help text; changing one here changes the documented behavior.
const (
	// DefaultTimeout is the HTTP timeout applied to each page fetch and
	// each document download. 20 seconds is generous for ordinary web
	// servers while keeping a stuck crawl bounded.
	DefaultTimeout = 20 * time.Second

	// DefaultMaxBytes caps each downloaded document at 50 MB. Larger
	// documents are truncated and reported as such rather than verified.
	DefaultMaxBytes = 50_000_000

	// DefaultMaxPages limits recursive crawls to 200 pages. This prevents
	// runaway crawling on large or infinitely-generating sites while still
	// covering typical document-repository sections.
	DefaultMaxPages = 200

	// DefaultBatchSize is the number of concurrent crawls when multiple
	// start URLs are given. Each individual crawl remains sequential.
	DefaultBatchSize = 4

	// DefaultOutDir is the output directory for downloads and reports.
	// Each run writes into a timestamped subdirectory beneath it.
	DefaultOutDir = "out"

	// DefaultUserAgent identifies the crawler in HTTP requests so that
	// site operators can recognize the traffic in their logs.
	DefaultUserAgent = "pdf-a11y-crawl/0.1"

	// DefaultDelay is the politeness delay between page fetches.
	// Zero keeps the crawl fully sequential with no artificial pauses.
	DefaultDelay = 0 * time.Second

	// FontToolTimeout bounds the font-inventory tool per document.
	FontToolTimeout = 30 * time.Second

	// ExtractToolTimeout bounds the text-extraction tool per document.
	ExtractToolTimeout = 120 * time.Second

	// ConformanceToolTimeout bounds the conformance checker per document.
	ConformanceToolTimeout = 120 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "pdfa11ycrawl"
)

// Config holds all settings for a crawl run. It is populated from CLI
// flags and passed through the application via dependency injection rather
// than global state.
//
// Design decision: a single flat struct instead of nested sub-structs.
// The number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// Targets are the start URLs to crawl.
	Targets []string

	// Recursive enables breadth-first following of same-origin HTML links.
	// When false, only the start URL's links are scanned.
	Recursive bool

	// DryRun discovers PDF links but neither downloads nor analyzes them.
	// Each discovered link still produces a stub record.
	DryRun bool

	// IncludeExternalPDFs allows recording PDFs hosted off-origin relative
	// to the start URL. When false, off-origin PDF links are skipped.
	IncludeExternalPDFs bool

	// MaxBytes is the per-document download ceiling in bytes.
	MaxBytes int64

	// MaxPages is the maximum number of pages fetched per crawl.
	MaxPages int

	// Timeout applies to each page fetch and each document download.
	Timeout time.Duration

	// OutDir is the base output directory. The run writes downloads and
	// reports into a timestamped subdirectory beneath it.
	OutDir string

	// ExtractText enables the opt-in text-extraction stage.
	ExtractText bool

	// Conformance enables the opt-in formal conformance stage.
	Conformance bool

	// MarkdownReport additionally writes a Markdown summary (report.md)
	// next to the JSON and CSV reports.
	MarkdownReport bool

	// BatchSize is the number of concurrent crawls across start URLs.
	BatchSize int

	// Delay is the politeness delay between page fetches within a crawl.
	Delay time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Verbose enables debug-level log output.
	Verbose bool

	// ConfigFilePath is the path to the YAML configuration file. If empty,
	// the tool searches the current directory and then the home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// SaveToDB indicates whether crawl runs are persisted to the scan
	// history database.
	SaveToDB bool

	// DBDir is the directory holding the scan history database.
	// Defaults to the XDG data directory.
	DBDir string
}

// NewConfig creates a Config with default values. Many defaults are
// non-zero, so relying on zero values would be misleading; this constructor
// also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxBytes:  DefaultMaxBytes,
		MaxPages:  DefaultMaxPages,
		Timeout:   DefaultTimeout,
		OutDir:    DefaultOutDir,
		BatchSize: DefaultBatchSize,
		Delay:     DefaultDelay,
		UserAgent: DefaultUserAgent,
	}
}

// XDGDataDir returns the XDG data directory for the crawler.
// On Linux: ~/.local/share/pdfa11ycrawl
// On macOS: ~/Library/Application Support/pdfa11ycrawl
// On Windows: %LOCALAPPDATA%\pdfa11ycrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the crawler.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns a sentinel error describing
// the first problem found. It is called once after CLI parsing, before any
// crawling begins, so that bad input fails fast with a clear message.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBytes <= 0 {
		return ErrInvalidMaxBytes
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	return nil
}
