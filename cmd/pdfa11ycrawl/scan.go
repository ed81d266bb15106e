package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shiori-dev/pdfa11ycrawl/internal/analyze"
	"github.com/shiori-dev/pdfa11ycrawl/internal/config"
	"github.com/shiori-dev/pdfa11ycrawl/internal/crawler"
	"github.com/shiori-dev/pdfa11ycrawl/internal/database"
	"github.com/shiori-dev/pdfa11ycrawl/internal/download"
	"github.com/shiori-dev/pdfa11ycrawl/internal/log"
	"github.com/shiori-dev/pdfa11ycrawl/internal/model"
	"github.com/shiori-dev/pdfa11ycrawl/internal/pipeline"
	"github.com/shiori-dev/pdfa11ycrawl/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url]...",
		Short: "Crawl pages and analyze the PDFs they link to",
		Long: `Scan fetches the given page, collects PDF-shaped links, downloads each
document under a size cap, and runs accessibility heuristics against it:

- Font inventory: a PDF with no font objects is almost certainly an
  image-only scan that a screen reader cannot read.
- Text extraction (--pdftotext): extracts the text layer and reports a
  text-density ratio for review.
- PDF/UA conformance (--verapdf): runs a formal accessibility validation
  if the validator is installed.

Examples:
  # Scan a single page
  pdfa11ycrawl scan https://example.com/downloads

  # Follow same-origin links breadth-first
  pdfa11ycrawl scan --recursive https://example.com

  # List PDFs without downloading them
  pdfa11ycrawl scan --dry-run https://example.com/downloads

  # Full analysis with text extraction and PDF/UA validation
  pdfa11ycrawl scan --pdftotext --verapdf https://example.com/docs

  # Several sites at once
  pdfa11ycrawl scan --recursive https://a.example.com https://b.example.com

Configuration file (.pdfa11ycrawl) example:
  sites:
    docs.example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      maxBytes: 10000000`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Crawl behavior flags
	cmd.Flags().BoolP("recursive", "r", false,
		"Follow same-origin links breadth-first")
	cmd.Flags().Bool("dry-run", false,
		"Discover PDF links without downloading or analyzing them")
	cmd.Flags().Bool("include-external-pdfs", false,
		"Also record PDFs hosted on other origins")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch per crawl")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each page fetch and download")
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Politeness delay between page fetches")

	// Download flags
	cmd.Flags().Int64("max-bytes", config.DefaultMaxBytes,
		"Per-document download ceiling in bytes")
	cmd.Flags().StringP("out", "o", config.DefaultOutDir,
		"Base output directory for downloads and reports")

	// Analysis flags
	cmd.Flags().Bool("pdftotext", false,
		"Extract the text layer of text-based PDFs (requires pdftotext)")
	cmd.Flags().Bool("verapdf", false,
		"Run PDF/UA conformance checks (requires verapdf, slower)")

	// Report flags
	cmd.Flags().BoolP("markdown", "m", false,
		"Additionally write a Markdown report (report.md)")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawls when multiple URLs are given")

	// Configuration and persistence
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pdfa11ycrawl in current or home directory)")
	cmd.Flags().Bool("no-db", false,
		"Do not record this run in the scan history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Recursive, err = cmd.Flags().GetBool("recursive")
	if err != nil {
		return nil, err
	}

	cfg.DryRun, err = cmd.Flags().GetBool("dry-run")
	if err != nil {
		return nil, err
	}

	cfg.IncludeExternalPDFs, err = cmd.Flags().GetBool("include-external-pdfs")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.MaxBytes, err = cmd.Flags().GetInt64("max-bytes")
	if err != nil {
		return nil, err
	}

	cfg.OutDir, err = cmd.Flags().GetString("out")
	if err != nil {
		return nil, err
	}

	cfg.ExtractText, err = cmd.Flags().GetBool("pdftotext")
	if err != nil {
		return nil, err
	}

	cfg.Conformance, err = cmd.Flags().GetBool("verapdf")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	// Positional arguments are the start URLs.
	cfg.Targets = args

	return cfg, nil
}

// runScan executes the crawl for every target.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify one or more start URLs as arguments)")
	}

	logger.Info("starting scan",
		"targets", cfg.Targets,
		"recursive", cfg.Recursive,
		"dryRun", cfg.DryRun,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.ScanDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close() //nolint:errcheck // best-effort close on exit
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// One timestamped directory per run, shared by all targets.
	runDir := filepath.Join(cfg.OutDir, time.Now().Format("20060102-150405"))
	targetDirs, err := targetDirectories(runDir, cfg.Targets)
	if err != nil {
		return err
	}

	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, db, targetDirs, logger)
	}

	return runSequentialScan(ctx, cfg, db, targetDirs, logger)
}

// targetDirectories assigns each target its own directory under the run
// directory. A single target writes directly into the run directory.
func targetDirectories(runDir string, targets []string) (map[string]string, error) {
	dirs := make(map[string]string, len(targets))
	if len(targets) == 1 {
		dirs[targets[0]] = runDir
		return dirs, nil
	}

	for _, target := range targets {
		u, err := url.Parse(target)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid start URL %q", target)
		}
		dirs[target] = filepath.Join(runDir, strings.ReplaceAll(u.Host, ":", "_"))
	}
	return dirs, nil
}

// runSequentialScan crawls targets one at a time.
func runSequentialScan(ctx context.Context, cfg *config.Config, db *database.ScanDB, targetDirs map[string]string, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Scanning %s...\n", target)

		crawlReport, err := crawlTarget(ctx, cfg, logger, target, targetDirs[target])
		if err != nil {
			logger.Error("crawl failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", target, err)
			continue
		}

		if err := outputReports(cfg, crawlReport, targetDirs[target]); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}

		if err := saveCrawlReport(ctx, db, crawlReport, logger); err != nil {
			logger.Error("failed to save crawl report", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchScan crawls multiple targets concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, db *database.ScanDB, targetDirs map[string]string, logger *slog.Logger) error {
	fmt.Printf("Starting batch scan of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func(ctx context.Context, startURL string) (*model.CrawlReport, error) {
			return crawlTarget(ctx, cfg, logger, startURL, targetDirs[startURL])
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, batchErr := bp.ProcessBatch(ctx, cfg.Targets)

	// Output whatever completed, even if some targets failed.
	for i, crawlReport := range reports {
		if crawlReport == nil {
			continue
		}
		target := cfg.Targets[i]
		fmt.Printf("[%d/%d] Crawl completed: %s\n", i+1, len(cfg.Targets), target)

		if err := outputReports(cfg, crawlReport, targetDirs[target]); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}
		if err := saveCrawlReport(ctx, db, crawlReport, logger); err != nil {
			logger.Error("failed to save crawl report", "target", target, "error", err)
		}
	}

	fmt.Printf("\nBatch scan completed in %s\n", time.Since(startTime).Round(time.Millisecond))
	return batchErr
}

// crawlTarget builds the per-target spider and pipeline and runs the crawl.
func crawlTarget(ctx context.Context, cfg *config.Config, logger *slog.Logger, target, outDir string) (*model.CrawlReport, error) {
	site := siteConfigFor(cfg, target)

	timeout := cfg.Timeout
	if site.Timeout > 0 {
		timeout = site.Timeout
	}
	maxBytes := cfg.MaxBytes
	if site.MaxBytes > 0 {
		maxBytes = site.MaxBytes
	}

	fetcher := crawler.NewFetcher(
		crawler.WithFetcherTimeout(timeout),
		crawler.WithFetcherUserAgent(cfg.UserAgent),
		crawler.WithFetcherHeaders(site.Headers),
		crawler.WithFetcherCookie(site.Cookie),
	)

	downloader := download.NewDownloader(
		download.WithTimeout(timeout),
		download.WithMaxBytes(maxBytes),
		download.WithUserAgent(cfg.UserAgent),
		download.WithHeaders(site.Headers),
		download.WithCookie(site.Cookie),
	)

	p := pipeline.NewDocumentPipeline(
		downloader,
		analyze.NewExecRunner(),
		cfg,
		outDir,
		pipeline.WithLogger(logger),
	)

	spiderOpts := []crawler.SpiderOption{
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithRecursive(cfg.Recursive),
		crawler.WithDryRun(cfg.DryRun),
		crawler.WithIncludeExternalPDFs(cfg.IncludeExternalPDFs),
		crawler.WithDelay(cfg.Delay),
		crawler.WithSpiderLogger(logger),
	}
	if cfg.Verbose {
		spiderOpts = append(spiderOpts, crawler.WithProgress(func(fetched int, pageURL string) {
			fmt.Fprintf(os.Stderr, "[%d] %s\n", fetched, pageURL)
		}))
	}

	spider := crawler.NewSpider(fetcher, pipeline.NewProcessor(p), spiderOpts...)
	return spider.Crawl(ctx, target)
}

// siteConfigFor resolves the per-site overrides for a target URL.
func siteConfigFor(cfg *config.Config, target string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return cfg.SiteConfigs.Defaults
	}
	return cfg.SiteConfigs.GetSiteConfig(u.Host)
}

// outputReports writes the machine-readable reports into the target's
// directory and prints the console summary.
func outputReports(cfg *config.Config, crawlReport *model.CrawlReport, outDir string) error {
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	jsonPath := filepath.Join(outDir, "report.json")
	if err := writeReportFile(jsonPath, crawlReport, func(f *os.File) report.Writer {
		return report.NewJSONWriter(f, report.WithPrettyPrint())
	}); err != nil {
		return err
	}

	csvPath := filepath.Join(outDir, "report.csv")
	if err := writeReportFile(csvPath, crawlReport, func(f *os.File) report.Writer {
		return report.NewCSVWriter(f)
	}); err != nil {
		return err
	}

	if cfg.MarkdownReport {
		mdPath := filepath.Join(outDir, "report.md")
		if err := writeReportFile(mdPath, crawlReport, func(f *os.File) report.Writer {
			return report.NewMarkdownWriter(f)
		}); err != nil {
			return err
		}
	}

	fmt.Println()
	if _, err := report.NewSimpleWriter(os.Stdout, report.WithVerbose(cfg.Verbose)).Write(crawlReport); err != nil {
		return err
	}
	fmt.Printf("\nReports:\n  %s\n  %s\n", csvPath, jsonPath)
	if cfg.DryRun {
		fmt.Println("\nDry-run complete (no PDFs downloaded).")
	}
	return nil
}

// writeReportFile creates path and streams the report into it.
func writeReportFile(path string, crawlReport *model.CrawlReport, newWriter func(*os.File) report.Writer) error {
	f, err := os.Create(path) //nolint:gosec // run-owned output directory
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	_, werr := newWriter(f).Write(crawlReport)
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("failed to write %s: %w", path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("failed to close %s: %w", path, cerr)
	}
	return nil
}

// saveCrawlReport persists the run in the scan history database.
func saveCrawlReport(ctx context.Context, db *database.ScanDB, crawlReport *model.CrawlReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	runID, err := db.SaveCrawlReport(ctx, crawlReport)
	if err != nil {
		return err
	}
	logger.Info("crawl report saved", "runID", runID, "startURL", crawlReport.StartURL)
	return nil
}
