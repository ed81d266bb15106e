package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/shiori-dev/pdfa11ycrawl/internal/analyze"
	"github.com/shiori-dev/pdfa11ycrawl/internal/config"
	"github.com/shiori-dev/pdfa11ycrawl/internal/crawler"
	"github.com/shiori-dev/pdfa11ycrawl/internal/download"
	"github.com/shiori-dev/pdfa11ycrawl/internal/model"
)

// DownloadStep streams the document to the output directory and records
// the transport outcome. The local path is set only for a complete,
// hash-verified download; later stages key off that.
type DownloadStep struct {
	// downloader performs the streaming GET.
	downloader *download.Downloader

	// outDir is where documents are stored, one file per URL hash.
	outDir string
}

// NewDownloadStep creates the download stage.
func NewDownloadStep(downloader *download.Downloader, outDir string) *DownloadStep {
	return &DownloadStep{downloader: downloader, outDir: outDir}
}

// Name returns the step name.
func (s *DownloadStep) Name() string {
	return "download"
}

// Do downloads the record's URL and copies the transport fields onto it.
func (s *DownloadStep) Do(ctx context.Context, record *model.DocumentResult) error {
	dest := filepath.Join(s.outDir, crawler.FilenameForURL(record.PDFURL))

	res := s.downloader.Download(ctx, record.PDFURL, dest)

	record.HTTPStatus = res.Status
	record.ContentType = res.ContentType
	record.BytesDownloaded = res.Bytes
	record.SHA256 = res.SHA256
	record.AddNote(res.Note)

	if res.Complete {
		record.LocalPath = dest
	}

	return nil
}

// FontStep inventories the document's font objects to decide whether a
// text layer is present. It runs whenever the download completed; it is
// not gated on any opt-in flag.
type FontStep struct {
	// runner executes the external tool.
	runner analyze.Runner
}

// NewFontStep creates the font-inventory stage.
func NewFontStep(runner analyze.Runner) *FontStep {
	return &FontStep{runner: runner}
}

// Name returns the step name.
func (s *FontStep) Name() string {
	return "fonts"
}

// Do runs the font inventory against the stored file.
func (s *FontStep) Do(ctx context.Context, record *model.DocumentResult) error {
	if record.LocalPath == "" {
		// Nothing on disk to inspect; the text-layer verdict stays unknown.
		return nil
	}

	rep := analyze.InspectFonts(ctx, s.runner, record.LocalPath, config.FontToolTimeout)
	record.HasTextLayer = rep.HasTextLayer
	record.FontObjectCount = rep.Count
	record.AddNote(rep.Note)

	return nil
}

// ExtractStep runs opt-in text extraction and measures the output. It only
// applies when extraction was requested, the font stage confirmed a text
// layer, and the downloaded file is still on disk.
type ExtractStep struct {
	// runner executes the external tool.
	runner analyze.Runner

	// enabled mirrors the extraction opt-in flag.
	enabled bool
}

// NewExtractStep creates the text-extraction stage.
func NewExtractStep(runner analyze.Runner, enabled bool) *ExtractStep {
	return &ExtractStep{runner: runner, enabled: enabled}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do extracts the text layer and computes the density ratio.
func (s *ExtractStep) Do(ctx context.Context, record *model.DocumentResult) error {
	if !s.enabled || record.HasTextLayer != model.TristateTrue || !fileExists(record.LocalPath) {
		// ExtractionAttempted stays false and every extraction field
		// stays absent.
		return nil
	}

	record.ExtractionAttempted = true
	txtPath := strings.TrimSuffix(record.LocalPath, ".pdf") + ".pdftotext.txt"

	rep := analyze.ExtractText(ctx, s.runner, record.LocalPath, txtPath, config.ExtractToolTimeout)
	record.ExtractionSucceeded = model.TristateOf(rep.Succeeded)
	if !rep.Succeeded {
		record.AddNote(rep.Note)
		return nil
	}
	record.ExtractedTextPath = txtPath

	if record.BytesDownloaded == nil || *record.BytesDownloaded == 0 {
		return nil
	}

	m, err := analyze.MeasureText(txtPath)
	if err != nil {
		// The extraction itself still counts as succeeded.
		record.AddNote("pdftotext read failed: " + err.Error())
		return nil
	}

	record.ExtractedByteCount = &m.Bytes
	record.ExtractedCharCount = &m.Chars
	density := float64(m.Bytes) / float64(*record.BytesDownloaded)
	record.TextDensity = &density

	return nil
}

// ConformanceStep runs the opt-in PDF/UA validation. An absent validator
// binary is skipped silently; the tool is optional host tooling.
type ConformanceStep struct {
	// runner executes the external tool.
	runner analyze.Runner

	// enabled mirrors the conformance opt-in flag.
	enabled bool
}

// NewConformanceStep creates the conformance stage.
func NewConformanceStep(runner analyze.Runner, enabled bool) *ConformanceStep {
	return &ConformanceStep{runner: runner, enabled: enabled}
}

// Name returns the step name.
func (s *ConformanceStep) Name() string {
	return "conformance"
}

// Do validates the stored file against the accessibility profile.
func (s *ConformanceStep) Do(ctx context.Context, record *model.DocumentResult) error {
	if !s.enabled || !fileExists(record.LocalPath) {
		return nil
	}

	rep := analyze.CheckConformance(ctx, s.runner, record.LocalPath, config.ConformanceToolTimeout)
	record.ConformanceAttempted = rep.Attempted
	record.ConformancePassed = rep.Passed
	record.AddNote(rep.Note)

	return nil
}

// NewDocumentPipeline assembles the standard four-stage pipeline from the
// run configuration. The downloader is supplied by the caller so per-site
// headers and limits can be baked in.
func NewDocumentPipeline(downloader *download.Downloader, runner analyze.Runner, cfg *config.Config, outDir string, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewDownloadStep(downloader, outDir),
		NewFontStep(runner),
		NewExtractStep(runner, cfg.ExtractText),
		NewConformanceStep(runner, cfg.Conformance),
	)
	return p
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
