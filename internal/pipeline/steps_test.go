package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shiori-dev/pdfa11ycrawl/internal/analyze"
	"github.com/shiori-dev/pdfa11ycrawl/internal/download"
	"github.com/shiori-dev/pdfa11ycrawl/internal/model"
)

// fakeRunner scripts the external tools for step tests. onRun, when set,
// is invoked with the call arguments so a test can fabricate tool output
// files.
type fakeRunner struct {
	installed map[string]bool
	stdout    string
	exitCode  int
	onRun     func(args []string)
}

func (f *fakeRunner) Installed(tool string) bool {
	return f.installed[tool]
}

func (f *fakeRunner) Run(_ context.Context, _ time.Duration, _ string, args ...string) (*analyze.RunResult, error) {
	if f.onRun != nil {
		f.onRun(args)
	}
	return &analyze.RunResult{Stdout: f.stdout, ExitCode: f.exitCode}, nil
}

// writeTempPDF creates a placeholder document file and returns its path.
func writeTempPDF(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestDownloadStep checks that transport outcomes land on the record.
func TestDownloadStep(t *testing.T) {
	t.Parallel()

	t.Run("complete download sets local path", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4 content"))
		}))
		defer srv.Close()

		outDir := t.TempDir()
		step := NewDownloadStep(download.NewDownloader(), outDir)
		record := model.NewDocumentResult(srv.URL+"/doc.pdf", srv.URL+"/")

		if err := step.Do(context.Background(), record); err != nil {
			t.Fatalf("Do: %v", err)
		}

		if record.HTTPStatus == nil || *record.HTTPStatus != http.StatusOK {
			t.Errorf("HTTPStatus = %v", record.HTTPStatus)
		}
		if record.SHA256 == "" || len(record.SHA256) != 64 {
			t.Errorf("SHA256 = %q", record.SHA256)
		}
		if record.LocalPath == "" || !strings.HasPrefix(record.LocalPath, outDir) {
			t.Errorf("LocalPath = %q", record.LocalPath)
		}
		if _, err := os.Stat(record.LocalPath); err != nil {
			t.Errorf("stored file: %v", err)
		}
	})

	t.Run("HTTP failure leaves no local path", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.NotFound(w, nil)
		}))
		defer srv.Close()

		step := NewDownloadStep(download.NewDownloader(), t.TempDir())
		record := model.NewDocumentResult(srv.URL+"/doc.pdf", srv.URL+"/")

		if err := step.Do(context.Background(), record); err != nil {
			t.Fatalf("Do: %v", err)
		}
		if record.LocalPath != "" {
			t.Errorf("LocalPath = %q, want empty", record.LocalPath)
		}
		if record.JoinedNotes() != "HTTP 404" {
			t.Errorf("notes = %q", record.JoinedNotes())
		}
	})
}

// TestFontStep checks the download-success gate and field propagation.
func TestFontStep(t *testing.T) {
	t.Parallel()

	t.Run("skipped without a stored file", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{installed: map[string]bool{"pdffonts": true}}
		step := NewFontStep(runner)
		record := model.NewDocumentResult("http://example.com/x.pdf", "http://example.com/")

		if err := step.Do(context.Background(), record); err != nil {
			t.Fatalf("Do: %v", err)
		}
		if record.HasTextLayer != model.TristateUnknown || record.FontObjectCount != nil {
			t.Errorf("failed download must leave verdict unknown: %+v", record)
		}
	})

	t.Run("font rows populate the record", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{
			installed: map[string]bool{"pdffonts": true},
			stdout: "name type\n" +
				"------ ------\n" +
				"Helvetica Type 1\n",
		}
		step := NewFontStep(runner)
		record := model.NewDocumentResult("http://example.com/x.pdf", "http://example.com/")
		record.LocalPath = writeTempPDF(t, t.TempDir())

		if err := step.Do(context.Background(), record); err != nil {
			t.Fatalf("Do: %v", err)
		}
		if record.HasTextLayer != model.TristateTrue {
			t.Errorf("HasTextLayer = %v", record.HasTextLayer)
		}
		if record.FontObjectCount == nil || *record.FontObjectCount != 1 {
			t.Errorf("FontObjectCount = %v", record.FontObjectCount)
		}
	})
}

// TestExtractStep checks the three-way gate and the density arithmetic.
func TestExtractStep(t *testing.T) {
	t.Parallel()

	t.Run("gated off when not requested", func(t *testing.T) {
		t.Parallel()

		step := NewExtractStep(&fakeRunner{installed: map[string]bool{"pdftotext": true}}, false)
		record := model.NewDocumentResult("http://example.com/x.pdf", "http://example.com/")
		record.LocalPath = writeTempPDF(t, t.TempDir())
		record.HasTextLayer = model.TristateTrue

		if err := step.Do(context.Background(), record); err != nil {
			t.Fatalf("Do: %v", err)
		}
		if record.ExtractionAttempted {
			t.Error("extraction must not be attempted without the flag")
		}
	})

	t.Run("gated off without a text layer", func(t *testing.T) {
		t.Parallel()

		step := NewExtractStep(&fakeRunner{installed: map[string]bool{"pdftotext": true}}, true)
		record := model.NewDocumentResult("http://example.com/x.pdf", "http://example.com/")
		record.LocalPath = writeTempPDF(t, t.TempDir())
		record.HasTextLayer = model.TristateFalse

		if err := step.Do(context.Background(), record); err != nil {
			t.Fatalf("Do: %v", err)
		}
		if record.ExtractionAttempted {
			t.Error("image-only document must not be extracted")
		}
	})

	t.Run("density of 250 bytes over 1000 is exactly 0.25", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		runner := &fakeRunner{
			installed: map[string]bool{"pdftotext": true},
			onRun: func(args []string) {
				// The output path is the final argument.
				out := args[len(args)-1]
				if err := os.WriteFile(out, []byte(strings.Repeat("t", 250)), 0o600); err != nil {
					t.Error(err)
				}
			},
		}

		step := NewExtractStep(runner, true)
		record := model.NewDocumentResult("http://example.com/x.pdf", "http://example.com/")
		record.LocalPath = writeTempPDF(t, dir)
		record.HasTextLayer = model.TristateTrue
		record.BytesDownloaded = model.Int64Ptr(1000)

		if err := step.Do(context.Background(), record); err != nil {
			t.Fatalf("Do: %v", err)
		}

		if !record.ExtractionAttempted {
			t.Fatal("extraction must be attempted")
		}
		if got, known := record.ExtractionSucceeded.Bool(); !known || !got {
			t.Fatalf("ExtractionSucceeded = %v", record.ExtractionSucceeded)
		}
		if record.ExtractedTextPath == "" || !strings.HasSuffix(record.ExtractedTextPath, ".pdftotext.txt") {
			t.Errorf("ExtractedTextPath = %q", record.ExtractedTextPath)
		}
		if record.ExtractedByteCount == nil || *record.ExtractedByteCount != 250 {
			t.Errorf("ExtractedByteCount = %v", record.ExtractedByteCount)
		}
		if record.TextDensity == nil || *record.TextDensity != 0.25 {
			t.Errorf("TextDensity = %v", record.TextDensity)
		}
	})

	t.Run("unreadable output keeps succeeded, notes the read failure", func(t *testing.T) {
		t.Parallel()

		// The tool "succeeds" but never writes its output file.
		runner := &fakeRunner{installed: map[string]bool{"pdftotext": true}}
		step := NewExtractStep(runner, true)
		record := model.NewDocumentResult("http://example.com/x.pdf", "http://example.com/")
		record.LocalPath = writeTempPDF(t, t.TempDir())
		record.HasTextLayer = model.TristateTrue
		record.BytesDownloaded = model.Int64Ptr(1000)

		if err := step.Do(context.Background(), record); err != nil {
			t.Fatalf("Do: %v", err)
		}

		if got, known := record.ExtractionSucceeded.Bool(); !known || !got {
			t.Errorf("read failure must not revert success: %v", record.ExtractionSucceeded)
		}
		if !strings.Contains(record.JoinedNotes(), "pdftotext read failed") {
			t.Errorf("notes = %q", record.JoinedNotes())
		}
		if record.TextDensity != nil {
			t.Error("density must stay absent when the output is unreadable")
		}
	})
}

// TestConformanceStep checks gating and the optional-tool rule end to end.
func TestConformanceStep(t *testing.T) {
	t.Parallel()

	t.Run("gated off when not requested", func(t *testing.T) {
		t.Parallel()

		step := NewConformanceStep(&fakeRunner{installed: map[string]bool{"verapdf": true}}, false)
		record := model.NewDocumentResult("http://example.com/x.pdf", "http://example.com/")
		record.LocalPath = writeTempPDF(t, t.TempDir())

		if err := step.Do(context.Background(), record); err != nil {
			t.Fatalf("Do: %v", err)
		}
		if record.ConformanceAttempted {
			t.Error("conformance must not run without the flag")
		}
	})

	t.Run("absent validator is silent", func(t *testing.T) {
		t.Parallel()

		step := NewConformanceStep(&fakeRunner{installed: map[string]bool{}}, true)
		record := model.NewDocumentResult("http://example.com/x.pdf", "http://example.com/")
		record.LocalPath = writeTempPDF(t, t.TempDir())

		if err := step.Do(context.Background(), record); err != nil {
			t.Fatalf("Do: %v", err)
		}
		if record.ConformanceAttempted {
			t.Error("absent validator must not count as attempted")
		}
		if record.JoinedNotes() != "" {
			t.Errorf("notes = %q", record.JoinedNotes())
		}
	})

	t.Run("verdict lands on the record", func(t *testing.T) {
		t.Parallel()

		step := NewConformanceStep(&fakeRunner{
			installed: map[string]bool{"verapdf": true},
			stdout:    "PDF/UA-1 validation: PASS",
		}, true)
		record := model.NewDocumentResult("http://example.com/x.pdf", "http://example.com/")
		record.LocalPath = writeTempPDF(t, t.TempDir())

		if err := step.Do(context.Background(), record); err != nil {
			t.Fatalf("Do: %v", err)
		}
		if !record.ConformanceAttempted {
			t.Fatal("installed validator must count as attempted")
		}
		if got, known := record.ConformancePassed.Bool(); !known || !got {
			t.Errorf("ConformancePassed = %v", record.ConformancePassed)
		}
	})
}
