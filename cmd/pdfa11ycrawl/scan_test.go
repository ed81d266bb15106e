package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shiori-dev/pdfa11ycrawl/internal/config"
)

// TestBuildConfig verifies flag-to-config mapping.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		cfg, err := buildConfig(cmd, []string{"http://example.com"})
		if err != nil {
			t.Fatalf("buildConfig: %v", err)
		}

		if cfg.Recursive || cfg.DryRun || cfg.IncludeExternalPDFs {
			t.Error("crawl behavior flags must default to false")
		}
		if cfg.MaxBytes != config.DefaultMaxBytes {
			t.Errorf("MaxBytes = %d", cfg.MaxBytes)
		}
		if cfg.MaxPages != config.DefaultMaxPages {
			t.Errorf("MaxPages = %d", cfg.MaxPages)
		}
		if cfg.Timeout != config.DefaultTimeout {
			t.Errorf("Timeout = %s", cfg.Timeout)
		}
		if !cfg.SaveToDB {
			t.Error("runs must be saved by default")
		}
		if len(cfg.Targets) != 1 || cfg.Targets[0] != "http://example.com" {
			t.Errorf("Targets = %v", cfg.Targets)
		}
	})

	t.Run("flags override defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		for flag, value := range map[string]string{
			"recursive":             "true",
			"dry-run":               "true",
			"include-external-pdfs": "true",
			"max-bytes":             "1000",
			"max-pages":             "5",
			"timeout":               "3s",
			"delay":                 "250ms",
			"pdftotext":             "true",
			"verapdf":               "true",
			"markdown":              "true",
			"no-db":                 "true",
			"out":                   "custom-out",
		} {
			if err := cmd.Flags().Set(flag, value); err != nil {
				t.Fatalf("set %s: %v", flag, err)
			}
		}

		cfg, err := buildConfig(cmd, []string{"http://example.com"})
		if err != nil {
			t.Fatalf("buildConfig: %v", err)
		}

		if !cfg.Recursive || !cfg.DryRun || !cfg.IncludeExternalPDFs {
			t.Error("crawl behavior flags not applied")
		}
		if cfg.MaxBytes != 1000 || cfg.MaxPages != 5 {
			t.Errorf("limits = %d bytes / %d pages", cfg.MaxBytes, cfg.MaxPages)
		}
		if cfg.Timeout != 3*time.Second || cfg.Delay != 250*time.Millisecond {
			t.Errorf("timing = %s / %s", cfg.Timeout, cfg.Delay)
		}
		if !cfg.ExtractText || !cfg.Conformance || !cfg.MarkdownReport {
			t.Error("analysis/report flags not applied")
		}
		if cfg.SaveToDB {
			t.Error("no-db must disable persistence")
		}
		if cfg.OutDir != "custom-out" {
			t.Errorf("OutDir = %q", cfg.OutDir)
		}
	})

	t.Run("explicit missing config file fails", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
			t.Fatal(err)
		}
		if _, err := buildConfig(cmd, []string{"http://example.com"}); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("config file is loaded", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "cfg.yaml")
		content := "sites:\n  docs.example.com:\n    cookie: \"sid=1\"\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := NewScanCmd()
		if err := cmd.Flags().Set("config", path); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"http://docs.example.com/"})
		if err != nil {
			t.Fatalf("buildConfig: %v", err)
		}
		site := siteConfigFor(cfg, "http://docs.example.com/")
		if site.Cookie != "sid=1" {
			t.Errorf("site cookie = %q", site.Cookie)
		}
	})
}

// TestBuildConfigValidation exercises the fail-fast path.
func TestBuildConfigValidation(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, config.ErrNoTarget) {
		t.Errorf("err = %v, want ErrNoTarget", err)
	}
}

// TestTargetDirectories verifies per-target output layout.
func TestTargetDirectories(t *testing.T) {
	t.Parallel()

	t.Run("single target uses the run directory", func(t *testing.T) {
		t.Parallel()

		dirs, err := targetDirectories("out/run", []string{"http://example.com/docs"})
		if err != nil {
			t.Fatalf("targetDirectories: %v", err)
		}
		if dirs["http://example.com/docs"] != filepath.Join("out", "run") {
			t.Errorf("dirs = %v", dirs)
		}
	})

	t.Run("multiple targets get host subdirectories", func(t *testing.T) {
		t.Parallel()

		dirs, err := targetDirectories("out/run", []string{
			"http://a.example.com/",
			"http://b.example.com:8080/",
		})
		if err != nil {
			t.Fatalf("targetDirectories: %v", err)
		}
		if !strings.HasSuffix(dirs["http://a.example.com/"], "a.example.com") {
			t.Errorf("dir = %q", dirs["http://a.example.com/"])
		}
		if strings.Contains(filepath.Base(dirs["http://b.example.com:8080/"]), ":") {
			t.Errorf("port separator must be sanitized: %q", dirs["http://b.example.com:8080/"])
		}
	})

	t.Run("invalid target", func(t *testing.T) {
		t.Parallel()

		if _, err := targetDirectories("out/run", []string{"not a url", "http://ok.example.com"}); err == nil {
			t.Error("expected error for invalid target")
		}
	})
}
