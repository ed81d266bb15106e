package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfigDefaults verifies constructor defaults.
func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.MaxBytes != DefaultMaxBytes {
		t.Errorf("MaxBytes = %d, want %d", cfg.MaxBytes, DefaultMaxBytes)
	}
	if cfg.MaxPages != DefaultMaxPages {
		t.Errorf("MaxPages = %d, want %d", cfg.MaxPages, DefaultMaxPages)
	}
	if cfg.OutDir != DefaultOutDir {
		t.Errorf("OutDir = %q, want %q", cfg.OutDir, DefaultOutDir)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q, want %q", cfg.UserAgent, DefaultUserAgent)
	}
}

// TestConfigValidate exercises every validation branch.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Targets = []string{"http://example.com/"}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"no targets", func(c *Config) { c.Targets = nil }, ErrNoTarget},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"zero max bytes", func(c *Config) { c.MaxBytes = 0 }, ErrInvalidMaxBytes},
		{"zero max pages", func(c *Config) { c.MaxPages = 0 }, ErrInvalidMaxPages},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"negative delay", func(c *Config) { c.Delay = -time.Second }, ErrInvalidDelay},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestLoadConfigFile tests YAML parsing and site-config merging.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("valid file with defaults and overrides", func(t *testing.T) {
		t.Parallel()

		content := `defaults:
  headers:
    Accept-Language: en
sites:
  docs.example.com:
    cookie: "session=abc"
    maxBytes: 1000000
    headers:
      Authorization: "Bearer tok"
`
		path := filepath.Join(t.TempDir(), ".pdfa11ycrawl")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile: %v", err)
		}

		sc := cf.GetSiteConfig("docs.example.com")
		if sc.Cookie != "session=abc" {
			t.Errorf("Cookie = %q", sc.Cookie)
		}
		if sc.MaxBytes != 1000000 {
			t.Errorf("MaxBytes = %d", sc.MaxBytes)
		}
		if sc.Headers["Authorization"] != "Bearer tok" {
			t.Errorf("Authorization header = %q", sc.Headers["Authorization"])
		}
		// Defaults merge through.
		if sc.Headers["Accept-Language"] != "en" {
			t.Errorf("Accept-Language header = %q", sc.Headers["Accept-Language"])
		}

		// Unknown host falls back to defaults only.
		other := cf.GetSiteConfig("other.example.com")
		if other.Cookie != "" {
			t.Errorf("unexpected cookie for unconfigured host: %q", other.Cookie)
		}
		if other.Headers["Accept-Language"] != "en" {
			t.Errorf("defaults not applied to unconfigured host")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".pdfa11ycrawl")
		if err := os.WriteFile(path, []byte("sites: [broken"), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for malformed YAML")
		}
	})
}
