package config

import "time"

// SiteConfig holds per-site overrides for a single host. This allows
// customizing request behavior for sites that need authentication headers
// or tighter limits without changing the global settings.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send with requests to this host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxBytes overrides the global download ceiling for this host.
	// Zero means the global setting applies.
	MaxBytes int64 `yaml:"maxBytes,omitempty"`

	// Timeout overrides the global HTTP timeout for this host.
	// Zero means the global setting applies.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// File represents the structure of the .pdfa11ycrawl configuration file.
type File struct {
	// Sites maps hostnames to their overrides. Keys are bare hosts
	// (e.g., "docs.example.com"), optionally with a port.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains overrides applied to every site unless a
	// site-specific entry replaces them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a host, merging the
// site-specific entry over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.MaxBytes > 0 {
			result.MaxBytes = siteConfig.MaxBytes
		}
		if siteConfig.Timeout > 0 {
			result.Timeout = siteConfig.Timeout
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}
