// Package config holds the crawl configuration: defaults, CLI-populated
// settings, validation, XDG directory helpers, and the optional YAML
// per-site configuration file.
package config
