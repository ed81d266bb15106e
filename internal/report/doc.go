// Package report renders crawl reports in the supported output formats:
// JSON and CSV for tooling, Markdown for sharing, and a plain-text console
// summary. All writers implement a common interface so the CLI can fan one
// report out to several destinations.
package report
