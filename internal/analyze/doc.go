// Package analyze wraps the external judgment tools run against each
// downloaded PDF: a font inventory (pdffonts), text extraction (pdftotext),
// and a formal accessibility conformance check (verapdf). Every tool call
// is bounded by a timeout and every failure mode collapses into tri-state
// fields plus a diagnostic note; nothing in this package aborts a crawl.
package analyze
