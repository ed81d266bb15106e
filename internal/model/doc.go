// Package model defines the core data structures shared across the crawler,
// the analysis pipeline, and the report writers.
//
// The central type is DocumentResult: one record per discovered PDF
// candidate, created when a link is classified as PDF-shaped and populated
// stage by stage (transport, text layer, extraction, conformance). The
// record is immutable once its pipeline completes.
package model
