// Package pipeline sequences the per-document analysis stages: download,
// font inventory, text extraction, and conformance checking. Each stage
// gates itself on the outcome of earlier stages and folds failures into
// the document record; no stage failure aborts the crawl.
//
// The package also provides a BatchProcessor for crawling several start
// URLs concurrently with a bounded worker count.
package pipeline
