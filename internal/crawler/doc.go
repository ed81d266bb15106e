// Package crawler implements link discovery and the crawl orchestrator.
//
// It contains the URL normalizer and PDF classifier, the HTML anchor
// extractor, the page fetcher, and the Spider that drives the breadth-first
// traversal: frontier queue, visited sets, same-origin policy, and per-link
// dispatch of PDF candidates to the analysis pipeline.
package crawler
