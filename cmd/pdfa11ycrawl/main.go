// Package main provides the entry point for the pdfa11ycrawl CLI.
//
// pdfa11ycrawl crawls a web page (optionally following same-origin links),
// downloads the PDF documents it links to, and analyzes each one for basic
// accessibility characteristics such as text-layer presence (image-only
// detection) and optional PDF/UA conformance.
//
// Usage:
//
//	pdfa11ycrawl scan <url>
//	pdfa11ycrawl scan --recursive <url>
//
// See --help for all available options.
package main

// main is the entry point for pdfa11ycrawl.
func main() {
	Execute()
}
