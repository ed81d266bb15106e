package crawler

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

// pdfURLPattern matches a case-insensitive ".pdf" boundary in a URL: at the
// end of the path, before a query, or before a fragment. This is a shape
// heuristic, not content-type verification; false negatives (PDFs without
// the extension) and false positives (".pdf" in a query value) are accepted
// tradeoffs.
var pdfURLPattern = regexp.MustCompile(`(?i)\.pdf(\?|#|$)`)

// Normalize resolves href against base, strips the fragment component, and
// returns the absolute URL. It returns an empty string when href is empty,
// unparseable, or does not resolve to an absolute URL.
func Normalize(base *url.URL, href string) string {
	if href == "" || base == nil {
		return ""
	}

	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(u)
	resolved.Fragment = ""

	if !resolved.IsAbs() {
		return ""
	}

	return resolved.String()
}

// IsLikelyPDF reports whether the URL looks like it points at a PDF
// document, judged purely by its shape.
func IsLikelyPDF(rawURL string) bool {
	return pdfURLPattern.MatchString(rawURL)
}

// SameOrigin reports whether two URLs share a scheme and host (including
// port). Unparseable URLs are never same-origin.
func SameOrigin(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}

	return strings.EqualFold(ua.Scheme, ub.Scheme) && strings.EqualFold(ua.Host, ub.Host)
}

// FilenameForURL derives a deterministic local filename for a document URL.
// The name is the first 16 hex characters of the URL's SHA-256, which keeps
// names stable across runs without leaking the URL into the filesystem.
// Two URLs colliding on the prefix would silently share a file; at 64 bits
// of prefix that is acceptable for this tool's scale.
func FilenameForURL(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:16] + ".pdf"
}
