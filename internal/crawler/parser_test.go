package crawler

import (
	"strings"
	"testing"
)

// TestParserLinks tests anchor extraction order and normalization.
func TestParserLinks(t *testing.T) {
	t.Parallel()

	t.Run("document order with mixed hrefs", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
			<a href="/first.pdf">First</a>
			<p><a href="second.html">Second</a></p>
			<a href="http://other.com/third">Third</a>
			<a href="/anchor#frag">Fragment</a>
		</body></html>`

		parser, err := NewParser("http://example.com/dir/page.html")
		if err != nil {
			t.Fatal(err)
		}

		links, err := parser.Links(strings.NewReader(page))
		if err != nil {
			t.Fatalf("Links: %v", err)
		}

		want := []string{
			"http://example.com/first.pdf",
			"http://example.com/dir/second.html",
			"http://other.com/third",
			"http://example.com/anchor",
		}
		if len(links) != len(want) {
			t.Fatalf("got %d links, want %d: %v", len(links), len(want), links)
		}
		for i := range want {
			if links[i] != want[i] {
				t.Errorf("links[%d] = %q, want %q", i, links[i], want[i])
			}
		}
	})

	t.Run("skips non-navigational schemes", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
			<a href="javascript:void(0)">JS</a>
			<a href="mailto:x@example.com">Mail</a>
			<a href="tel:+1234">Tel</a>
			<a href="data:text/plain,hi">Data</a>
			<a href="#">Hash</a>
			<a href="/real">Real</a>
		</body></html>`

		parser, err := NewParser("http://example.com/")
		if err != nil {
			t.Fatal(err)
		}

		links, err := parser.Links(strings.NewReader(page))
		if err != nil {
			t.Fatalf("Links: %v", err)
		}

		if len(links) != 1 || links[0] != "http://example.com/real" {
			t.Errorf("expected only the real link, got %v", links)
		}
	})

	t.Run("malformed HTML yields parseable anchors", func(t *testing.T) {
		t.Parallel()

		page := `<html><body><a href="/ok.pdf">ok<div><a href="/also.pdf"`

		parser, err := NewParser("http://example.com/")
		if err != nil {
			t.Fatal(err)
		}

		links, err := parser.Links(strings.NewReader(page))
		if err != nil {
			t.Fatalf("malformed HTML should not error: %v", err)
		}

		if len(links) == 0 {
			t.Error("expected at least one anchor from malformed HTML")
		}
		if links[0] != "http://example.com/ok.pdf" {
			t.Errorf("links[0] = %q", links[0])
		}
	})
}
