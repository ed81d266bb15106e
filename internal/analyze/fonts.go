package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shiori-dev/pdfa11ycrawl/internal/model"
)

// fontTool is the poppler font-inventory binary.
const fontTool = "pdffonts"

// maxToolErrorLen bounds how much tool stderr is copied into a note.
const maxToolErrorLen = 200

// FontReport is the outcome of the font-inventory stage.
type FontReport struct {
	// HasTextLayer is true when at least one font object was listed.
	HasTextLayer model.Tristate

	// Count is the number of font rows, nil when the tool did not run
	// to completion.
	Count *int

	// Note is the diagnostic for a failed attempt, empty on success.
	Note string
}

// InspectFonts runs the font-inventory tool against pdfPath. A listed font
// object implies an embedded text layer; zero rows means the document is
// likely image-only.
func InspectFonts(ctx context.Context, runner Runner, pdfPath string, timeout time.Duration) *FontReport {
	if !runner.Installed(fontTool) {
		return &FontReport{Note: "pdffonts not installed (poppler-utils missing)"}
	}

	res, err := runner.Run(ctx, timeout, fontTool, pdfPath)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return &FontReport{Note: "pdffonts timed out"}
		}
		return &FontReport{Note: fmt.Sprintf("pdffonts error: %v", err)}
	}
	if res.ExitCode != 0 {
		return &FontReport{Note: "pdffonts failed: " + truncateError(res.Stderr)}
	}

	count := countFontRows(res.Stdout)
	return &FontReport{
		HasTextLayer: model.TristateOf(count > 0),
		Count:        &count,
	}
}

// countFontRows counts output lines that describe a font object. The tool
// prints a "name ..." header and a dashed separator before the rows, so
// anything else that is non-blank is a font.
func countFontRows(stdout string) int {
	count := 0
	for _, line := range strings.Split(stdout, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "name") || strings.HasPrefix(line, "---") {
			continue
		}
		count++
	}
	return count
}

// truncateError trims and bounds tool error text for note embedding.
func truncateError(stderr string) string {
	s := strings.TrimSpace(stderr)
	if len(s) > maxToolErrorLen {
		return s[:maxToolErrorLen]
	}
	return s
}
