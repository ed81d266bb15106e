package analyze

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"
)

// textTool is the poppler text-extraction binary.
const textTool = "pdftotext"

// ExtractReport is the outcome of the text-extraction stage.
type ExtractReport struct {
	// Succeeded is true when the tool produced an output file.
	Succeeded bool

	// Note is the diagnostic for a failed attempt, empty on success.
	Note string
}

// ExtractText runs the text-extraction tool, writing plain UTF-8 text with
// the original layout preserved to txtPath.
func ExtractText(ctx context.Context, runner Runner, pdfPath, txtPath string, timeout time.Duration) *ExtractReport {
	if !runner.Installed(textTool) {
		return &ExtractReport{Note: "pdftotext not installed"}
	}

	res, err := runner.Run(ctx, timeout, textTool, "-layout", "-enc", "UTF-8", pdfPath, txtPath)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return &ExtractReport{Note: "pdftotext failed: timed out"}
		}
		return &ExtractReport{Note: fmt.Sprintf("pdftotext failed: %v", err)}
	}
	if res.ExitCode != 0 {
		return &ExtractReport{Note: "pdftotext failed: " + strings.TrimSpace(res.Stderr)}
	}

	return &ExtractReport{Succeeded: true}
}

// TextMeasure holds size measurements of an extracted text file.
type TextMeasure struct {
	// Bytes is the UTF-8 byte count after replacing undecodable bytes.
	Bytes int64

	// Chars is the rune count of the same text.
	Chars int64
}

// MeasureText reads the extracted file as UTF-8, replacing undecodable
// bytes, and returns its byte and character counts. The replacement
// matters for the density ratio: a mangled file still measures.
func MeasureText(txtPath string) (*TextMeasure, error) {
	data, err := os.ReadFile(txtPath) //nolint:gosec // path derived from URL hash
	if err != nil {
		return nil, err
	}

	text := strings.ToValidUTF8(string(data), string(utf8.RuneError))
	return &TextMeasure{
		Bytes: int64(len(text)),
		Chars: int64(utf8.RuneCountInString(text)),
	}, nil
}
