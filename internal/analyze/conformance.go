package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shiori-dev/pdfa11ycrawl/internal/model"
)

// conformanceTool is the PDF/UA validator binary.
const conformanceTool = "verapdf"

// ConformanceReport is the outcome of the conformance stage.
type ConformanceReport struct {
	// Attempted is false only when the tool is not installed; the
	// validator is optional tooling and its absence is not an anomaly.
	Attempted bool

	// Passed is the tri-state verdict parsed from the tool output.
	Passed model.Tristate

	// Note is the diagnostic for an inconclusive or failed run.
	Note string
}

// CheckConformance validates pdfPath against the PDF/UA-1 accessibility
// profile. Validator output varies across packagings, so the verdict is a
// token scan over the combined output: any "fail" outranks any "pass".
func CheckConformance(ctx context.Context, runner Runner, pdfPath string, timeout time.Duration) *ConformanceReport {
	if !runner.Installed(conformanceTool) {
		return &ConformanceReport{}
	}

	rep := &ConformanceReport{Attempted: true}

	res, err := runner.Run(ctx, timeout, conformanceTool, "--flavour", "ua1", "--format", "text", pdfPath)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			rep.Note = "verapdf timed out"
			return rep
		}
		rep.Note = fmt.Sprintf("verapdf exception: %v", err)
		return rep
	}

	out := strings.ToLower(res.Stdout + "\n" + res.Stderr)
	switch {
	case strings.Contains(out, "fail"):
		rep.Passed = model.TristateFalse
	case strings.Contains(out, "pass"):
		rep.Passed = model.TristateTrue
	}

	if res.ExitCode != 0 && rep.Passed == model.TristateUnknown {
		rep.Note = fmt.Sprintf("verapdf return code %d", res.ExitCode)
	}

	return rep
}
