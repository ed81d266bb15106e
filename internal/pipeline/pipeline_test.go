package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/shiori-dev/pdfa11ycrawl/internal/model"
)

// recordingStep appends its name to a shared trace when executed.
type recordingStep struct {
	name  string
	trace *[]string
	err   error
}

func (s *recordingStep) Name() string { return s.name }

func (s *recordingStep) Do(_ context.Context, _ *model.DocumentResult) error {
	*s.trace = append(*s.trace, s.name)
	return s.err
}

// TestPipelineExecute verifies ordering, error tolerance, and cancellation.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("steps run in insertion order", func(t *testing.T) {
		t.Parallel()

		var trace []string
		p := New()
		p.AddSteps(
			&recordingStep{name: "a", trace: &trace},
			&recordingStep{name: "b", trace: &trace},
			&recordingStep{name: "c", trace: &trace},
		)

		record := model.NewDocumentResult("http://example.com/x.pdf", "http://example.com/")
		if err := p.Execute(context.Background(), record); err != nil {
			t.Fatalf("Execute: %v", err)
		}

		if len(trace) != 3 || trace[0] != "a" || trace[1] != "b" || trace[2] != "c" {
			t.Errorf("trace = %v", trace)
		}
		if p.StepCount() != 3 {
			t.Errorf("StepCount = %d", p.StepCount())
		}
	})

	t.Run("step error is noted and later steps still run", func(t *testing.T) {
		t.Parallel()

		var trace []string
		p := New()
		p.AddSteps(
			&recordingStep{name: "boom", trace: &trace, err: errors.New("work dir vanished")},
			&recordingStep{name: "after", trace: &trace},
		)

		record := model.NewDocumentResult("http://example.com/x.pdf", "http://example.com/")
		if err := p.Execute(context.Background(), record); err != nil {
			t.Fatalf("Execute: %v", err)
		}

		if len(trace) != 2 {
			t.Fatalf("trace = %v, want both steps", trace)
		}
		if record.JoinedNotes() != "boom error: work dir vanished" {
			t.Errorf("notes = %q", record.JoinedNotes())
		}
	})

	t.Run("cancellation stops remaining steps", func(t *testing.T) {
		t.Parallel()

		var trace []string
		p := New()
		p.AddSteps(
			&recordingStep{name: "never", trace: &trace},
		)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		record := model.NewDocumentResult("http://example.com/x.pdf", "http://example.com/")
		if err := p.Execute(ctx, record); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
		if len(trace) != 0 {
			t.Errorf("steps ran after cancellation: %v", trace)
		}
	})
}
