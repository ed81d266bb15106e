package analyze

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// ErrTimeout reports that a tool was killed by its deadline.
var ErrTimeout = errors.New("tool timed out")

// RunResult holds the captured output of one tool invocation.
type RunResult struct {
	// Stdout is the captured standard output.
	Stdout string

	// Stderr is the captured standard error.
	Stderr string

	// ExitCode is the process exit code. Zero means success.
	ExitCode int
}

// Runner abstracts tool discovery and execution.
//
// Design decision: The stages talk to this interface instead of os/exec
// directly so tests can script tool presence, output, exit codes, and
// timeouts without the real binaries installed.
type Runner interface {
	// Installed reports whether the named tool is on PATH.
	Installed(tool string) bool

	// Run executes the tool with the given arguments, bounded by timeout.
	// A non-zero exit is reported through RunResult, not as an error.
	// A deadline kill returns ErrTimeout.
	Run(ctx context.Context, timeout time.Duration, tool string, args ...string) (*RunResult, error)
}

// ExecRunner runs tools through os/exec.
type ExecRunner struct{}

// NewExecRunner creates a Runner backed by the host's PATH.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Installed reports whether tool resolves on PATH.
func (r *ExecRunner) Installed(tool string) bool {
	_, err := exec.LookPath(tool)
	return err == nil
}

// Run executes the tool and captures both output streams.
func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, tool string, args ...string) (*RunResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, tool, args...) //nolint:gosec // fixed tool names, hashed file paths
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := &RunResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctx.Err() == context.DeadlineExceeded {
		return res, ErrTimeout
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, err
	}

	return res, nil
}
