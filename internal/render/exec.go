package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alnah/go-md2site/internal/process"
)

// Sentinel errors for renderer invocations.
var (
	ErrToolNotFound  = errors.New("renderer executable not found")
	ErrToolFailed    = errors.New("renderer exited with non-zero status")
	ErrInvalidOutput = errors.New("renderer produced invalid UTF-8 output")
	ErrTimeout       = errors.New("renderer timed out")
)

// DefaultTimeout bounds a single renderer invocation.
const DefaultTimeout = 30 * time.Second

// waitDelay caps how long Wait blocks on output pipes after the process is
// killed.
const waitDelay = 2 * time.Second

// Runner abstracts command execution so renderers can be tested without
// real subprocesses.
type Runner interface {
	Run(ctx context.Context, input, name string, args ...string) (string, error)
}

// ExecRunner implements Runner using os/exec.
// A zero Timeout means DefaultTimeout; a negative one disables the limit.
type ExecRunner struct {
	Timeout time.Duration
}

// ProcessError reports a failed renderer invocation with its captured output.
type ProcessError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Tool, e.Err)
	if e.ExitCode > 0 {
		fmt.Fprintf(&b, " (exit %d)", e.ExitCode)
	}
	if msg := firstLine(e.Stderr); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Run writes input to the command's stdin, reads stdout to completion and
// checks the exit status. A non-zero exit is a failure regardless of output.
// Failures are returned as *ProcessError.
func (r *ExecRunner) Run(ctx context.Context, input, name string, args ...string) (string, error) {
	if r.Timeout >= 0 {
		timeout := r.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- command comes from site config
	cmd.Stdin = strings.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	process.Isolate(cmd)

	runErr := cmd.Run()

	perr := &ProcessError{
		Tool:   name,
		Args:   args,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	switch {
	case runErr == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		perr.Err = fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		return "", perr
	case ctx.Err() != nil:
		perr.Err = ctx.Err()
		return "", perr
	case errors.Is(runErr, exec.ErrNotFound), errors.Is(runErr, fs.ErrNotExist):
		perr.Err = fmt.Errorf("%w: %v", ErrToolNotFound, runErr)
		return "", perr
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
			perr.Err = ErrToolFailed
		} else {
			perr.Err = runErr
		}
		return "", perr
	}

	out := stdout.String()
	if !utf8.ValidString(out) {
		perr.Err = ErrInvalidOutput
		return "", perr
	}
	return out, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
