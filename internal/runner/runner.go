// Package runner executes the p4 binary as a subprocess and captures its
// output. It never interprets command output; callers classify the exit
// status and decode stdout themselves.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the p4 executable cannot be located or
// launched. Not retryable without fixing the environment.
var ErrNotFound = errors.New("p4 executable not found")

// ErrCapture is returned when spawning succeeded but capturing the output
// streams failed. Transient; the caller may retry.
var ErrCapture = errors.New("failed to capture p4 output")

// waitDelay bounds how long Run waits after ctx fires for the output pipes
// to close. A killed shell can leave a child holding stdout open; without
// this, that child would keep Run blocked past the caller's deadline.
const waitDelay = 3 * time.Second

// Invocation describes one run of the p4 binary. Immutable once built and
// consumed exactly once by Run.
type Invocation struct {
	// Globals are flags that precede the subcommand (-ztag, -p, -u, ...).
	Globals []string
	// Subcommand is the p4 command name ("changes", "fstat", ...). Empty is
	// allowed for bare flag invocations such as `p4 -V`.
	Subcommand string
	// Args follow the subcommand.
	Args []string
	// Dir is the working directory for the subprocess; empty inherits ours.
	Dir string
	// Env holds environment variable overrides applied on top of the
	// current process environment.
	Env map[string]string
	// Stdin, when non-nil, is fed to the subprocess (used by `p4 client -i`
	// and friends).
	Stdin []byte
}

// Argv returns the full argument vector, globals first.
func (inv Invocation) Argv() []string {
	argv := make([]string, 0, len(inv.Globals)+1+len(inv.Args))
	argv = append(argv, inv.Globals...)
	if inv.Subcommand != "" {
		argv = append(argv, inv.Subcommand)
	}
	return append(argv, inv.Args...)
}

// RawOutput is the captured result of one invocation. A non-zero ExitCode is
// not a runner-level failure; interpreting it is the classifier's job.
type RawOutput struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Runner spawns the p4 binary. The binary path is explicit configuration
// threaded in at construction rather than process-wide state, so two runners
// pointed at different installs can coexist.
//
// Run blocks until the subprocess exits and the process handle is always
// reaped, including on error paths. A Runner is safe for concurrent use.
type Runner struct {
	// Binary is the executable to run; "p4" resolves via PATH.
	Binary string

	// Trace, when set, receives one-line debug messages. Each invocation is
	// tagged with a short correlation id so interleaved concurrent runs can
	// be told apart.
	Trace func(format string, args ...any)
}

// New returns a runner for the given binary path, defaulting to "p4".
func New(binary string) *Runner {
	if binary == "" {
		binary = "p4"
	}
	return &Runner{Binary: binary}
}

// Run spawns one subprocess for the invocation and collects both output
// streams fully into memory; p4 command outputs are bounded so no streaming
// is needed. Cancellation and deadlines come from ctx, which kills the
// subprocess when it fires.
func (r *Runner) Run(ctx context.Context, inv Invocation) (RawOutput, error) {
	argv := inv.Argv()
	var id string
	if r.Trace != nil {
		id = traceID()
		r.tracef("[p4] %s: run %s %s", id, r.Binary, strings.Join(argv, " "))
	}

	cmd := exec.CommandContext(ctx, r.Binary, argv...)
	cmd.WaitDelay = waitDelay
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		env := os.Environ()
		for k, v := range inv.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}
	if inv.Stdin != nil {
		cmd.Stdin = bytes.NewReader(inv.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := RawOutput{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		// A fired context kills the subprocess, which then reports as an
		// ExitError with code -1; check the context first so cancellation is
		// never mistaken for the tool rejecting the request.
		if ctxErr := ctx.Err(); ctxErr != nil {
			r.tracef("[p4] %s: canceled: %v", id, ctxErr)
			return RawOutput{}, ctxErr
		}
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			// The tool ran and exited non-zero; report via ExitCode.
			out.ExitCode = exitErr.ExitCode()
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			r.tracef("[p4] %s: %v", id, err)
			return RawOutput{}, fmt.Errorf("%w: %v", ErrNotFound, err)
		default:
			r.tracef("[p4] %s: %v", id, err)
			return RawOutput{}, fmt.Errorf("%w: %v", ErrCapture, err)
		}
	}
	r.tracef("[p4] %s: exit %d, %d bytes stdout, %d bytes stderr",
		id, out.ExitCode, len(out.Stdout), len(out.Stderr))
	return out, nil
}

func (r *Runner) tracef(format string, args ...any) {
	if r.Trace != nil {
		r.Trace(format, args...)
	}
}

// traceID returns a short correlation id for one invocation.
func traceID() string {
	return uuid.NewString()[:8]
}
