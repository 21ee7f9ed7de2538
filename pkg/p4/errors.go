package p4

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sergeknystautas/p4go/internal/runner"
)

// ErrToolNotFound is returned when the p4 executable cannot be located or
// launched. Not retryable without fixing the environment.
var ErrToolNotFound = runner.ErrNotFound

// ErrIOFailure is returned when the subprocess launched but capturing its
// output streams failed. Transient; the caller may retry.
var ErrIOFailure = runner.ErrCapture

// ErrInvalidArgument is returned when a command builder rejects its inputs
// before anything is executed.
var ErrInvalidArgument = errors.New("invalid argument")

// CommandError means the p4 tool ran and rejected the request (bad
// changelist number, no such file, ...). Not retryable without changing the
// request. Message is taken from stderr when non-empty, otherwise stdout,
// otherwise a generic description.
type CommandError struct {
	Code    int
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("p4 exited with code %d: %s", e.Code, e.Message)
}

// SchemaError means a decoded record failed its entity schema: a required
// field was absent (Err is nil) or a field value could not be transformed
// (Err holds the cause). One bad record aborts the whole query; silently
// returning partial VCS metadata is a correctness hazard.
type SchemaError struct {
	Entity string
	Field  string
	Value  string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s record missing required field %q", e.Entity, e.Field)
	}
	return fmt.Sprintf("%s record field %q: cannot parse %q: %v", e.Entity, e.Field, e.Value, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// classify turns a raw exit status into the command-level outcome. Exit 0 is
// success regardless of stderr content (p4 emits informational text there
// even on success). A failed command's stdout is never parsed as tagged
// output; it may be partial or absent.
func classify(out runner.RawOutput) error {
	if out.ExitCode == 0 {
		return nil
	}
	msg := strings.TrimSpace(string(out.Stderr))
	if msg == "" {
		msg = strings.TrimSpace(string(out.Stdout))
	}
	if msg == "" {
		msg = fmt.Sprintf("command failed with code %d", out.ExitCode)
	}
	return &CommandError{Code: out.ExitCode, Message: msg}
}
