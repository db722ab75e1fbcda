package pipeline

import (
	"errors"
	"fmt"
)

// FailureKind classifies a fatal pipeline error so that callers and logs can
// tell an I/O open failure apart from a bad configuration or a crashed
// transfer goroutine. Per-row parse errors are never surfaced as a
// FailureKind: they are recovered inside the run loop.
type FailureKind string

const (
	// FailIO covers open/read/write failures on either stream.
	FailIO FailureKind = "io"
	// FailParse covers an unreadable header (row-level parse errors are
	// recovered, not propagated).
	FailParse FailureKind = "parse"
	// FailConfig covers invalid settings such as a degenerate buffer size.
	FailConfig FailureKind = "config"
	// FailFieldSelection covers invalid projection requests.
	FailFieldSelection FailureKind = "field_selection"
	// FailThreading covers abnormal termination of a transfer goroutine, as
	// opposed to an error it returned.
	FailThreading FailureKind = "threading"
)

// RunError is a fatal pipeline error tagged with its kind. It wraps the
// underlying cause for errors.Is/As checks.
type RunError struct {
	Kind FailureKind
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// failf builds a RunError from a format string.
func failf(kind FailureKind, format string, a ...any) *RunError {
	return &RunError{Kind: kind, Err: fmt.Errorf(format, a...)}
}

// KindOf returns the FailureKind carried by err, or "" when err carries
// none.
func KindOf(err error) FailureKind {
	var re *RunError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
