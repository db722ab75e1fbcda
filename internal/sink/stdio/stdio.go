// Package stdio implements an output sink backed by the process's standard
// output stream.
package stdio

import (
	"context"
	"io"
	"os"
)

// Stdout is a sink that writes to os.Stdout.
//
// Closing the returned writer is a no-op: the process, not the pipeline,
// owns the standard output descriptor.
type Stdout struct{}

// NewStdout returns a standard-output sink.
func NewStdout() *Stdout { return &Stdout{} }

// nopWriteCloser adapts an io.Writer into an io.WriteCloser whose Close is a
// no-op.
type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// Create returns a WriteCloser over os.Stdout. It honors a pre-canceled
// context the same way the file sink does.
func (*Stdout) Create(ctx context.Context) (io.WriteCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return nopWriteCloser{os.Stdout}, nil
}
