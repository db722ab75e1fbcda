// Package stdio implements a data source backed by the process's standard
// input stream.
package stdio

import (
	"context"
	"io"
	"os"
)

// Stdin is a data source that reads from os.Stdin.
//
// Closing the returned reader is a no-op: the process, not the pipeline,
// owns the standard input descriptor.
type Stdin struct{}

// NewStdin returns a standard-input data source.
func NewStdin() *Stdin { return &Stdin{} }

// Open returns a ReadCloser over os.Stdin. It honors a pre-canceled context
// the same way the file source does.
func (*Stdin) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return io.NopCloser(os.Stdin), nil
}
