// Package sink abstracts where the pipeline's output bytes go.
//
// A Sink is selected once at setup (file-backed or standard-output-backed)
// and used uniformly thereafter, mirroring the datasource package on the
// input side.
package sink

import (
	"context"
	"io"
)

// Sink produces the output byte stream for one run.
type Sink interface {
	// Create returns a writer for the output bytes. File-backed sinks
	// create or truncate their target. Callers own the returned WriteCloser
	// and must close it when done.
	Create(ctx context.Context) (io.WriteCloser, error)
}
