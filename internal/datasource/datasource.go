// Package datasource abstracts where the pipeline's input bytes come from.
//
// A Source is selected once at setup (file-backed or standard-input-backed)
// and used uniformly thereafter; no per-record dispatch is involved.
package datasource

import (
	"context"
	"io"
)

// Source produces the input byte stream for one run.
type Source interface {
	// Open returns a reader over the raw input bytes. Callers own the
	// returned ReadCloser and must close it when done.
	Open(ctx context.Context) (io.ReadCloser, error)
}
