// Package file implements a local filesystem-backed output sink.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local is a filesystem sink that creates (or truncates) a file on disk.
type Local struct{ path string }

// NewLocal returns a new Local sink bound to the provided filesystem path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Create opens the configured path for writing, truncating any existing
// content, and returns the resulting *os.File as an io.WriteCloser.
//
// A pre-canceled context short-circuits before the filesystem is touched.
// Filesystem errors are wrapped with the path for context.
func (l *Local) Create(ctx context.Context) (io.WriteCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Create(l.path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", l.path, err)
	}
	return f, nil
}
