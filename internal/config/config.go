// Package config defines the immutable run configuration for the csvpipe
// binary. It is intentionally small, explicit, and dependency-free: the CLI
// layer populates a Config once and the pipeline consumes it read-only.
//
// Design goals:
//
//  1. Clarity: every knob the pipeline honors is a named field; there is no
//     free-form options bag because the surface is fixed.
//  2. Minimalism: no third-party config libraries; parsing of the one
//     structured value (the field list) lives here so the CLI stays thin.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultBufferSize is the I/O buffer size applied when the user does not
// override it (64 KiB, matching typical filesystem readahead granularity).
const DefaultBufferSize = 64 * 1024

// Config is the full configuration for one streaming run. It is built once
// by the CLI and never mutated afterwards.
type Config struct {
	// Input is the path of the input CSV file. Empty means stdin.
	Input string

	// Output is the path of the output file (created/truncated). Empty means
	// stdout. Ignored when SQLitePath is set.
	Output string

	// Fields holds the 1-based column indices to project, in output order.
	// Nil means no projection: records pass through with all fields.
	Fields []int

	// BufferSize is the size in bytes of the read and write buffers.
	BufferSize int

	// Threads is the requested worker count. The pipeline is single-stream
	// and order-preserving, so this is accepted but not used to fan out
	// record processing.
	Threads int

	// Verbose enables debug-level logging (header dump, progress heartbeat).
	Verbose bool

	// Stats enables the end-of-run statistics report on stderr.
	Stats bool

	// Checksum enables the streaming xxh3 checksum of the raw input bytes,
	// computed on a second goroutine and reported with the stats summary.
	Checksum bool

	// SQLitePath, when non-empty, redirects output into a SQLite database
	// file instead of a text sink. SQLiteTable names the destination table.
	SQLitePath  string
	SQLiteTable string
}

// ParseFields parses a comma-delimited list of 1-based column indices, e.g.
// "1,3,3,7". Order and duplicates are preserved. An empty string yields an
// error: callers should omit the flag entirely to disable projection.
func ParseFields(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("field list must not be empty")
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("field index %q: %w", p, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("field index %d: indices are 1-based and must be positive", n)
		}
		out = append(out, n)
	}
	return out, nil
}
