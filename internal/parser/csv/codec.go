// Package csv implements the record codec for the pipeline: streaming,
// flexible-width parsing of comma-delimited rows and unquoted serialization
// back into output lines. It never buffers more than one record and can
// handle very large inputs (multi-GB) safely.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\ufeff"

// Reader streams records from delimited-text input.
//
// Parsing is flexible: rows whose field count differs from the header are
// returned as-is rather than rejected, because 100GB-scale inputs are never
// assumed well-formed. A malformed row yields an error for that row only;
// subsequent Read calls continue with the next row, so the caller's policy
// decides whether to skip or abort.
//
// Reader is not safe for concurrent use.
type Reader struct {
	cr  *csv.Reader
	row int
}

// NewReader returns a Reader consuming records from r. The caller is
// expected to hand in an already-buffered stream; Reader adds no buffering
// of its own beyond encoding/csv internals.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // flexible widths
	cr.ReuseRecord = true
	return &Reader{cr: cr}
}

// ReadHeader consumes the first row of the stream and returns it as the
// header. It fails when the stream is empty or the first line cannot be
// split into fields; that failure is fatal for the run.
//
// The returned slice is owned by the caller and remains valid across
// subsequent reads.
func (r *Reader) ReadHeader() ([]string, error) {
	rec, _, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read header: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header := make([]string, len(rec))
	copy(header, rec)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	return header, nil
}

// Read returns the next record along with its 1-based row number. The row
// number counts records, not physical lines: a quoted record spanning
// several lines still advances it by one. The record slice is reused
// between calls: it is valid only until the next Read. At end of input,
// Read returns io.EOF.
//
// A non-EOF error applies to the current row only; calling Read again
// resumes with the following row.
func (r *Reader) Read() ([]string, int, error) {
	r.row++
	rec, err := r.cr.Read()
	if err == io.EOF {
		return nil, r.row, io.EOF
	}
	if err != nil {
		return nil, r.row, err
	}
	return rec, r.row, nil
}

// IsRowError reports whether err is a row-level parse error, recoverable by
// skipping the row and reading on. Errors from the underlying stream are not
// row-level: they repeat on every subsequent read and must abort the run.
func IsRowError(err error) bool {
	var pe *csv.ParseError
	return errors.As(err, &pe)
}

// AppendRecord serializes fields into one output line appended to dst:
// fields joined by commas, terminated by a newline. No quoting or escaping
// is performed, so fields containing the delimiter or newlines do not
// round-trip; that is a documented limitation of the output format, not a
// defect.
func AppendRecord(dst []byte, fields []string) []byte {
	for i, f := range fields {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, f...)
	}
	return append(dst, '\n')
}

// Serialize is the string form of AppendRecord.
func Serialize(fields []string) string {
	return string(AppendRecord(nil, fields))
}
