// Package projection selects and reorders a subset of a row's fields by
// position. It has no state and no side effects; the pipeline computes the
// offset list once per run and applies it to every record.
package projection

// ToZeroBased converts 1-based column indices into 0-based offsets,
// preserving order and duplicates. Values below 1 clamp to 0 rather than
// underflowing.
func ToZeroBased(indices []int) []int {
	if indices == nil {
		return nil
	}
	out := make([]int, len(indices))
	for i, v := range indices {
		if v < 1 {
			out[i] = 0
			continue
		}
		out[i] = v - 1
	}
	return out
}

// Project returns the fields of row at the given offsets, one per offset and
// in offset order. Duplicate offsets yield duplicate values. An offset beyond
// the row's width is omitted from the result, so the projected row may be
// shorter than offsets; it is never padded.
func Project(row []string, offsets []int) []string {
	out := make([]string, 0, len(offsets))
	for _, off := range offsets {
		if off < 0 || off >= len(row) {
			continue
		}
		out = append(out, row[off])
	}
	return out
}
