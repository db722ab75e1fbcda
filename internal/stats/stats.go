// Package stats implements a thread-safe tracker for per-run processing
// counters. A Tracker is created at run start, updated from any goroutine
// via atomic operations, and read once at run end for the summary report.
package stats

import (
	"sync/atomic"
	"time"
)

// Tracker holds monotonic counters for one processing run.
//
// All mutators and readers are safe for concurrent use without external
// locking. Counters expose only set/add operations and point-in-time reads;
// no read-modify-write is exposed to callers.
type Tracker struct {
	records atomic.Uint64
	bytes   atomic.Uint64
	start   time.Time
}

// New returns a Tracker whose clock starts now.
func New() *Tracker {
	return &Tracker{start: time.Now()}
}

// SetRecords stores an absolute record count. The pipeline uses the absolute
// form so a future batched producer can publish totals without races.
func (t *Tracker) SetRecords(n uint64) { t.records.Store(n) }

// AddRecords increments the record count by n.
func (t *Tracker) AddRecords(n uint64) { t.records.Add(n) }

// SetBytes stores an absolute byte count.
func (t *Tracker) SetBytes(n uint64) { t.bytes.Store(n) }

// AddBytes increments the byte count by n.
func (t *Tracker) AddBytes(n uint64) { t.bytes.Add(n) }

// Records returns the current record count.
func (t *Tracker) Records() uint64 { return t.records.Load() }

// Bytes returns the current byte count.
func (t *Tracker) Bytes() uint64 { return t.bytes.Load() }

// Elapsed returns the wall-clock time since the tracker was created.
func (t *Tracker) Elapsed() time.Duration { return time.Since(t.start) }

// RecordsPerSecond returns the current processing rate. It returns 0 when
// elapsed time is non-positive; callers never see NaN or Inf.
func (t *Tracker) RecordsPerSecond() float64 {
	return rate(t.Records(), t.Elapsed())
}

// BytesPerSecond returns the current byte throughput, 0 when elapsed time is
// non-positive.
func (t *Tracker) BytesPerSecond() float64 {
	return rate(t.Bytes(), t.Elapsed())
}

func rate(n uint64, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(n) / secs
}
