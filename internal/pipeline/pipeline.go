// Package pipeline drives one end-to-end streaming run: it opens the input
// and output streams, extracts the header, iterates records through optional
// projection, serializes them to the configured sink, and reports statistics.
//
// The pipeline is single-stream and order-preserving: records leave in the
// exact order they were read. At most two goroutines are ever in play — the
// read-parse-write loop, plus one chunk consumer when the checksum transport
// is enabled. Peak memory is dominated by the I/O buffers, not record
// storage.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"csvpipe/internal/config"
	"csvpipe/internal/datasource"
	dsfile "csvpipe/internal/datasource/file"
	"csvpipe/internal/datasource/stdio"
	"csvpipe/internal/metrics"
	csvcodec "csvpipe/internal/parser/csv"
	"csvpipe/internal/projection"
	"csvpipe/internal/sink"
	sinkfile "csvpipe/internal/sink/file"
	sinkstdio "csvpipe/internal/sink/stdio"
	"csvpipe/internal/sink/sqlite"
	"csvpipe/internal/stats"
)

// job labels all metrics emitted by this binary.
const job = "csvpipe"

// progressEvery controls the verbose progress heartbeat. Observability only;
// correctness does not depend on it.
const progressEvery = 100_000

// Processor executes one streaming run over an immutable Config.
type Processor struct {
	cfg     config.Config
	tracker *stats.Tracker

	// header is retained after the run for diagnostics only.
	header []string
}

// New returns a Processor for the given configuration. The configuration is
// consumed read-only.
func New(cfg config.Config) *Processor {
	return &Processor{cfg: cfg}
}

// Tracker exposes the run's statistics tracker. It is non-nil once Run has
// started.
func (p *Processor) Tracker() *stats.Tracker { return p.tracker }

// Run drives a full run: open input/output, stream records, flush, report.
//
// Failure semantics: open failures on either stream and an unreadable header
// are fatal and returned as *RunError. Per-record parse failures are
// recovered locally — logged, skipped, and the loop continues. There is no
// checkpointing; a fatal failure mid-stream loses progress.
func (p *Processor) Run(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { metrics.RecordRun(job, err, time.Since(start)) }()

	if p.cfg.BufferSize <= 0 {
		return failf(FailConfig, "buffer size must be positive, got %d", p.cfg.BufferSize)
	}
	if p.cfg.Fields != nil && len(p.cfg.Fields) == 0 {
		return failf(FailFieldSelection, "field selection requested with an empty list")
	}
	for _, f := range p.cfg.Fields {
		if f < 1 {
			return failf(FailFieldSelection, "field indices are 1-based, got %d", f)
		}
	}

	p.tracker = stats.New()

	rc, err := p.source().Open(ctx)
	if err != nil {
		return &RunError{Kind: FailIO, Err: err}
	}
	defer rc.Close()

	// Input bytes are counted as they leave the source, before buffering.
	var in io.Reader = &countingReader{r: rc, tracker: p.tracker}

	// Optional checksum transport: tee raw bytes into the chunk channel and
	// hash them on the consumer goroutine, overlapping I/O with hashing.
	var (
		hashGroup *errgroup.Group
		hashPipe  *io.PipeWriter
		digest    uint64
	)
	if p.cfg.Checksum {
		pr, pw := io.Pipe()
		in = io.TeeReader(in, pw)
		hashPipe = pw

		h := xxh3.New()
		hashGroup = &errgroup.Group{}
		hashGroup.Go(func() error {
			if cerr := StreamChunks(ctx, pr, p.cfg.BufferSize, func(chunk []byte) error {
				_, _ = h.Write(chunk)
				return nil
			}); cerr != nil {
				// Unblock the tee so the main loop cannot stall on a dead
				// hasher.
				pr.CloseWithError(cerr)
				return cerr
			}
			digest = h.Sum64()
			return nil
		})
	}

	runErr := p.process(ctx, bufio.NewReaderSize(in, p.cfg.BufferSize))

	// Signal end of input to the hasher and join it before reporting
	// anything: run success requires consumer completion.
	if hashPipe != nil {
		hashPipe.Close()
	}
	if hashGroup != nil {
		if herr := hashGroup.Wait(); herr != nil && runErr == nil {
			runErr = herr
		}
	}
	if runErr != nil {
		return runErr
	}

	if p.cfg.Stats {
		p.printStats(digest)
	}
	return nil
}

// process parses the header, sets up projection and the output sink, and
// runs the record loop. in is already buffered with the configured size.
func (p *Processor) process(ctx context.Context, in *bufio.Reader) error {
	cr := csvcodec.NewReader(in)

	header, err := cr.ReadHeader()
	if err != nil {
		return &RunError{Kind: FailParse, Err: err}
	}
	p.header = header
	if p.cfg.Verbose {
		log.Printf("header: %d columns: %v", len(header), header)
		if p.cfg.Threads > 1 {
			log.Printf("threads=%d requested; record processing stays single-stream", p.cfg.Threads)
		}
	}

	var offsets []int
	outHeader := header
	if p.cfg.Fields != nil {
		offsets = projection.ToZeroBased(p.cfg.Fields)
		outHeader = projection.Project(header, offsets)
	}

	if p.cfg.SQLitePath != "" {
		return p.loop(ctx, cr, offsets, p.sqliteWriter(ctx, outHeader))
	}
	return p.loop(ctx, cr, offsets, p.textWriter(ctx, outHeader))
}

// rowWriter abstracts the two output modes of the record loop. write is
// called once per projected record; finish flushes and releases the sink.
type rowWriter struct {
	write  func(fields []string) error
	finish func() error
	err    error // setup failure, surfaced by loop before reading records
}

// loop iterates the record stream, applying projection and the
// skip-and-continue policy for malformed rows, then flushes the sink.
func (p *Processor) loop(ctx context.Context, cr *csvcodec.Reader, offsets []int, w rowWriter) error {
	if w.err != nil {
		return w.err
	}

	var (
		count     uint64
		parseErrs int64
	)
	for {
		select {
		case <-ctx.Done():
			return &RunError{Kind: FailIO, Err: ctx.Err()}
		default:
		}

		rec, row, rerr := cr.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			if !csvcodec.IsRowError(rerr) {
				// Stream-level read failure: repeats forever, abort.
				return &RunError{Kind: FailIO, Err: rerr}
			}
			// Deliberate partial-failure policy: a malformed row is data
			// loss for that row, not a fatal error for the run.
			log.Printf("row %d: skipped: %v", row, rerr)
			parseErrs++
			continue
		}

		fields := rec
		if offsets != nil {
			fields = projection.Project(rec, offsets)
		}
		if werr := w.write(fields); werr != nil {
			return &RunError{Kind: FailIO, Err: werr}
		}

		count++
		// Absolute store, not increment, so a future batched producer can
		// publish totals the same way.
		p.tracker.SetRecords(count)

		if p.cfg.Verbose && count%progressEvery == 0 {
			log.Printf("processed %d records", count)
		}
	}

	if ferr := w.finish(); ferr != nil {
		return &RunError{Kind: FailIO, Err: ferr}
	}

	metrics.RecordRows(job, "processed", int64(count))
	metrics.RecordRows(job, "parse_errors", parseErrs)
	if parseErrs > 0 {
		log.Printf("parse errors: %d rows skipped", parseErrs)
	}
	if p.cfg.Verbose {
		log.Printf("total records processed: %d", count)
	}
	return nil
}

// textWriter builds the serializing rowWriter over the configured text sink,
// writing the (possibly projected) header line immediately.
func (p *Processor) textWriter(ctx context.Context, outHeader []string) rowWriter {
	wc, err := p.textSink().Create(ctx)
	if err != nil {
		return rowWriter{err: &RunError{Kind: FailIO, Err: err}}
	}

	bw := bufio.NewWriterSize(wc, p.cfg.BufferSize)
	var buf []byte

	writeLine := func(fields []string) error {
		buf = csvcodec.AppendRecord(buf[:0], fields)
		_, werr := bw.Write(buf)
		return werr
	}

	if err := writeLine(outHeader); err != nil {
		wc.Close()
		return rowWriter{err: &RunError{Kind: FailIO, Err: fmt.Errorf("write header: %w", err)}}
	}

	return rowWriter{
		write: writeLine,
		finish: func() error {
			// Explicit flush: written bytes must reach the sink even if the
			// process exits right after.
			if err := bw.Flush(); err != nil {
				wc.Close()
				return fmt.Errorf("flush output: %w", err)
			}
			return wc.Close()
		},
	}
}

// sqliteWriter builds a rowWriter loading records into the configured SQLite
// table. The projected header supplies the column names.
func (p *Processor) sqliteWriter(ctx context.Context, outHeader []string) rowWriter {
	loader, err := sqlite.Open(ctx, p.cfg.SQLitePath, p.cfg.SQLiteTable, outHeader)
	if err != nil {
		return rowWriter{err: &RunError{Kind: FailIO, Err: err}}
	}
	if p.cfg.Verbose {
		log.Printf("sqlite: loading into %s (%s) columns=%v",
			p.cfg.SQLitePath, p.cfg.SQLiteTable, loader.Columns())
	}
	return rowWriter{
		write:  func(fields []string) error { return loader.WriteRow(ctx, fields) },
		finish: func() error { return loader.Close(ctx) },
	}
}

// source selects the input abstraction once: file-backed when a path is
// configured, standard input otherwise.
func (p *Processor) source() datasource.Source {
	if p.cfg.Input != "" {
		return dsfile.NewLocal(p.cfg.Input)
	}
	return stdio.NewStdin()
}

// textSink selects the output abstraction once: file-backed when a path is
// configured, standard output otherwise.
func (p *Processor) textSink() sink.Sink {
	if p.cfg.Output != "" {
		return sinkfile.NewLocal(p.cfg.Output)
	}
	return sinkstdio.NewStdout()
}

// printStats writes the end-of-run report to stderr. The memory figure is an
// estimate derived from the configured buffer size (one read buffer plus one
// write buffer), not a measurement.
func (p *Processor) printStats(digest uint64) {
	t := p.tracker
	elapsed := t.Elapsed()

	fmt.Fprintf(os.Stderr, "\n=== Processing Statistics ===\n")
	fmt.Fprintf(os.Stderr, "Records processed: %d\n", t.Records())
	fmt.Fprintf(os.Stderr, "Bytes processed: %d\n", t.Bytes())
	fmt.Fprintf(os.Stderr, "Processing time: %s\n", elapsed.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "Records per second: %.2f\n", t.RecordsPerSecond())
	fmt.Fprintf(os.Stderr, "Memory usage: %.2f MB (estimated)\n", p.memoryEstimateMB())
	if p.cfg.Checksum {
		fmt.Fprintf(os.Stderr, "Input checksum (xxh3): %016x\n", digest)
	}
}

// memoryEstimateMB returns the estimated memory footprint in megabytes:
// buffer size times two, reflecting that memory use is dominated by the I/O
// buffers rather than record storage.
func (p *Processor) memoryEstimateMB() float64 {
	return float64(p.cfg.BufferSize) / (1024 * 1024) * 2
}

// countingReader counts bytes as they are read from the underlying source.
type countingReader struct {
	r       io.Reader
	tracker *stats.Tracker
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	if n > 0 {
		c.tracker.AddBytes(uint64(n))
	}
	return n, err
}
