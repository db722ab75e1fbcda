package pipeline

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// chunkQueueDepth bounds the reader→consumer hand-off so peak memory stays
// around chunkSize * (chunkQueueDepth + 2) regardless of input size.
const chunkQueueDepth = 4

// ChunkHandler processes one chunk of raw input bytes. The chunk is owned by
// the handler for the duration of the call only.
type ChunkHandler func(chunk []byte) error

// StreamChunks decouples raw-byte reading from downstream processing using a
// bounded hand-off queue between exactly one producer (the calling
// goroutine) and one consumer goroutine running handler.
//
// The producer reads fixed-size chunks from r; on end of stream it closes
// the queue, which is the consumer's sole termination signal. On a read
// error it stops and the error is the run's outcome. The consumer receives
// chunks in the order produced and applies handler; a handler error cancels
// the producer so neither side blocks forever.
//
// An unexpected crash of the consumer goroutine is reported as a distinct
// threading failure, never confused with an I/O or handler error.
func StreamChunks(ctx context.Context, r io.Reader, chunkSize int, handler ChunkHandler) error {
	if chunkSize <= 0 {
		return failf(FailConfig, "chunk size must be positive, got %d", chunkSize)
	}

	chunks := make(chan []byte, chunkQueueDepth)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = failf(FailThreading, "chunk consumer crashed: %v", p)
			}
		}()
		for chunk := range chunks {
			if herr := handler(chunk); herr != nil {
				return fmt.Errorf("chunk handler: %w", herr)
			}
		}
		return nil
	})

	g.Go(func() error {
		defer close(chunks)
		buf := make([]byte, chunkSize)
		for {
			n, rerr := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					// Consumer gone; stop producing instead of blocking.
					return nil
				}
			}
			if rerr == io.EOF {
				return nil
			}
			if rerr != nil {
				return &RunError{Kind: FailIO, Err: fmt.Errorf("read chunk: %w", rerr)}
			}
		}
	})

	return g.Wait()
}
