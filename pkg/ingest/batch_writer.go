package ingest

import (
	"context"
	"fmt"
	"sync"
)

// FlushFunc writes one batch. Implementations are expected to be atomic per call
// (one transaction per batch).
type FlushFunc[T any] func(ctx context.Context, batch []T) error

// BatchResult reports the outcome of one flushed batch.
type BatchResult struct {
	Table string
	// Index is the 0-based sequence number of the batch within its table.
	Index int
	Size  int
	// Err is a *BatchError when the batch failed, nil otherwise.
	Err error
}

// BatchError describes a batch that could not be written.
type BatchError struct {
	Table string
	Index int
	Size  int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s batch %d (%d rows): %v", e.Table, e.Index, e.Size, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// BatchWriter buffers items and flushes them in fixed-size batches, one batch
// at a time. A failed batch is recorded and skipped; later batches still run
// and earlier ones are not rolled back.
type BatchWriter[T any] struct {
	mu     sync.Mutex
	buf    []T
	cap    int
	closed bool
	table  string
	flush  FlushFunc[T]
	next   int

	// OnBatch is called after every flush, successful or not.
	OnBatch func(BatchResult)

	results []BatchResult
}

// NewBatchWriter creates a BatchWriter for table.
// bufferSize: flush when buffer reaches this size.
func NewBatchWriter[T any](table string, bufferSize int, flush FlushFunc[T]) *BatchWriter[T] {
	if bufferSize <= 0 {
		bufferSize = 50
	}
	return &BatchWriter[T]{
		buf:   make([]T, 0, bufferSize),
		cap:   bufferSize,
		table: table,
		flush: flush,
	}
}

// Submit enqueues an item, flushing when the buffer is full. It only fails when
// the writer is closed or ctx is done; batch write errors are reported through
// OnBatch and Close.
func (bw *BatchWriter[T]) Submit(ctx context.Context, item T) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	bw.buf = append(bw.buf, item)
	if len(bw.buf) >= bw.cap {
		bw.flushLocked(ctx)
	}
	return nil
}

// flushLocked assumes bw.mu is held.
func (bw *BatchWriter[T]) flushLocked(ctx context.Context) {
	if len(bw.buf) == 0 {
		return
	}
	batch := bw.buf
	bw.buf = make([]T, 0, bw.cap)

	res := BatchResult{Table: bw.table, Index: bw.next, Size: len(batch)}
	bw.next++
	if err := bw.flush(ctx, batch); err != nil {
		res.Err = &BatchError{Table: bw.table, Index: res.Index, Size: res.Size, Err: err}
	}
	bw.results = append(bw.results, res)
	if bw.OnBatch != nil {
		bw.OnBatch(res)
	}
}

// Close flushes any buffered items and returns the results of every batch.
// The error is non-nil only if the writer was already closed or ctx is done
// before the final flush.
func (bw *BatchWriter[T]) Close(ctx context.Context) ([]BatchResult, error) {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return bw.results, ErrBatchWriterClosed
	}
	bw.closed = true
	if err := ctx.Err(); err != nil {
		return bw.results, err
	}
	bw.flushLocked(ctx)
	return bw.results, nil
}

var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
