package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// WriteFunc is a callback that performs database writes inside a transaction.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// BatchWriter buffers concordance writes and commits them in batches, one
// transaction per batch. A failing write rolls back its whole batch.
type BatchWriter struct {
	mu          sync.Mutex
	buf         []WriteFunc
	cap         int
	flushTicker *time.Ticker
	closed      bool
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	commitCh chan []WriteFunc
	db       *sql.DB
	OnError  func(error)
	Logger   *zap.Logger

	// errMu guards lastErr, the first asynchronous error seen by the writer.
	errMu   sync.Mutex
	lastErr error
}

// NewBatchWriter creates a new BatchWriter.
// db may be nil, in which case callbacks run with a nil transaction.
// A batch is committed once bufferSize writes are queued or, when
// flushInterval is positive, after that much time.
func NewBatchWriter(db *sql.DB, bufferSize int, flushInterval time.Duration) *BatchWriter {
	if bufferSize <= 0 {
		bufferSize = 10
	}
	ctx, cancel := context.WithCancel(context.Background())
	bw := &BatchWriter{
		buf:      make([]WriteFunc, 0, bufferSize),
		cap:      bufferSize,
		ctx:      ctx,
		cancel:   cancel,
		commitCh: make(chan []WriteFunc, 2),
		db:       db,
		Logger:   zap.NewNop(),
	}

	bw.wg.Add(1)
	go bw.committer()

	if flushInterval > 0 {
		bw.flushTicker = time.NewTicker(flushInterval)
		bw.wg.Add(1)
		go bw.loop()
	}
	return bw
}

// Submit enqueues a write function.
func (bw *BatchWriter) Submit(w WriteFunc) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, w)
	if len(bw.buf) >= bw.cap {
		bw.flushLocked()
	}
	return nil
}

// flushLocked hands the buffer to the committer. Caller holds bw.mu.
// Blocking on a busy committer is the writer's backpressure.
func (bw *BatchWriter) flushLocked() {
	if len(bw.buf) == 0 {
		return
	}
	batch := bw.buf
	bw.buf = make([]WriteFunc, 0, bw.cap)

	if bw.ctx.Err() != nil {
		bw.drop(batch)
		return
	}
	select {
	case bw.commitCh <- batch:
	case <-bw.ctx.Done():
		bw.drop(batch)
	}
}

func (bw *BatchWriter) drop(batch []WriteFunc) {
	bw.fail(fmt.Errorf("batch writer: dropping batch of %d items due to context cancellation", len(batch)))
}

// fail records the first error and reports every error to OnError.
func (bw *BatchWriter) fail(err error) {
	bw.errMu.Lock()
	if bw.lastErr == nil {
		bw.lastErr = err
	}
	bw.errMu.Unlock()
	bw.Logger.Warn("batch write failed", zap.Error(err))
	if bw.OnError != nil {
		bw.OnError(err)
	}
}

func (bw *BatchWriter) committer() {
	defer bw.wg.Done()
	for batch := range bw.commitCh {
		if err := bw.executeBatch(batch); err != nil {
			bw.fail(err)
		}
	}
}

func (bw *BatchWriter) executeBatch(batch []WriteFunc) error {
	if bw.db == nil {
		for _, w := range batch {
			if err := w(bw.ctx, nil); err != nil {
				return err
			}
		}
		return nil
	}

	// Pending batches are still committed while the writer is closing.
	ctx := context.Background()

	tx, err := bw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	for _, w := range batch {
		if err := w(ctx, tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch (%d items): %w", len(batch), err)
	}
	bw.Logger.Debug("batch committed", zap.Int("items", len(batch)))
	return nil
}

func (bw *BatchWriter) loop() {
	defer bw.wg.Done()
	for {
		select {
		case <-bw.ctx.Done():
			return
		case <-bw.flushTicker.C:
			bw.mu.Lock()
			bw.flushLocked()
			bw.mu.Unlock()
		}
	}
}

// Err returns the first asynchronous error recorded so far.
func (bw *BatchWriter) Err() error {
	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.lastErr
}

// Close stops accepting submissions, commits what is buffered and waits for
// pending batches. It returns the first error recorded during the writer's life.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	if bw.flushTicker != nil {
		bw.flushTicker.Stop()
	}
	bw.flushLocked()
	bw.mu.Unlock()

	bw.cancel()
	close(bw.commitCh)
	bw.wg.Wait()

	return bw.Err()
}

// ErrBatchWriterClosed is returned by Submit and Close once the writer is closed.
var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

// BatchWriterError is the typed error of batch writer operations.
type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
