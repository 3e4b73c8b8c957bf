package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// TxFunc performs writes inside a batch transaction.
type TxFunc func(ctx context.Context, tx *sql.Tx) error

// Batch buffers writes and commits them together, one transaction per flush.
// A failing write rolls back the whole flush.
type Batch struct {
	mu      sync.Mutex
	db      *sql.DB
	size    int
	pending []TxFunc
	closed  bool
}

// ErrBatchClosed is returned by Add after Close.
var ErrBatchClosed = errors.New("batch closed")

// NewBatch returns a Batch that flushes automatically every size writes.
func NewBatch(db *sql.DB, size int) *Batch {
	if size <= 0 {
		size = 50
	}
	return &Batch{db: db, size: size, pending: make([]TxFunc, 0, size)}
}

// Add queues fn, flushing when the buffer is full.
func (b *Batch) Add(ctx context.Context, fn TxFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBatchClosed
	}
	b.pending = append(b.pending, fn)
	if len(b.pending) >= b.size {
		return b.flushLocked(ctx)
	}
	return nil
}

// Flush commits all queued writes.
func (b *Batch) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushLocked(ctx)
}

// Pending reports how many writes are waiting to be committed.
func (b *Batch) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *Batch) flushLocked(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}
	batch := b.pending
	b.pending = make([]TxFunc, 0, b.size)

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	for _, fn := range batch {
		if err := fn(ctx, tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch (%d items): %w", len(batch), err)
	}
	return nil
}

// Close flushes what is left and rejects further writes.
func (b *Batch) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.flushLocked(ctx)
}
