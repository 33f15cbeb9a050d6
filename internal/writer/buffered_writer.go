// Package writer implements the buffered message-bus writer.
//
// A BufferedWriter accumulates message bytes in memory and hands the whole
// buffer to a bus.Publisher once its length exceeds the configured threshold.
// Writes are fully serialized: append, threshold check and the optional flush
// run under one guard, so a concurrent writer waits for the whole sequence,
// including the publisher round-trip.
package writer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/crystaldolphin/buswriter/internal/bus"
)

// BufferedWriter buffers outbound messages and flushes them to a Publisher.
type BufferedWriter struct {
	publisher bus.Publisher
	threshold int
	logger    *slog.Logger

	// guard has weight 1; holding it grants exclusive access to buf and closed.
	guard  *semaphore.Weighted
	buf    []byte
	closed bool
}

// New creates a BufferedWriter publishing through p.
// It fails when p is nil or s does not validate.
func New(p bus.Publisher, s Settings, opts ...Option) (*BufferedWriter, error) {
	if p == nil {
		return nil, ErrNilPublisher
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	w := &BufferedWriter{
		publisher: p,
		threshold: s.BufferThreshold,
		logger:    slog.Default(),
		guard:     semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Threshold returns the configured buffer threshold in bytes.
func (w *BufferedWriter) Threshold() int { return w.threshold }

// Write appends message to the buffer and flushes if the buffered length
// now exceeds the threshold.
//
// If ctx is done before the guard is acquired, Write returns ctx.Err() and
// the buffer is untouched. Once acquired, the append and any flush run to
// completion; ctx is passed on to the publisher. A publish error is returned
// wrapped and the buffer keeps every byte, including message.
func (w *BufferedWriter) Write(ctx context.Context, message []byte) error {
	if len(message) == 0 {
		return ErrEmptyMessage
	}
	if err := w.acquire(ctx); err != nil {
		return err
	}
	defer w.guard.Release(1)

	if w.closed {
		return ErrClosed
	}

	w.buf = append(w.buf, message...)
	if w.thresholdReached() {
		return w.flushLocked(ctx)
	}
	return nil
}

// Flush publishes whatever is buffered, regardless of the threshold.
// Flushing an empty buffer is a no-op.
func (w *BufferedWriter) Flush(ctx context.Context) error {
	if err := w.acquire(ctx); err != nil {
		return err
	}
	defer w.guard.Release(1)

	if w.closed {
		return ErrClosed
	}
	if len(w.buf) == 0 {
		return nil
	}
	return w.flushLocked(ctx)
}

// Close flushes the remaining bytes and rejects further writes.
// If the final flush fails the writer stays open so Close can be retried.
func (w *BufferedWriter) Close(ctx context.Context) error {
	if err := w.acquire(ctx); err != nil {
		return err
	}
	defer w.guard.Release(1)

	if w.closed {
		return nil
	}
	if len(w.buf) > 0 {
		if err := w.flushLocked(ctx); err != nil {
			return err
		}
	}
	w.closed = true
	return nil
}

// Buffered returns the number of bytes currently buffered.
// It waits for any in-progress write or flush to finish.
func (w *BufferedWriter) Buffered() int {
	// Acquire only fails on a done context; Background never is.
	_ = w.guard.Acquire(context.Background(), 1)
	defer w.guard.Release(1)
	return len(w.buf)
}

// acquire takes the guard, refusing up front when ctx is already done so a
// cancelled caller never wins a free guard.
func (w *BufferedWriter) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return w.guard.Acquire(ctx, 1)
}

func (w *BufferedWriter) thresholdReached() bool {
	return len(w.buf) > w.threshold
}

// flushLocked publishes a snapshot of buf and resets it on success.
// The caller must hold the guard.
func (w *BufferedWriter) flushLocked(ctx context.Context) error {
	batch := bytes.Clone(w.buf)

	start := time.Now()
	if err := w.publisher.Publish(ctx, batch); err != nil {
		w.logger.Warn("writer: publish failed, keeping buffer", "bytes", len(batch), "err", err)
		return fmt.Errorf("publish batch: %w", err)
	}

	w.reset()
	w.logger.Debug("writer: flushed", "bytes", len(batch), "elapsed", time.Since(start))
	return nil
}

// reset zeroes the whole backing array before truncating, so no message
// bytes linger in reused capacity.
func (w *BufferedWriter) reset() {
	clear(w.buf[:cap(w.buf)])
	w.buf = w.buf[:0]
}
