package bus

import (
	"context"
	"sync"
)

// DefaultCapacity is the number of batches a MessageBus holds before
// Publish starts blocking.
const DefaultCapacity = 100

// MessageBus is the in-process Publisher backed by a buffered Go channel.
//
// The writer pushes flushed batches in; a consumer drains them via Subscribe.
// Publish blocks while the channel is full, until ctx is done.
type MessageBus struct {
	ch chan Batch

	mu     sync.RWMutex
	closed bool
}

// NewMessageBus creates a MessageBus holding up to capacity pending batches.
// A non-positive capacity falls back to DefaultCapacity.
func NewMessageBus(capacity int) *MessageBus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MessageBus{ch: make(chan Batch, capacity)}
}

// Publish copies batch into a Batch and enqueues it.
func (b *MessageBus) Publish(ctx context.Context, batch []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.ch <- NewBatch(batch):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a receive-only view of the batch channel.
// The channel is closed by Close.
func (b *MessageBus) Subscribe() <-chan Batch {
	return b.ch
}

// Size reports the number of batches waiting to be consumed.
func (b *MessageBus) Size() int { return len(b.ch) }

// Close stops accepting batches and closes the subscription channel.
// Pending batches stay readable. Close waits for in-flight Publish calls
// to return and is idempotent.
func (b *MessageBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.ch)
	}
	return nil
}
