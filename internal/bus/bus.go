// Package bus defines the contract between the buffered writer and the
// message bus it flushes into, plus an in-process bus implementation.
package bus

import (
	"context"
	"errors"
)

// ErrBusClosed is returned when publishing to a closed MessageBus.
var ErrBusClosed = errors.New("bus: closed")

// Publisher delivers one batch of bytes to a message bus.
// Implementations may use buffered channels, pub/sub systems, or any other transport.
//
// The batch handed to Publish is never modified by the caller afterwards.
// ctx carries the caller's cancellation; how a Publisher reacts to it is up
// to the implementation.
type Publisher interface {
	Publish(ctx context.Context, batch []byte) error
}

// PublisherFunc adapts an ordinary function to the Publisher interface.
type PublisherFunc func(ctx context.Context, batch []byte) error

// Publish calls f(ctx, batch).
func (f PublisherFunc) Publish(ctx context.Context, batch []byte) error {
	return f(ctx, batch)
}
