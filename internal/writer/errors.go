package writer

import "errors"

var (
	ErrNilPublisher     = errors.New("writer: publisher is required")
	ErrInvalidThreshold = errors.New("writer: buffer threshold must be positive")
	ErrEmptyMessage     = errors.New("writer: message is empty")
	ErrClosed           = errors.New("writer: closed")
)
