package publisher

import "errors"

var (
	ErrEmptyURL      = errors.New("publisher: url is required")
	ErrEmptyChannel  = errors.New("publisher: channel is required")
	ErrNoTargets     = errors.New("publisher: fan-out needs at least one target")
	ErrInvalidScheme = errors.New("publisher: unsupported url scheme")
	ErrNotText       = errors.New("publisher: batch is not valid UTF-8 text")
)
