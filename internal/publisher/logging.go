package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crystaldolphin/buswriter/internal/bus"
)

// Logging records every publish attempt on logger and delegates to next.
type Logging struct {
	next   bus.Publisher
	name   string
	logger *slog.Logger
}

// NewLogging wraps next. name identifies the transport in log lines.
// A nil logger falls back to slog.Default().
func NewLogging(next bus.Publisher, name string, logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logging{next: next, name: name, logger: logger}
}

func (l *Logging) Publish(ctx context.Context, batch []byte) error {
	id := uuid.NewString()
	start := time.Now()

	err := l.next.Publish(ctx, batch)
	if err != nil {
		l.logger.Error("publish failed", "publisher", l.name, "batch", id, "bytes", len(batch), "err", err)
		return err
	}
	l.logger.Info("published", "publisher", l.name, "batch", id, "bytes", len(batch), "elapsed", time.Since(start))
	return nil
}
