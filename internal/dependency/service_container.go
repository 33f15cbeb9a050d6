// Package dependency wires core buswriter services using go.uber.org/dig.
package dependency

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/dig"

	"github.com/crystaldolphin/buswriter/internal/bus"
	"github.com/crystaldolphin/buswriter/internal/config"
	"github.com/crystaldolphin/buswriter/internal/publisher"
	"github.com/crystaldolphin/buswriter/internal/scheduler"
	"github.com/crystaldolphin/buswriter/internal/writer"
)

// ServiceContainer holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type ServiceContainer struct {
	logger    *slog.Logger
	msgBus    *bus.MessageBus
	publisher bus.Publisher
	writer    *writer.BufferedWriter
	scheduler *scheduler.Scheduler
	closers   []io.Closer
}

func (c *ServiceContainer) Logger() *slog.Logger            { return c.logger }
func (c *ServiceContainer) MessageBus() *bus.MessageBus     { return c.msgBus }
func (c *ServiceContainer) Publisher() bus.Publisher        { return c.publisher }
func (c *ServiceContainer) Writer() *writer.BufferedWriter  { return c.writer }
func (c *ServiceContainer) Scheduler() *scheduler.Scheduler { return c.scheduler }

// LogOutput is a named writer type so dig can distinguish the log
// destination from any other io.Writer.
type LogOutput struct{ io.Writer }

// Transports holds the raw transport publisher selected by configuration,
// before compression and logging are layered on, plus what must be closed.
type Transports struct {
	Publisher bus.Publisher
	Closers   []io.Closer
}

// New builds and wires all core services from cfg, logging to stderr.
func New(cfg *config.Config) (*ServiceContainer, error) {
	return NewWithLogOutput(cfg, os.Stderr)
}

// NewWithLogOutput is New with an explicit log destination.
func NewWithLogOutput(cfg *config.Config, out io.Writer) (*ServiceContainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := dig.New()

	if err := d.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := d.Provide(func() LogOutput { return LogOutput{out} }); err != nil {
		return nil, err
	}
	if err := d.Provide(newLogger); err != nil {
		return nil, err
	}
	if err := d.Provide(newMessageBus); err != nil {
		return nil, err
	}
	if err := d.Provide(newTransports); err != nil {
		return nil, err
	}
	if err := d.Provide(newPublisher); err != nil {
		return nil, err
	}
	if err := d.Provide(newWriter); err != nil {
		return nil, err
	}
	if err := d.Provide(newScheduler); err != nil {
		return nil, err
	}

	var result *ServiceContainer
	err := d.Invoke(func(
		logger *slog.Logger,
		msgBus *bus.MessageBus,
		t *Transports,
		p bus.Publisher,
		w *writer.BufferedWriter,
		s *scheduler.Scheduler,
	) {
		result = &ServiceContainer{
			logger:    logger,
			msgBus:    msgBus,
			publisher: p,
			writer:    w,
			scheduler: s,
			closers:   t.Closers,
		}
	})
	if err != nil {
		return nil, dig.RootCause(err)
	}
	return result, nil
}

// Shutdown flushes and closes the writer, then releases every transport.
// Transports are released even when the final flush fails.
func (c *ServiceContainer) Shutdown(ctx context.Context) error {
	var errs []error
	if err := c.writer.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close writer: %w", err))
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.msgBus.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func newLogger(cfg *config.Config, out LogOutput) *slog.Logger {
	return cfg.Log.NewLogger(out)
}

func newMessageBus(cfg *config.Config) *bus.MessageBus {
	return bus.NewMessageBus(cfg.Publisher.Bus.Capacity)
}

func newTransports(cfg *config.Config, b *bus.MessageBus, logger *slog.Logger) (*Transports, error) {
	pc := cfg.Publisher
	t := &Transports{}

	if pc.Kind != config.KindFanOut {
		p, err := t.build(pc.Kind, &pc, b)
		if err != nil {
			t.close()
			return nil, err
		}
		t.Publisher = p
		return t, nil
	}

	targets := make([]bus.Publisher, 0, len(pc.Targets))
	for _, kind := range pc.Targets {
		p, err := t.build(kind, &pc, b)
		if err != nil {
			t.close()
			return nil, err
		}
		targets = append(targets, publisher.NewLogging(p, kind, logger))
	}
	f, err := publisher.NewFanOut(targets...)
	if err != nil {
		t.close()
		return nil, err
	}
	t.Publisher = f
	return t, nil
}

// build creates one transport and records it for closing.
func (t *Transports) build(kind string, pc *config.PublisherConfig, b *bus.MessageBus) (bus.Publisher, error) {
	switch kind {
	case config.KindBus:
		return b, nil
	case config.KindWebSocket:
		header := http.Header{}
		for k, v := range pc.WebSocket.Headers {
			header.Set(k, v)
		}
		p, err := publisher.NewWebSocket(pc.WebSocket.URL, header)
		if err != nil {
			return nil, err
		}
		t.Closers = append(t.Closers, p)
		return p, nil
	case config.KindRedis:
		p, err := publisher.NewRedisFromURL(pc.Redis.URL, pc.Redis.Channel)
		if err != nil {
			return nil, err
		}
		t.Closers = append(t.Closers, p)
		return p, nil
	case config.KindSlack:
		return publisher.NewSlack(pc.Slack.WebhookURL, nil)
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownKind, kind)
}

func (t *Transports) close() {
	for _, c := range t.Closers {
		_ = c.Close()
	}
	t.Closers = nil
}

// newPublisher layers optional compression and logging over the transport.
func newPublisher(cfg *config.Config, t *Transports, logger *slog.Logger) bus.Publisher {
	p := t.Publisher
	if cfg.Publisher.Compress {
		p = publisher.NewSnappy(p)
	}
	return publisher.NewLogging(p, cfg.Publisher.Kind, logger)
}

func newWriter(cfg *config.Config, p bus.Publisher, logger *slog.Logger) (*writer.BufferedWriter, error) {
	return writer.New(p, cfg.Writer, writer.WithLogger(logger))
}

func newScheduler(cfg *config.Config, w *writer.BufferedWriter, logger *slog.Logger) (*scheduler.Scheduler, error) {
	return scheduler.New(cfg.Flush.Schedule, w, logger)
}
