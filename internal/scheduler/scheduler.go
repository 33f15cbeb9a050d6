// Package scheduler runs periodic explicit flushes of a buffered writer.
//
// The writer itself only flushes when a write crosses its threshold; a
// scheduler bounds how long a quiet buffer can sit unpublished.
package scheduler

import (
	"context"
	"log/slog"

	robfigcron "github.com/robfig/cron/v3"
)

// parser accepts standard five-field specs, an optional leading seconds
// field, and descriptors such as "@every 5s" or "@hourly".
var parser = robfigcron.NewParser(
	robfigcron.SecondOptional | robfigcron.Minute | robfigcron.Hour |
		robfigcron.Dom | robfigcron.Month | robfigcron.Dow | robfigcron.Descriptor,
)

// ParseSpec validates a cron spec.
func ParseSpec(spec string) (robfigcron.Schedule, error) {
	return parser.Parse(spec)
}

// Flusher is the part of writer.BufferedWriter the scheduler drives.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Scheduler calls Flush on every tick of a cron schedule.
type Scheduler struct {
	spec    string
	flusher Flusher
	logger  *slog.Logger
	cron    *robfigcron.Cron
}

// New creates a Scheduler. An empty spec yields a disabled scheduler whose
// Start only waits for cancellation.
func New(spec string, f Flusher, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{spec: spec, flusher: f, logger: logger}
	if spec == "" {
		return s, nil
	}

	sched, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	s.cron = robfigcron.New(robfigcron.WithParser(parser))
	s.cron.Schedule(sched, robfigcron.FuncJob(s.tick))
	return s, nil
}

// Enabled reports whether a schedule is configured.
func (s *Scheduler) Enabled() bool { return s.cron != nil }

// Spec returns the configured cron spec.
func (s *Scheduler) Spec() string { return s.spec }

// Start runs the schedule until ctx is cancelled, then waits for a running
// flush to finish. It always returns ctx.Err().
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cron == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	s.cron.Start()
	s.logger.Info("scheduler: started", "spec", s.spec)

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info("scheduler: stopped")
	return ctx.Err()
}

// tick flushes with a background context; a flush in progress when Start is
// cancelled completes rather than being abandoned mid-publish.
func (s *Scheduler) tick() {
	if err := s.flusher.Flush(context.Background()); err != nil {
		s.logger.Error("scheduler: flush failed", "err", err)
	}
}
