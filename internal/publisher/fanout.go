package publisher

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/crystaldolphin/buswriter/internal/bus"
)

// FanOut publishes every batch to all targets concurrently.
// Publish returns the first error; the batch counts as published only when
// every target accepted it.
type FanOut struct {
	targets []bus.Publisher
}

func NewFanOut(targets ...bus.Publisher) (*FanOut, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	return &FanOut{targets: targets}, nil
}

func (f *FanOut) Publish(ctx context.Context, batch []byte) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range f.targets {
		t := t
		g.Go(func() error { return t.Publish(gctx, batch) })
	}
	return g.Wait()
}
