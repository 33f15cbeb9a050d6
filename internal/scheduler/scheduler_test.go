package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFlusher struct {
	calls atomic.Int32
	err   error
}

func (c *countingFlusher) Flush(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestParseSpec(t *testing.T) {
	for _, spec := range []string{"@every 5s", "*/2 * * * * *", "0 9 * * *", "@hourly"} {
		_, err := ParseSpec(spec)
		assert.NoError(t, err, spec)
	}
	_, err := ParseSpec("not a spec")
	assert.Error(t, err)
}

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New("every five seconds", &countingFlusher{}, nil)
	assert.Error(t, err)
}

func TestScheduler_Disabled(t *testing.T) {
	f := &countingFlusher{}
	s, err := New("", f, nil)
	require.NoError(t, err)
	assert.False(t, s.Enabled())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Start(ctx), context.DeadlineExceeded)
	assert.Zero(t, f.calls.Load())
}

func TestScheduler_FlushesOnSchedule(t *testing.T) {
	f := &countingFlusher{err: errors.New("logged, not fatal")}
	s, err := New("@every 1s", f, nil)
	require.NoError(t, err)
	assert.True(t, s.Enabled())
	assert.Equal(t, "@every 1s", s.Spec())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return f.calls.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
