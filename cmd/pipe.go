package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crystaldolphin/buswriter/internal/bus"
	"github.com/crystaldolphin/buswriter/internal/dependency"
)

const (
	pipeShutdownTimeout = 30 * time.Second
	maxLineSize         = 1 << 20
)

var pipeKeepNewline bool

var pipeCmd = &cobra.Command{
	Use:   "pipe",
	Short: "Buffer stdin line by line and publish it in batches",
	Long: "pipe writes every stdin line as one message to the buffered writer. " +
		"Batches are published whenever the buffer exceeds the threshold, on the " +
		"configured flush schedule, and once more at EOF or on SIGINT/SIGTERM.",
	RunE: runPipe,
}

func init() {
	pipeCmd.Flags().BoolVar(&pipeKeepNewline, "newline", true, "Keep the trailing newline on every message")
}

// messageWriter is the part of writer.BufferedWriter pipe needs.
type messageWriter interface {
	Write(ctx context.Context, message []byte) error
}

func runPipe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := dependency.New(cfg)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	slog.SetDefault(c.Logger())

	// Without a consumer the in-process bus would fill up and block flushes.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		printBatches(cmd.OutOrStdout(), c.MessageBus().Subscribe())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	schedCtx, stopScheduler := context.WithCancel(gctx)

	g.Go(func() error {
		if err := c.Scheduler().Start(schedCtx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer stopScheduler()
		return pipeLines(gctx, cmd.InOrStdin(), c.Writer(), pipeKeepNewline)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), pipeShutdownTimeout)
	defer cancel()
	if sErr := c.Shutdown(shutdownCtx); sErr != nil {
		err = errors.Join(err, sErr)
	}
	<-drained
	return err
}

// pipeLines writes every line of r to w until EOF or ctx is done.
// Publish failures are logged and reading continues: the writer keeps the
// unpublished bytes and retries them on the next flush.
func pipeLines(ctx context.Context, r io.Reader, w messageWriter, keepNewline bool) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			if keepNewline {
				line = append(line, '\n')
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read stdin: %w", err)
					}
				default:
				}
				return nil
			}
			if len(line) == 0 {
				continue
			}
			if err := w.Write(ctx, line); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				slog.Warn("pipe: write failed, bytes kept for the next flush", "err", err)
			}
		}
	}
}

func printBatches(out io.Writer, batches <-chan bus.Batch) {
	for b := range batches {
		fmt.Fprintf(out, "── batch %s (%d bytes) ──\n%s", b.ID(), b.Len(), b.Payload())
		if n := b.Len(); n > 0 && b.Payload()[n-1] != '\n' {
			fmt.Fprintln(out)
		}
	}
}
