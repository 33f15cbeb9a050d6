package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/golang/snappy"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crystaldolphin/buswriter/internal/shared/stringutils"
)

var (
	sinkPort       int
	sinkDecompress bool
)

var sinkCmd = &cobra.Command{
	Use:   "sink",
	Short: "Run a WebSocket endpoint that logs every batch it receives",
	RunE:  runSink,
}

func init() {
	sinkCmd.Flags().IntVarP(&sinkPort, "port", "p", 0, "Listen port (default from config)")
	sinkCmd.Flags().BoolVar(&sinkDecompress, "snappy", false, "Snappy-decode received batches")
}

func runSink(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cfg.Log.NewLogger(cmd.ErrOrStderr())

	port := cfg.Sink.Port
	if sinkPort != 0 {
		port = sinkPort
	}
	addr := net.JoinHostPort(cfg.Sink.Host, strconv.Itoa(port))

	srv := &http.Server{
		Addr:              addr,
		Handler:           newSinkHandler(logger, sinkDecompress),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("sink: listening", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	logger.Info("sink: stopped")
	return nil
}

// newSinkHandler upgrades every request to a WebSocket and logs each binary
// frame as one batch.
func newSinkHandler(logger *slog.Logger, decompress bool) http.Handler {
	upgrader := websocket.Upgrader{}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("sink: upgrade failed", "remote", r.RemoteAddr, "err", err)
			return
		}
		defer conn.Close()
		logger.Info("sink: publisher connected", "remote", r.RemoteAddr)

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Warn("sink: connection closed", "remote", r.RemoteAddr, "err", err)
				}
				return
			}
			if decompress {
				if data, err = snappy.Decode(nil, data); err != nil {
					logger.Error("sink: snappy decode failed", "err", err)
					continue
				}
			}
			logger.Info("sink: batch", "remote", r.RemoteAddr, "bytes", len(data), "preview", stringutils.Preview(data))
		}
	})
}
