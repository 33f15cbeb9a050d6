package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWriteTimeout bounds a single frame write when ctx has no deadline.
const DefaultWriteTimeout = 10 * time.Second

// WebSocket publishes each batch as one binary frame on a WebSocket connection.
// The connection is dialed on first use and redialed after a failed write.
type WebSocket struct {
	url    string
	header http.Header
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocket creates a WebSocket publisher for a ws:// or wss:// url.
// header is sent with the handshake and may be nil.
func NewWebSocket(rawURL string, header http.Header) (*WebSocket, error) {
	if rawURL == "" {
		return nil, ErrEmptyURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse websocket url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScheme, u.Scheme)
	}
	return &WebSocket{
		url:    rawURL,
		header: header,
		dialer: websocket.DefaultDialer,
	}, nil
}

// Publish sends batch as a binary message.
func (w *WebSocket) Publish(ctx context.Context, batch []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	conn, err := w.connLocked(ctx)
	if err != nil {
		return err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultWriteTimeout)
	}
	_ = conn.SetWriteDeadline(deadline)

	if err := conn.WriteMessage(websocket.BinaryMessage, batch); err != nil {
		slog.Warn("websocket: write failed, dropping connection", "url", w.url, "err", err)
		conn.Close()
		w.conn = nil
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

// Close sends a close frame and releases the connection.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	err := w.conn.Close()
	w.conn = nil
	return err
}

func (w *WebSocket) connLocked(ctx context.Context) (*websocket.Conn, error) {
	if w.conn != nil {
		return w.conn, nil
	}
	conn, _, err := w.dialer.DialContext(ctx, w.url, w.header)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", w.url, err)
	}
	slog.Info("websocket: connected", "url", w.url)
	w.conn = conn
	return conn, nil
}
