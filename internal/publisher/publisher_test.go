package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystaldolphin/buswriter/internal/bus"
)

// wsServer accepts WebSocket connections and forwards every frame to frames.
func wsServer(t *testing.T) (*httptest.Server, <-chan []byte) {
	t.Helper()
	frames := make(chan []byte, 16)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			typ, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if typ == websocket.BinaryMessage {
				frames <- data
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, frames
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocket_Publish(t *testing.T) {
	srv, frames := wsServer(t)

	p, err := NewWebSocket(wsURL(srv), nil)
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()
	require.NoError(t, p.Publish(ctx, []byte("first")))
	require.NoError(t, p.Publish(ctx, []byte("second")))

	for _, want := range []string{"first", "second"} {
		select {
		case got := <-frames:
			assert.Equal(t, want, string(got))
		case <-time.After(2 * time.Second):
			require.FailNowf(t, "timed out", "waiting for %q", want)
		}
	}
}

func TestWebSocket_DialFailure(t *testing.T) {
	p, err := NewWebSocket("ws://127.0.0.1:1/none", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, p.Publish(ctx, []byte("x")))
	assert.NoError(t, p.Close())
}

func TestNewWebSocket_Validation(t *testing.T) {
	_, err := NewWebSocket("", nil)
	assert.ErrorIs(t, err, ErrEmptyURL)

	_, err = NewWebSocket("http://example.com", nil)
	assert.ErrorIs(t, err, ErrInvalidScheme)
}

func TestSlack_Publish(t *testing.T) {
	var got struct {
		Text string `json:"text"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, err := NewSlack(srv.URL, srv.Client())
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), []byte("deploy finished")))
	assert.Equal(t, "deploy finished", got.Text)
}

func TestSlack_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := NewSlack(srv.URL, nil)
	require.NoError(t, err)
	assert.Error(t, p.Publish(context.Background(), []byte("x")))

	_, err = NewSlack("", nil)
	assert.ErrorIs(t, err, ErrEmptyURL)
}

func TestSlack_RejectsBinaryBatch(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, err := NewSlack(srv.URL, srv.Client())
	require.NoError(t, err)

	err = p.Publish(context.Background(), []byte{0xff, 0xfe, 'o', 'k'})
	assert.ErrorIs(t, err, ErrNotText)

	compressed := NewSnappy(p)
	err = compressed.Publish(context.Background(), []byte(strings.Repeat("line\n", 50)))
	assert.ErrorIs(t, err, ErrNotText)
	assert.Zero(t, calls)
}

func TestSnappy_EncodesBatch(t *testing.T) {
	var encoded []byte
	next := bus.PublisherFunc(func(_ context.Context, batch []byte) error {
		encoded = batch
		return nil
	})

	payload := []byte(strings.Repeat("compress me ", 50))
	require.NoError(t, NewSnappy(next).Publish(context.Background(), payload))

	assert.Less(t, len(encoded), len(payload))
	decoded, err := snappy.Decode(nil, encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestFanOut(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	target := func(name string, err error) bus.Publisher {
		return bus.PublisherFunc(func(_ context.Context, batch []byte) error {
			mu.Lock()
			seen = append(seen, name+":"+string(batch))
			mu.Unlock()
			return err
		})
	}

	f, err := NewFanOut(target("a", nil), target("b", nil))
	require.NoError(t, err)
	require.NoError(t, f.Publish(context.Background(), []byte("x")))
	assert.ElementsMatch(t, []string{"a:x", "b:x"}, seen)

	boom := errors.New("down")
	f, err = NewFanOut(target("a", nil), target("c", boom))
	require.NoError(t, err)
	assert.ErrorIs(t, f.Publish(context.Background(), []byte("y")), boom)

	_, err = NewFanOut()
	assert.ErrorIs(t, err, ErrNoTargets)
}

func TestLogging_PassesThroughErrors(t *testing.T) {
	boom := errors.New("nope")
	calls := 0
	next := bus.PublisherFunc(func(context.Context, []byte) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})

	l := NewLogging(next, "test", nil)
	assert.NoError(t, l.Publish(context.Background(), []byte("a")))
	assert.ErrorIs(t, l.Publish(context.Background(), []byte("b")), boom)
	assert.Equal(t, 2, calls)
}

func TestNewRedisFromURL_Validation(t *testing.T) {
	_, err := NewRedisFromURL("", "ch")
	assert.ErrorIs(t, err, ErrEmptyURL)

	_, err = NewRedisFromURL("http://localhost:6379", "ch")
	assert.ErrorIs(t, err, ErrInvalidScheme)

	_, err = NewRedisFromURL("redis://localhost:6379/0", "")
	assert.ErrorIs(t, err, ErrEmptyChannel)
}

func TestRedis_Publish(t *testing.T) {
	url := os.Getenv("BUSWRITER_TEST_REDIS_URL")
	if url == "" {
		t.Skip("BUSWRITER_TEST_REDIS_URL not set")
	}

	p, err := NewRedisFromURL(url, "buswriter-test")
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := p.client.Subscribe(ctx, "buswriter-test")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, p.Ping(ctx))
	require.NoError(t, p.Publish(ctx, []byte("batch")))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "batch", msg.Payload)
}
