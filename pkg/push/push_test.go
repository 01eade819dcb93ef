package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type collector struct {
	srv      *httptest.Server
	received chan map[string]any
	conns    chan *websocket.Conn
}

func newCollector(t *testing.T) *collector {
	t.Helper()

	c := &collector{
		received: make(chan map[string]any, 16),
		conns:    make(chan *websocket.Conn, 4),
	}

	upgrader := websocket.Upgrader{}

	c.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		c.conns <- conn

		for {
			var msg map[string]any
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}

			c.received <- msg
		}
	}))
	t.Cleanup(c.srv.Close)

	return c
}

func (c *collector) url() string {
	return "ws" + strings.TrimPrefix(c.srv.URL, "http") + "/moni"
}

func TestWebSocketSink_Send(t *testing.T) {
	c := newCollector(t)

	sink := NewWebSocketSink(c.url(), 10*time.Millisecond, nil)
	defer sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, sink.Connect(ctx))
	require.NoError(t, sink.Send(ctx, map[string]any{"varname": "alert", "prio": 1}))

	select {
	case msg := <-c.received:
		assert.Equal(t, "alert", msg["varname"])
		assert.InDelta(t, 1.0, msg["prio"], 0)
	case <-ctx.Done():
		t.Fatal("message never arrived")
	}
}

func TestWebSocketSink_Reconnects(t *testing.T) {
	c := newCollector(t)

	sink := NewWebSocketSink(c.url(), 10*time.Millisecond, nil)
	defer sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, sink.Send(ctx, map[string]any{"n": 1}))
	<-c.received

	// collector drops the connection
	(<-c.conns).Close()

	// writes to the dead socket eventually fail and drop the connection
	require.Eventually(t, func() bool {
		return errors.Is(sink.Send(ctx, map[string]any{"n": 2}), ErrSendFailed)
	}, 3*time.Second, 10*time.Millisecond)

	// reconnects once the retry wait has passed
	require.Eventually(t, func() bool {
		return sink.Send(ctx, map[string]any{"n": 3}) == nil
	}, 3*time.Second, 10*time.Millisecond)

	for {
		select {
		case msg := <-c.received:
			if msg["n"] == 3.0 {
				return
			}
		case <-ctx.Done():
			t.Fatal("no message after reconnect")
		}
	}
}

func TestWebSocketSink_ConnectGivesUp(t *testing.T) {
	sink := NewWebSocketSink("ws://127.0.0.1:1/moni", 20*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.Error(t, sink.Connect(ctx))
	require.NoError(t, sink.Close())
	require.ErrorIs(t, sink.Send(context.Background(), "x"), ErrClosed)
}

func TestWebSocketSink_CollectorDown(t *testing.T) {
	sink := NewWebSocketSink("ws://127.0.0.1:1/moni", time.Minute, nil)
	defer sink.Close()

	tests := []struct {
		name string
		want error
	}{
		{name: "dial fails", want: ErrSendFailed},
		{name: "within retry wait", want: ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan error, 1)

			go func() { done <- sink.Send(context.Background(), map[string]any{"varname": "alert"}) }()

			select {
			case err := <-done:
				require.ErrorIs(t, err, ErrSendFailed)
				require.ErrorIs(t, err, tt.want)
			case <-time.After(2 * time.Second):
				t.Fatal("Send blocked while the collector is down")
			}
		})
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer

	sink := NewWriterSink(&buf)
	require.NoError(t, sink.Send(context.Background(), map[string]any{"varname": "dom_cabling"}))
	require.NoError(t, sink.Close())

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "dom_cabling", out["varname"])
	assert.Contains(t, buf.String(), "\n    \"varname\"")

	require.ErrorIs(t, sink.Send(context.Background(), make(chan int)), ErrSendFailed)
}

func TestTee(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a, b := NewMockSink(ctrl), NewMockSink(ctrl)
	boom := errors.New("boom")

	a.EXPECT().Send(gomock.Any(), "msg").Return(boom)
	b.EXPECT().Send(gomock.Any(), "msg").Return(nil)
	a.EXPECT().Close().Return(nil)
	b.EXPECT().Close().Return(nil)

	tee := Tee{a, b}
	require.ErrorIs(t, tee.Send(context.Background(), "msg"), boom)
	require.NoError(t, tee.Close())
}
