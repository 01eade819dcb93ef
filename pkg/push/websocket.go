// Package push sends monitoring records and alerts to the collector.
package push

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/domhub/hubmoni/pkg/logger"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// WebSocketSink pushes JSON messages over a websocket to the collector.
// Send never waits for the collector: while it is unreachable each Send
// makes at most one connection attempt, spaced by the retry wait, and
// the message is dropped.
type WebSocketSink struct {
	url          string
	dialer       *websocket.Dialer
	limiter      *rate.Limiter
	retryWait    time.Duration
	dialTimeout  time.Duration
	writeTimeout time.Duration
	logger       logrus.FieldLogger

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewWebSocketSink returns an unconnected sink for url; retryWait spaces
// connection attempts.
func NewWebSocketSink(url string, retryWait time.Duration, log logrus.FieldLogger) *WebSocketSink {
	if log == nil {
		log = logger.Discard()
	}

	return &WebSocketSink{
		url:          url,
		dialer:       websocket.DefaultDialer,
		limiter:      rate.NewLimiter(rate.Every(retryWait), 1),
		retryWait:    retryWait,
		dialTimeout:  defaultDialTimeout,
		writeTimeout: defaultWriteTimeout,
		logger:       log.WithField("collector", url),
	}
}

// Connect keeps dialing until connected or ctx is done.
func (s *WebSocketSink) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.closed {
			return ErrClosed
		}

		if s.conn != nil {
			return nil
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("connecting to %s: %w", s.url, err)
		}

		if err := s.dialLocked(ctx); err != nil && ctx.Err() != nil {
			return fmt.Errorf("connecting to %s: %w", s.url, ctx.Err())
		}
	}
}

// ensureLocked makes one paced connection attempt when disconnected.
func (s *WebSocketSink) ensureLocked(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}

	if s.conn != nil {
		return nil
	}

	if !s.limiter.Allow() {
		return fmt.Errorf("%w: %w", ErrSendFailed, ErrNotConnected)
	}

	if err := s.dialLocked(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	return nil
}

func (s *WebSocketSink) dialLocked(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.dialTimeout)
	defer cancel()

	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		s.logger.WithError(err).Warnf("couldn't connect to collector, trying again in %s", s.retryWait)

		return err
	}

	s.conn = conn
	s.logger.Info("connected to collector")

	return nil
}

// Send writes v as one JSON text message. A failed write drops the
// connection; a later Send reconnects.
func (s *WebSocketSink) Send(ctx context.Context, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLocked(ctx); err != nil {
		return err
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		s.dropLocked()
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	if err := s.conn.WriteJSON(v); err != nil {
		s.logger.WithError(err).Error("couldn't send JSON to collector")
		s.dropLocked()

		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	return nil
}

func (s *WebSocketSink) dropLocked() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

func (s *WebSocketSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	if s.conn == nil {
		return nil
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))

	err := s.conn.Close()
	s.conn = nil

	return err
}
