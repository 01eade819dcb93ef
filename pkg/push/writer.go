package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// WriterSink prints messages as indented JSON, for verbose and simulation
// runs.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Send(_ context.Context, v any) error {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintln(s.w, string(b)); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	return nil
}

func (*WriterSink) Close() error {
	return nil
}

// Tee sends every message to all sinks, returning the first error.
type Tee []Sink

func (t Tee) Send(ctx context.Context, v any) error {
	var first error

	for _, s := range t {
		if err := s.Send(ctx, v); err != nil && first == nil {
			first = err
		}
	}

	return first
}

func (t Tee) Close() error {
	var first error

	for _, s := range t {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}
