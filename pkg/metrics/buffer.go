package metrics

import (
	"sync"
	"time"
)

// Point is one power reading of a DOM's wire pair.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Current   int       `json:"current"`
	Voltage   float64   `json:"voltage"`
}

// RingBuffer keeps the last size points, overwriting the oldest.
type RingBuffer struct {
	mu     sync.RWMutex
	points []Point
	pos    int
	filled bool
}

// NewBuffer creates a PowerStore holding size points.
func NewBuffer(size int) PowerStore {
	if size < 1 {
		size = 1
	}

	return &RingBuffer{points: make([]Point, size)}
}

func (b *RingBuffer) Add(p Point) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.points[b.pos] = p
	b.pos = (b.pos + 1) % len(b.points)

	if b.pos == 0 {
		b.filled = true
	}
}

// GetPoints returns the stored points, newest first.
func (b *RingBuffer) GetPoints() []Point {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := b.pos
	if b.filled {
		n = len(b.points)
	}

	out := make([]Point, 0, n)

	for i := 1; i <= n; i++ {
		idx := (b.pos - i + len(b.points)) % len(b.points)
		out = append(out, b.points[idx])
	}

	return out
}

func (b *RingBuffer) GetLastPoint() *Point {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.filled && b.pos == 0 {
		return nil
	}

	p := b.points[(b.pos-1+len(b.points))%len(b.points)]

	return &p
}
