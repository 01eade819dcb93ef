// Package metrics pkg/metrics/interfaces.go
package metrics

import "time"

//go:generate mockgen -destination=mock_buffer.go -package=metrics github.com/domhub/hubmoni/pkg/metrics PowerCollector

// PowerStore holds the most recent power readings of one DOM.
type PowerStore interface {
	Add(p Point)
	GetPoints() []Point
	GetLastPoint() *Point
}

// PowerCollector keeps a PowerStore per DOM, keyed by CWD.
type PowerCollector interface {
	AddPoint(cwd string, p Point)
	GetPoints(cwd string) []Point
	CleanupStale(staleDuration time.Duration, now time.Time)
}
