package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/domhub/hubmoni/pkg/logger"
)

var _ PowerCollector = (*Manager)(nil)

type domMetrics struct {
	buffer   PowerStore
	lastSeen atomic.Int64
}

// Manager keeps recent power readings in memory for every DOM seen.
type Manager struct {
	doms      sync.Map // CWD -> *domMetrics
	retention int
	active    atomic.Int64
	logger    logrus.FieldLogger
}

// NewManager keeps retention points per DOM.
func NewManager(retention int, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logger.Discard()
	}

	return &Manager{retention: retention, logger: log}
}

func (m *Manager) AddPoint(cwd string, p Point) {
	v, loaded := m.doms.LoadOrStore(cwd, &domMetrics{buffer: NewBuffer(m.retention)})
	if !loaded {
		m.active.Add(1)
		m.logger.WithField("cwd", cwd).Debug("tracking DOM power readings")
	}

	dm := v.(*domMetrics)
	dm.buffer.Add(p)
	dm.lastSeen.Store(p.Timestamp.UnixNano())
}

// GetPoints returns a DOM's readings, newest first, or nil if it was never
// seen.
func (m *Manager) GetPoints(cwd string) []Point {
	v, ok := m.doms.Load(cwd)
	if !ok {
		return nil
	}

	return v.(*domMetrics).buffer.GetPoints()
}

// GetActiveDOMs is the number of DOMs with readings.
func (m *Manager) GetActiveDOMs() int64 {
	return m.active.Load()
}

// CleanupStale forgets DOMs with no reading newer than staleDuration.
func (m *Manager) CleanupStale(staleDuration time.Duration, now time.Time) {
	cutoff := now.Add(-staleDuration).UnixNano()

	m.doms.Range(func(key, value any) bool {
		if value.(*domMetrics).lastSeen.Load() < cutoff {
			m.doms.Delete(key)
			m.active.Add(-1)
			m.logger.WithField("cwd", key).Debug("dropped stale DOM power readings")
		}

		return true
	})
}
