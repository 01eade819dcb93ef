// Package hubmoni runs the DOMHub monitoring loop: it snapshots the
// communicating DOMs, raises alerts against the hub's expected
// configuration and reports monitoring records to the collector.
package hubmoni

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/domhub/hubmoni/pkg/alerts"
	"github.com/domhub/hubmoni/pkg/config"
	"github.com/domhub/hubmoni/pkg/db"
	"github.com/domhub/hubmoni/pkg/logger"
	"github.com/domhub/hubmoni/pkg/metrics"
	"github.com/domhub/hubmoni/pkg/moni"
	"github.com/domhub/hubmoni/pkg/push"
)

// Service is the monitoring daemon. It implements lifecycle.Service.
type Service struct {
	cfg     *config.HubMoni
	driver  Driver
	hubCfg  config.HubConfig
	hub     string
	cluster string

	sink       push.Sink
	echo       push.Sink
	store      db.Service
	power      metrics.PowerCollector
	alerters   []alerts.AlertService
	simulate   bool
	maxReports int

	logger logrus.FieldLogger
	now    func() time.Time
	uptime func() (time.Duration, error)

	mu         sync.RWMutex
	active     []*moni.Alert
	latest     map[string]*moni.Snapshot
	baseline   map[string]*moni.Snapshot
	lastReport time.Time
	reports    int
}

type Option func(*Service)

// WithSink sets where records and alerts are sent.
func WithSink(s push.Sink) Option {
	return func(svc *Service) { svc.sink = s }
}

// WithEcho prints every record and alert, sent or not, to s.
func WithEcho(s push.Sink) Option {
	return func(svc *Service) { svc.echo = s }
}

// WithStore persists snapshots and alerts.
func WithStore(store db.Service) Option {
	return func(svc *Service) { svc.store = store }
}

// WithPowerHistory keeps each DOM's recent current and voltage readings.
func WithPowerHistory(c metrics.PowerCollector) Option {
	return func(svc *Service) { svc.power = c }
}

// WithAlerters forwards new alerts to outside notification services.
func WithAlerters(a ...alerts.AlertService) Option {
	return func(svc *Service) { svc.alerters = append(svc.alerters, a...) }
}

// WithSimulate sends nothing and stops after MAX_LOOP_CNT reports.
func WithSimulate(simulate bool) Option {
	return func(svc *Service) { svc.simulate = simulate }
}

// WithMaxReports stops the loop after n reports; zero runs forever.
func WithMaxReports(n int) Option {
	return func(svc *Service) { svc.maxReports = n }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// WithUptime replaces the host uptime source used for the alert grace
// period.
func WithUptime(uptime func() (time.Duration, error)) Option {
	return func(svc *Service) { svc.uptime = uptime }
}

// New creates the monitor for hub in cluster.
func New(cfg *config.HubMoni, driver Driver, hubCfg config.HubConfig, hub, cluster string, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		driver:   driver,
		hubCfg:   hubCfg,
		hub:      hub,
		cluster:  cluster,
		logger:   logger.Discard(),
		now:      time.Now,
		uptime:   HostUptime,
		latest:   make(map[string]*moni.Snapshot),
		baseline: make(map[string]*moni.Snapshot),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.simulate && s.maxReports == 0 {
		s.maxReports = cfg.MaxLoopCount
	}

	s.logger = s.logger.WithFields(logrus.Fields{"hub": hub, "cluster": cluster})

	return s
}

// Start runs the monitoring loop until ctx is canceled or, when limited,
// the last report is sent.
func (s *Service) Start(ctx context.Context) error {
	if len(s.driver.AllDOMs()) == 0 {
		s.logger.Error("no DOMs found at all; exiting!")

		return ErrNoDOMs
	}

	if s.simulate {
		s.logger.Info("SIMULATION MODE: no data will be sent")
	}

	s.mu.Lock()
	s.lastReport = s.now()
	s.mu.Unlock()

	ticker := time.NewTicker(s.cfg.MoniPeriod.Std())
	defer ticker.Stop()

	for {
		if s.Poll(ctx) {
			s.logger.WithField("reports", s.Reports()).Info("report limit reached, stopping")

			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Stop closes the sink and the store.
func (s *Service) Stop(context.Context) error {
	var first error

	if s.sink != nil {
		if err := s.sink.Close(); err != nil {
			first = err
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// Poll runs one monitoring pass and reports whether the report limit has
// been reached.
func (s *Service) Poll(ctx context.Context) bool {
	now := s.now()

	s.snapshot(now)
	s.checkAlerts(ctx, now)

	s.mu.Lock()
	due := now.Sub(s.lastReport) >= s.cfg.MoniReportPeriod.Std()
	s.mu.Unlock()

	if !due {
		return false
	}

	s.report(ctx, now)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.maxReports > 0 && s.reports >= s.maxReports
}

func (s *Service) snapshot(now time.Time) {
	comm := s.driver.CommunicatingDOMs()
	if len(comm) == 0 {
		s.logger.Warn("no communicating DOMs; will keep trying")
	}

	latest := make(map[string]*moni.Snapshot, len(comm))
	snaps := make([]*moni.Snapshot, 0, len(comm))

	for _, dom := range comm {
		snap, err := moni.Take(dom, s.hub, now)
		if err != nil {
			s.logger.WithError(err).WithField("cwd", dom.CWD()).Warn("incomplete DOM snapshot")
		}

		latest[snap.CWD] = snap
		snaps = append(snaps, snap)

		if s.power != nil && snap.Plugged {
			s.power.AddPoint(snap.CWD, metrics.Point{Timestamp: now, Current: snap.Current, Voltage: snap.Voltage})
		}
	}

	s.mu.Lock()
	s.latest = latest

	for cwd, snap := range latest {
		if _, ok := s.baseline[cwd]; !ok {
			s.baseline[cwd] = snap
		}
	}
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.StoreSnapshots(snaps); err != nil {
			s.logger.WithError(err).Error("couldn't store snapshots")
		}
	}
}

// alertsSuppressed reports whether alerts are held back: shortly after the
// host boots, or while the pause file has not expired.
func (s *Service) alertsSuppressed(now time.Time) bool {
	if grace := s.cfg.AlertGracePeriod.Std(); grace > 0 {
		up, err := s.uptime()
		if err != nil {
			s.logger.WithError(err).Warn("couldn't read host uptime")
		} else if up < grace {
			s.logger.WithField("uptime", up).Debug("within alert grace period")

			return true
		}
	}

	if s.cfg.PauseFile == "" {
		return false
	}

	until, err := PausedUntil(s.cfg.PauseFile)
	if err != nil {
		s.logger.WithError(err).Warn("ignoring pause file")

		return false
	}

	if until.IsZero() {
		return false
	}

	if now.Before(until) {
		s.logger.WithField("until", until).Debug("alerts paused")

		return true
	}

	if err := Resume(s.cfg.PauseFile); err != nil {
		s.logger.WithError(err).Warn("couldn't remove expired pause file")
	}

	return false
}

func (s *Service) checkAlerts(ctx context.Context, now time.Time) {
	current, err := moni.Alerts(s.cfg, s.driver, s.hubCfg, s.hub, s.cluster, now)
	if err != nil {
		s.logger.WithError(err).Warn("alert check incomplete")
	}

	s.mu.Lock()

	kept := s.active[:0:0]

	var cleared []*moni.Alert

	for _, a := range s.active {
		if moni.ContainsAlert(current, a) {
			kept = append(kept, a)
		} else {
			cleared = append(cleared, a)
		}
	}

	s.active = kept

	var fresh []*moni.Alert

	for _, a := range current {
		if !moni.ContainsAlert(s.active, a) {
			fresh = append(fresh, a)
		}
	}

	s.mu.Unlock()

	for _, a := range cleared {
		s.logger.WithField("condition", a.Value.Condition).Info("alert cleared")

		if s.store != nil {
			if err := s.store.ClearAlert(a, now); err != nil {
				s.logger.WithError(err).Error("couldn't store cleared alert")
			}
		}
	}

	if len(fresh) == 0 || s.alertsSuppressed(now) {
		return
	}

	for _, a := range fresh {
		s.sendAlert(ctx, a, now)

		s.mu.Lock()
		s.active = append(s.active, a)
		s.mu.Unlock()
	}
}

// sendAlert notifies the webhooks, then the collector.
func (s *Service) sendAlert(ctx context.Context, a *moni.Alert, now time.Time) {
	for _, alerter := range s.alerters {
		if !alerter.IsEnabled() {
			continue
		}

		if err := alerter.Alert(ctx, a); err != nil {
			s.logger.WithError(err).Warn("alert notification failed")
		}
	}

	s.send(ctx, a, "alert")

	if s.store != nil {
		if err := s.store.StoreAlert(a, now); err != nil {
			s.logger.WithError(err).Error("couldn't store alert")
		}
	}
}

func (s *Service) report(ctx context.Context, now time.Time) {
	s.mu.Lock()

	// A DOM seen only once since the last report has no counter baseline.
	previous := make(map[string]*moni.Snapshot, len(s.baseline))
	for cwd, base := range s.baseline {
		if cur, ok := s.latest[cwd]; ok && cur != base {
			previous[cwd] = base
		}
	}

	recs := moni.ValidRecords(moni.Records(s.cfg, s.hub, s.latest, previous, now))

	s.baseline = make(map[string]*moni.Snapshot, len(s.latest))
	for cwd, snap := range s.latest {
		s.baseline[cwd] = snap
	}

	s.lastReport = now
	s.reports++
	s.mu.Unlock()

	for _, rec := range recs {
		s.send(ctx, rec, "record")
	}

	if s.power != nil {
		s.power.CleanupStale(s.cfg.MoniReportPeriod.Std(), now)
	}

	if s.store != nil && s.cfg.Retention > 0 {
		if err := s.store.CleanOldData(s.cfg.Retention.Std()); err != nil {
			s.logger.WithError(err).Warn("couldn't clean old data")
		}
	}
}

func (s *Service) send(ctx context.Context, v any, kind string) {
	if s.echo != nil {
		if err := s.echo.Send(ctx, v); err != nil {
			s.logger.WithError(err).Warn("couldn't print message")
		}
	}

	if s.simulate || s.sink == nil {
		return
	}

	if err := s.sink.Send(ctx, v); err != nil {
		s.logger.WithError(err).Errorf("couldn't send moni %s", kind)

		return
	}

	s.logger.Infof("sent moni %s", kind)
}

// ActiveAlerts returns the alerts raised and not yet cleared.
func (s *Service) ActiveAlerts() []*moni.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*moni.Alert, len(s.active))
	copy(out, s.active)

	return out
}

// Reports is the number of record reports made so far.
func (s *Service) Reports() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.reports
}
