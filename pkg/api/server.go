// Package api pkg/api/server.go serves the hub's DOR and alert state over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/domhub/hubmoni/pkg/db"
	"github.com/domhub/hubmoni/pkg/dor"
	httpx "github.com/domhub/hubmoni/pkg/http"
	"github.com/domhub/hubmoni/pkg/logger"
	"github.com/domhub/hubmoni/pkg/metrics"
	"github.com/domhub/hubmoni/pkg/moni"
)

const defaultHistoryLimit = 100

type APIServer struct {
	mu     sync.RWMutex
	hub    string
	driver DriverView
	router *mux.Router
	logger logrus.FieldLogger

	domHistoryHandler   func(cwd string, limit int) ([]db.DOMHistoryPoint, error)
	alertHistoryHandler func(limit int) ([]db.AlertRecord, error)
	activeAlertsHandler func() []*moni.Alert
	powerHandler        func(cwd string) []metrics.Point

	now func() time.Time
}

// NewAPIServer builds the router for hub over driver.
func NewAPIServer(hub string, driver DriverView, log logrus.FieldLogger) *APIServer {
	if log == nil {
		log = logger.Discard()
	}

	s := &APIServer{
		hub:    hub,
		driver: driver,
		router: mux.NewRouter(),
		logger: log,
		now:    time.Now,
	}
	s.setupRoutes()

	return s
}

func (s *APIServer) setupRoutes() {
	s.router.Use(httpx.CommonMiddleware)

	s.router.HandleFunc("/api/topology", s.getTopology).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/doms", s.getDOMs).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/doms/{cwd}", s.getDOM).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/doms/{cwd}/history", s.getDOMHistory).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/doms/{cwd}/power", s.getDOMPower).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/states", s.getStates).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/alerts", s.getAlerts).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/alerts/history", s.getAlertHistory).Methods(http.MethodGet, http.MethodOptions)
}

// Handler exposes the router for lifecycle.RunServer and tests.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

func (s *APIServer) SetDOMHistoryHandler(h func(cwd string, limit int) ([]db.DOMHistoryPoint, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.domHistoryHandler = h
}

func (s *APIServer) SetAlertHistoryHandler(h func(limit int) ([]db.AlertRecord, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alertHistoryHandler = h
}

func (s *APIServer) SetActiveAlertsHandler(h func() []*moni.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeAlertsHandler = h
}

func (s *APIServer) SetPowerHandler(h func(cwd string) []metrics.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.powerHandler = h
}

func (s *APIServer) getTopology(w http.ResponseWriter, _ *http.Request) {
	topo := s.driver.Topology()

	view := TopologyView{
		Hub:       s.hub,
		Prefix:    topo.Prefix,
		ScannedAt: topo.ScannedAt,
		Cards:     make([]CardView, 0, len(topo.Cards)),
	}

	for _, card := range topo.Cards {
		cv := CardView{
			ID:       card.ID,
			Revision: card.Revision(),
			Serial:   card.Serial(),
			Pairs:    make([]PairView, 0, len(card.Pairs)),
		}

		for _, pair := range card.Pairs {
			pv := PairView{ID: pair.ID, Current: -1, Voltage: -1, DOMs: make([]string, 0, len(pair.DOMs))}
			pv.Plugged, _ = pair.IsPlugged()
			pv.Powered, _ = pair.IsPowered()

			if pv.Plugged {
				pv.Current = pair.Current()
				pv.Voltage = pair.Voltage()
			}

			for _, dom := range pair.DOMs {
				pv.DOMs = append(pv.DOMs, dom.CWD())
			}

			cv.Pairs = append(cv.Pairs, pv)
		}

		view.Cards = append(view.Cards, cv)
	}

	s.writeJSON(w, http.StatusOK, view)
}

// getDOMs lists live DOM snapshots. ?filter=plugged or ?filter=communicating
// narrows the list.
func (s *APIServer) getDOMs(w http.ResponseWriter, r *http.Request) {
	var doms []*dor.DOM

	switch r.URL.Query().Get("filter") {
	case "":
		doms = s.driver.AllDOMs()
	case "plugged":
		doms = s.driver.PluggedDOMs()
	case "communicating":
		doms = s.driver.CommunicatingDOMs()
	default:
		s.writeError(w, http.StatusBadRequest, "unknown filter")
		return
	}

	views := make([]DOMView, 0, len(doms))
	for _, dom := range doms {
		views = append(views, s.domView(dom))
	}

	s.writeJSON(w, http.StatusOK, views)
}

func (s *APIServer) getDOM(w http.ResponseWriter, r *http.Request) {
	dom, ok := s.driver.DOM(mux.Vars(r)["cwd"])
	if !ok {
		s.writeError(w, http.StatusNotFound, "DOM not found")
		return
	}

	s.writeJSON(w, http.StatusOK, s.domView(dom))
}

func (s *APIServer) domView(dom *dor.DOM) DOMView {
	snap, err := moni.Take(dom, s.hub, s.now())
	if err != nil {
		s.logger.WithError(err).WithField("cwd", dom.CWD()).Debug("partial DOM snapshot")
	}

	return DOMView{
		Snapshot: snap,
		Name:     dom.Name(),
		ProdID:   dom.ProdID(),
		Quad:     dom.Quad(),
		Port:     dom.Port(),
		Serial:   dom.Card().Serial(),
	}
}

func (s *APIServer) getDOMHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	handler := s.domHistoryHandler
	s.mu.RUnlock()

	if handler == nil {
		s.writeError(w, http.StatusServiceUnavailable, "history storage is disabled")
		return
	}

	c, ok := dor.ParseCoordinate(mux.Vars(r)["cwd"])
	if !ok {
		s.writeError(w, http.StatusNotFound, "DOM not found")
		return
	}

	limit, err := queryLimit(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	points, err := handler(c.String(), limit)
	if err != nil {
		s.logger.WithError(err).WithField("cwd", c.String()).Error("Error fetching DOM history")
		s.writeError(w, http.StatusInternalServerError, "Internal server error")

		return
	}

	if points == nil {
		points = []db.DOMHistoryPoint{}
	}

	s.writeJSON(w, http.StatusOK, points)
}

// getDOMPower returns the in-memory power readings of a DOM, newest first.
func (s *APIServer) getDOMPower(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	handler := s.powerHandler
	s.mu.RUnlock()

	if handler == nil {
		s.writeError(w, http.StatusServiceUnavailable, "power history is disabled")
		return
	}

	c, ok := dor.ParseCoordinate(mux.Vars(r)["cwd"])
	if !ok {
		s.writeError(w, http.StatusNotFound, "DOM not found")
		return
	}

	points := handler(c.String())
	if points == nil {
		points = []metrics.Point{}
	}

	s.writeJSON(w, http.StatusOK, points)
}

// getStates polls boot states. Without ?cwd= parameters every
// communicating DOM is polled; unknown coordinates report noplug.
func (s *APIServer) getStates(w http.ResponseWriter, r *http.Request) {
	cwds := r.URL.Query()["cwd"]

	if len(cwds) == 0 {
		s.writeJSON(w, http.StatusOK, s.driver.States(r.Context(), s.driver.CommunicatingDOMs()))
		return
	}

	coords := make([]dor.Coordinate, 0, len(cwds))

	for _, cwd := range cwds {
		c, ok := dor.ParseCoordinate(cwd)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "invalid CWD "+strconv.Quote(cwd))
			return
		}

		coords = append(coords, c)
	}

	s.writeJSON(w, http.StatusOK, s.driver.StatesOf(r.Context(), coords))
}

func (s *APIServer) getAlerts(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	handler := s.activeAlertsHandler
	s.mu.RUnlock()

	alerts := []*moni.Alert{}
	if handler != nil {
		if active := handler(); active != nil {
			alerts = active
		}
	}

	s.writeJSON(w, http.StatusOK, alerts)
}

func (s *APIServer) getAlertHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	handler := s.alertHistoryHandler
	s.mu.RUnlock()

	if handler == nil {
		s.writeError(w, http.StatusServiceUnavailable, "history storage is disabled")
		return
	}

	limit, err := queryLimit(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := handler(limit)
	if err != nil {
		s.logger.WithError(err).Error("Error fetching alert history")
		s.writeError(w, http.StatusInternalServerError, "Internal server error")

		return
	}

	if records == nil {
		records = []db.AlertRecord{}
	}

	s.writeJSON(w, http.StatusOK, records)
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errInvalidLimit
	}

	return limit, nil
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Warn("Error encoding response")
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
