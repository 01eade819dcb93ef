package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domhub/hubmoni/pkg/config"
	"github.com/domhub/hubmoni/pkg/db"
	"github.com/domhub/hubmoni/pkg/dor"
	"github.com/domhub/hubmoni/pkg/dor/dortest"
	"github.com/domhub/hubmoni/pkg/metrics"
	"github.com/domhub/hubmoni/pkg/moni"
)

func newTestServer(t *testing.T) *APIServer {
	t.Helper()

	tr := dortest.ICHub29(t)

	// No device nodes exist, so every state query fails to open.
	d := dor.New(tr.Root, dor.WithDevDir(t.TempDir()))

	s := NewAPIServer("ichub29", d, nil)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	return s
}

func get(t *testing.T, s *APIServer, target string, v any) int {
	t.Helper()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, http.NoBody))

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	if v != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
	}

	return rec.Code
}

func TestTopology(t *testing.T) {
	s := newTestServer(t)

	var view TopologyView
	require.Equal(t, http.StatusOK, get(t, s, "/api/topology", &view))

	assert.Equal(t, "ichub29", view.Hub)
	require.Len(t, view.Cards, 2)
	assert.Equal(t, "R1B0628D05", view.Cards[0].Serial)
	assert.Equal(t, 20, view.Cards[0].Revision)
	require.Len(t, view.Cards[0].Pairs, 4)

	p0 := view.Cards[0].Pairs[0]
	assert.True(t, p0.Plugged)
	assert.True(t, p0.Powered)
	assert.Equal(t, 101, p0.Current)
	assert.Equal(t, []string{"00A", "00B"}, p0.DOMs)

	p3 := view.Cards[1].Pairs[3]
	assert.False(t, p3.Plugged)
	assert.Equal(t, -1, p3.Current)
}

func TestDOMs(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		want   int
		status int
	}{
		{name: "all", target: "/api/doms", want: 16, status: http.StatusOK},
		{name: "plugged", target: "/api/doms?filter=plugged", want: 4, status: http.StatusOK},
		{name: "communicating", target: "/api/doms?filter=communicating", want: 4, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var views []map[string]any
			require.Equal(t, tt.status, get(t, s, tt.target, &views))
			assert.Len(t, views, tt.want)
		})
	}

	t.Run("bad filter", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/doms?filter=bogus", nil))
	})
}

func TestDOM(t *testing.T) {
	s := newTestServer(t)

	var view map[string]any
	require.Equal(t, http.StatusOK, get(t, s, "/api/doms/01b", &view))

	assert.Equal(t, "01B", view["cwd"])
	assert.Equal(t, dortest.MBID(0, 1, 'B'), view["mbid"])
	assert.Equal(t, true, view["communicating"])
	assert.Equal(t, "R1B0628D05", view["dor_serial"])
	assert.Contains(t, view, "comstat")

	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/doms/81A", nil))
	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/doms/00C", nil))
}

func TestStates(t *testing.T) {
	s := newTestServer(t)

	t.Run("communicating by default", func(t *testing.T) {
		var states map[string]dor.State
		require.Equal(t, http.StatusOK, get(t, s, "/api/states", &states))

		assert.Equal(t, map[string]dor.State{
			"00A": dor.StateError,
			"00B": dor.StateError,
			"01A": dor.StateError,
			"01B": dor.StateError,
		}, states)
	})

	t.Run("selected", func(t *testing.T) {
		var states map[string]dor.State
		require.Equal(t, http.StatusOK, get(t, s, "/api/states?cwd=13B&cwd=71A", &states))

		assert.Equal(t, dor.StateNoComm, states["13B"])
		assert.Equal(t, dor.StateNoPlug, states["71A"])
	})

	t.Run("invalid", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/states?cwd=zz", nil))
	})
}

func TestHistory(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/api/doms/00A/history", nil))
	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/api/alerts/history", nil))

	var gotCWD string

	var gotLimit int

	s.SetDOMHistoryHandler(func(cwd string, limit int) ([]db.DOMHistoryPoint, error) {
		gotCWD, gotLimit = cwd, limit

		return []db.DOMHistoryPoint{{Hub: "ichub29", Current: 101}}, nil
	})

	var points []db.DOMHistoryPoint
	require.Equal(t, http.StatusOK, get(t, s, "/api/doms/00a/history?limit=5", &points))
	assert.Equal(t, "00A", gotCWD)
	assert.Equal(t, 5, gotLimit)
	assert.Len(t, points, 1)

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/doms/00A/history?limit=-1", nil))

	s.SetAlertHistoryHandler(func(int) ([]db.AlertRecord, error) {
		return nil, errors.New("disk I/O error")
	})
	assert.Equal(t, http.StatusInternalServerError, get(t, s, "/api/alerts/history", nil))
}

func TestDOMPower(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/api/doms/00A/power", nil))

	m := metrics.NewManager(10, nil)
	m.AddPoint("00A", metrics.Point{Timestamp: s.now(), Current: 101, Voltage: 89.124})
	s.SetPowerHandler(m.GetPoints)

	var points []metrics.Point
	require.Equal(t, http.StatusOK, get(t, s, "/api/doms/00a/power", &points))
	require.Len(t, points, 1)
	assert.Equal(t, 101, points[0].Current)

	require.Equal(t, http.StatusOK, get(t, s, "/api/doms/13B/power", &points))
	assert.Empty(t, points)

	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/doms/zzz/power", nil))
}

func TestAlerts(t *testing.T) {
	s := newTestServer(t)

	var alerts []*moni.Alert
	require.Equal(t, http.StatusOK, get(t, s, "/api/alerts", &alerts))
	assert.Empty(t, alerts)

	a := moni.NewAlert(config.DefaultHubMoni(), "ichub29", "spts", moni.CondDORCount, "expected 8, found 2", s.now())
	s.SetActiveAlertsHandler(func() []*moni.Alert { return []*moni.Alert{a} })

	require.Equal(t, http.StatusOK, get(t, s, "/api/alerts", &alerts))
	require.Len(t, alerts, 1)
	assert.True(t, a.Equal(alerts[0]))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/doms", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Empty(t, rec.Body.String())
}
