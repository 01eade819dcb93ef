package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommonMiddleware(t *testing.T) {
	var called bool

	h := CommonMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true

		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		name       string
		method     string
		wantStatus int
		wantCalled bool
	}{
		{name: "get", method: http.MethodGet, wantStatus: http.StatusTeapot, wantCalled: true},
		{name: "preflight", method: http.MethodOptions, wantStatus: http.StatusOK, wantCalled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/api/doms", http.NoBody))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}
