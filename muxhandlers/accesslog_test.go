package muxhandlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/routedoc/mux"
)

func TestAccessLogMiddleware(t *testing.T) {
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(5 * time.Millisecond)
		return tick
	}

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus float64
		wantBytes  float64
	}{
		{
			name:       "implicit 200",
			handler:    func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "hello") },
			wantStatus: 200,
			wantBytes:  5,
		},
		{
			name:       "explicit status",
			handler:    func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) },
			wantStatus: 418,
		},
		{
			name: "first status wins",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusCreated)
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: 201,
		},
		{
			name:       "no write",
			handler:    func(_ http.ResponseWriter, _ *http.Request) {},
			wantStatus: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			r := mux.NewRouter()
			r.PathPrefix("/items").Subrouter().HandleFunc("/{id:int}", tt.handler).Methods(http.MethodGet)
			r.Use(AccessLogMiddleware(AccessLogConfig{Logger: bufferLogger(&buf), Now: clock}))

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/7", nil))

			var rec map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
			assert.Equal(t, "request", rec["msg"])
			assert.Equal(t, "INFO", rec["level"])
			assert.Equal(t, "GET", rec["method"])
			assert.Equal(t, "/items/7", rec["path"])
			assert.Equal(t, "/items/{id:int}", rec["route"])
			assert.Equal(t, tt.wantStatus, rec["status"])
			assert.Equal(t, tt.wantBytes, rec["bytes"])
			assert.InDelta(t, float64(5*time.Millisecond), rec["duration"], 0)
		})
	}

	t.Run("custom level", func(t *testing.T) {
		var buf bytes.Buffer

		r := mux.NewRouter()
		r.HandleFunc("/", func(_ http.ResponseWriter, _ *http.Request) {}).Methods(http.MethodGet)
		r.Use(AccessLogMiddleware(AccessLogConfig{Logger: bufferLogger(&buf), Level: slog.LevelDebug}))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Contains(t, buf.String(), `"level":"DEBUG"`)
	})

	t.Run("unwrap", func(t *testing.T) {
		rec := httptest.NewRecorder()
		sw := &statusResponseWriter{ResponseWriter: rec}
		assert.Equal(t, rec, sw.Unwrap())
	})
}
