package muxhandlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vitalvas/routedoc/mux"
)

// AccessLogConfig configures the access log middleware.
type AccessLogConfig struct {
	// Logger receives one record per request. The request scoped logger
	// from RequestIDMiddleware is preferred when present.
	Logger *slog.Logger

	// Level is the level of the records. Defaults to slog.LevelInfo.
	Level slog.Level

	// Now is used to measure durations. Defaults to time.Now.
	Now func() time.Time
}

// AccessLogMiddleware returns a middleware that logs method, path,
// matched route template, status, size and duration of every request.
func AccessLogMiddleware(cfg AccessLogConfig) mux.MiddlewareFunc {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := now()
			sw := &statusResponseWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status()),
				slog.Int64("bytes", sw.written),
				slog.Duration("duration", now().Sub(start)),
			}
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					attrs = append(attrs, slog.String("route", tpl))
				}
			}

			LoggerFromContext(r.Context(), cfg.Logger).LogAttrs(r.Context(), cfg.Level, "request", attrs...)
		})
	}
}

// statusResponseWriter records the status code and body size.
type statusResponseWriter struct {
	http.ResponseWriter
	code    int
	written int64
}

func (sw *statusResponseWriter) WriteHeader(statusCode int) {
	if sw.code == 0 {
		sw.code = statusCode
	}

	sw.ResponseWriter.WriteHeader(statusCode)
}

func (sw *statusResponseWriter) Write(b []byte) (int, error) {
	if sw.code == 0 {
		sw.code = http.StatusOK
	}

	n, err := sw.ResponseWriter.Write(b)
	sw.written += int64(n)
	return n, err
}

func (sw *statusResponseWriter) status() int {
	if sw.code == 0 {
		return http.StatusOK
	}
	return sw.code
}

// Unwrap returns the underlying ResponseWriter for middleware compatibility.
func (sw *statusResponseWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}
