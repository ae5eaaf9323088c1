package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"actiontracker/internal/adapters/http/perf"
)

// DefaultSlowRequest is the threshold used when none is configured.
const DefaultSlowRequest = 500 * time.Millisecond

// RequestIDHeader carries the per-process request sequence number.
const RequestIDHeader = "X-Request-ID"

var requestSeq atomic.Uint64

type routeKey struct{}

// routeInfo is filled in by Routed once the mux has matched a pattern.
type routeInfo struct {
	pattern string
}

// Routed records the matched ServeMux pattern for Timing.
// Wrap each registered handler with it; the mux sets r.Pattern only on the
// request it passes to the handler.
func Routed(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if info, ok := r.Context().Value(routeKey{}).(*routeInfo); ok {
			info.pattern = r.Pattern
		}
		h.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// Timing logs each request's duration and records it in collector.
// Requests at or over slow log at WARN as slow_request, the rest at DEBUG.
// Handlers wrapped in Routed are recorded under their route pattern, so
// /api/days/2024-03-05 and /api/days/2024-03-06 aggregate together.
func Timing(collector *perf.Collector, slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequest
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := requestSeq.Add(1)
			w.Header().Set(RequestIDHeader, strconv.FormatUint(id, 10))
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			info := &routeInfo{}

			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), routeKey{}, info)))

			elapsed := time.Since(start)
			route := info.pattern
			if route == "" {
				route = r.Method + " " + r.URL.Path
			}
			attrs := []any{
				"request_id", id,
				"route", route,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", float64(elapsed.Microseconds()) / 1000,
			}
			if elapsed >= slow {
				slog.Warn("slow_request", attrs...)
			} else {
				slog.Debug("request", attrs...)
			}

			if collector != nil {
				collector.Record(perf.Entry{
					Kind:       perf.KindRequest,
					Path:       route,
					StatusCode: sw.status,
					DurationMs: float64(elapsed.Microseconds()) / 1000,
					Timestamp:  start,
				})
			}
		})
	}
}
