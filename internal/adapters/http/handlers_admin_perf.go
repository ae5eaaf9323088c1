package web

import (
	"net/http"
	"time"
)

const (
	defaultPerfWindow = time.Hour
	perfTopN          = 20
)

// handleAdminPerf handles GET /admin/perf?window=15m
func (s *Server) handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if s.svc.Collector == nil {
		writeErrorMessage(w, http.StatusServiceUnavailable, "performance collector not configured")
		return
	}
	window := defaultPerfWindow
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeErrorMessage(w, http.StatusBadRequest, "window must be a positive duration such as 15m")
			return
		}
		window = d
	}
	writeJSON(w, http.StatusOK, s.svc.Collector.Snapshot(s.now().Add(-window), perfTopN))
}
