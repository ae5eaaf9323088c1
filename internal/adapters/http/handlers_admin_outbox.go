package web

import (
	"net/http"
	"strconv"
	"time"

	"actiontracker/internal/domain/outbox"
)

const (
	defaultOutboxLimit = 50
	maxOutboxLimit     = 200
)

// outboxEntryView is the admin view of an outbox entry. The payload is left out
// because it carries recipient addresses and message bodies.
type outboxEntryView struct {
	ID              string     `json:"id"`
	ActionType      string     `json:"actionType"`
	Status          string     `json:"status"`
	Attempts        int        `json:"attempts"`
	MaxAttempts     int        `json:"maxAttempts"`
	LastAttemptedAt *time.Time `json:"lastAttemptedAt,omitempty"`
	NextAttemptAt   *time.Time `json:"nextAttemptAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	ExternalID      string     `json:"externalId,omitempty"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
	DedupKey        string     `json:"dedupKey,omitempty"`
}

func viewOutboxEntry(e outbox.Entry) outboxEntryView {
	v := outboxEntryView{
		ID:           e.ID,
		ActionType:   e.ActionType,
		Status:       e.Status,
		Attempts:     e.Attempts,
		MaxAttempts:  e.MaxAttempts,
		CreatedAt:    e.CreatedAt,
		ExternalID:   e.ExternalID,
		ErrorMessage: e.ErrorMessage,
		DedupKey:     e.DedupKey,
	}
	if !e.LastAttemptedAt.IsZero() {
		t := e.LastAttemptedAt
		v.LastAttemptedAt = &t
	}
	if !e.NextAttemptAt.IsZero() {
		t := e.NextAttemptAt
		v.NextAttemptAt = &t
	}
	return v
}

// handleAdminOutboxList handles GET /admin/outbox?status=&limit=
// status defaults to failed; "all" lists every entry.
func (s *Server) handleAdminOutboxList(w http.ResponseWriter, r *http.Request) {
	limit := defaultOutboxLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxOutboxLimit {
			writeErrorMessage(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	status := r.URL.Query().Get("status")
	switch status {
	case "":
		status = outbox.StatusFailed
	case "all":
		status = ""
	case outbox.StatusPending, outbox.StatusRetrying, outbox.StatusDone, outbox.StatusFailed, outbox.StatusAbandoned:
	default:
		writeErrorMessage(w, http.StatusBadRequest, "unknown status")
		return
	}

	entries, err := s.stores.OutboxStore.ListByStatus(r.Context(), status, limit)
	if err != nil {
		internalError(w, r, err)
		return
	}
	views := make([]outboxEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, viewOutboxEntry(e))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleAdminOutboxRetry handles POST /admin/outbox/{id}/retry
func (s *Server) handleAdminOutboxRetry(w http.ResponseWriter, r *http.Request) {
	if s.svc.Outbox == nil {
		writeErrorMessage(w, http.StatusServiceUnavailable, "outbox processor not configured")
		return
	}
	entry, err := s.svc.Outbox.ProcessSingle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOutboxEntry(entry))
}

// handleAdminOutboxAbandon handles POST /admin/outbox/{id}/abandon
func (s *Server) handleAdminOutboxAbandon(w http.ResponseWriter, r *http.Request) {
	if s.svc.Outbox == nil {
		writeErrorMessage(w, http.StatusServiceUnavailable, "outbox processor not configured")
		return
	}
	entry, err := s.svc.Outbox.AbandonEntry(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOutboxEntry(entry))
}
