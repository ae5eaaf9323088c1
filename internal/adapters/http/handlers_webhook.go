package web

import (
	"errors"
	"io"
	"net/http"

	"actiontracker/internal/application/orchestrators"
)

// WebhookSignatureHeader carries the hex HMAC-SHA256 of the request body.
const WebhookSignatureHeader = "X-MAT-Signature"

// handleWebhook handles POST /webhooks/ghl/{userID}
// Unknown event types are acknowledged with 202 so the CRM stops redelivering.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeErrorMessage(w, http.StatusBadRequest, "could not read request body")
		return
	}

	result, err := orchestrators.ExecuteIngestWebhook(r.Context(), orchestrators.IngestWebhookInput{
		UserID:    r.PathValue("userID"),
		Body:      body,
		Signature: r.Header.Get(WebhookSignatureHeader),
	}, orchestrators.IngestWebhookDeps{
		Secret:           s.opts.WebhookSecret,
		DayStore:         s.stores.DayStore,
		HotLeadStore:     s.stores.HotLeadStore,
		TransactionStore: s.stores.TransactionStore,
		Cadence:          s.opts.Cadence,
		Location:         s.opts.Location,
		GenerateID:       s.generateID,
		Now:              s.now,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if !result.Handled {
		status = http.StatusAccepted
	}
	writeJSON(w, status, result)
}
