package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"actiontracker/internal/adapters/storage"
	"actiontracker/internal/application/orchestrators"
	"actiontracker/internal/application/projections"
	"actiontracker/internal/domain/account"
	"actiontracker/internal/domain/avatar"
	"actiontracker/internal/domain/content"
	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/hotlead"
	"actiontracker/internal/domain/outbox"
	"actiontracker/internal/domain/rollover"
	"actiontracker/internal/domain/subscription"
	"actiontracker/internal/domain/transaction"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// errorStatus maps known errors to HTTP status codes.
// Anything not listed is a 500.
var errorStatus = []struct {
	err    error
	status int
}{
	{storage.ErrNotFound, http.StatusNotFound},
	{rollover.ErrItemNotFound, http.StatusNotFound},

	{orchestrators.ErrNotOwner, http.StatusForbidden},
	{projections.ErrForbidden, http.StatusForbidden},
	{orchestrators.ErrCurrentPasswordWrong, http.StatusForbidden},

	{orchestrators.ErrAlreadyRolledOver, http.StatusConflict},
	{orchestrators.ErrEmailAlreadyExists, http.StatusConflict},
	{rollover.ErrAlreadyForwarded, http.StatusConflict},
	{rollover.ErrItemCompleted, http.StatusConflict},
	{content.ErrAlreadyPosted, http.StatusConflict},
	{content.ErrNotPosted, http.StatusConflict},
	{hotlead.ErrNotActive, http.StatusConflict},
	{outbox.ErrNotRetryable, http.StatusConflict},

	{subscription.ErrLimitReached, http.StatusTooManyRequests},
	{orchestrators.ErrGenerationFailed, http.StatusBadGateway},

	{orchestrators.ErrInvalidCredentials, http.StatusUnauthorized},
	{orchestrators.ErrBadSignature, http.StatusUnauthorized},
	{orchestrators.ErrAccountLocked, http.StatusLocked},
}

// badRequest lists validation errors reported back to the caller as 400.
var badRequest = []error{
	dayrecord.ErrInvalidDate, dayrecord.ErrTooManyGoals, dayrecord.ErrSOISlotCount,
	dayrecord.ErrUnknownList, dayrecord.ErrEmptyContact, dayrecord.ErrInvalidOutcome,
	rollover.ErrBlankItem,
	transaction.ErrEmptyClientName, transaction.ErrInvalidAmount,
	hotlead.ErrEmptyName, hotlead.ErrInvalidStatus,
	avatar.ErrEmptyName, avatar.ErrNameTooLong, avatar.ErrFieldTooLong,
	content.ErrEmptyAvatarID, content.ErrInvalidKind, content.ErrNegativeMetric,
	account.ErrEmptyEmail, account.ErrInvalidEmail, account.ErrEmailTooLong, account.ErrNameTooLong,
	account.ErrInvalidRole, account.ErrEmptyPassword, account.ErrPasswordTooShort,
	orchestrators.ErrMalformedEvent, orchestrators.ErrNewPasswordSame, orchestrators.ErrResetOwnPassword,
	projections.ErrNoUsers, projections.ErrInvalidRange, projections.ErrRangeTooLarge, projections.ErrInvalidWindow,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps err to a status. Unknown errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			if e.status >= 500 {
				slog.Warn("request_failed", "path", r.URL.Path, "status", e.status, "error", err)
			}
			writeErrorMessage(w, e.status, e.err.Error())
			return
		}
	}
	for _, e := range badRequest {
		if errors.Is(err, e) {
			writeErrorMessage(w, http.StatusBadRequest, e.Error())
			return
		}
	}
	internalError(w, r, err)
}

// internalError logs the real error and returns a generic message.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "path", r.URL.Path, "error", err.Error())
	writeErrorMessage(w, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes a JSON body, rejecting unknown fields and trailing data.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if _, err := dec.Token(); err != io.EOF {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body: trailing data")
		return false
	}
	return true
}
