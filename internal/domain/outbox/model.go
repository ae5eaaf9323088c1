package outbox

import (
	"encoding/json"
	"errors"
	"time"
)

// Status constants for outbox entry lifecycle.
const (
	StatusPending   = "pending"
	StatusRetrying  = "retrying"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// ActionTypeEmail sends an EmailPayload through the configured sender.
const ActionTypeEmail = "email"

// DefaultMaxAttempts applies when an entry is enqueued without one.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrEmptyActionType = errors.New("action type is required")
	ErrEmptyPayload    = errors.New("payload is required")
	ErrMissingCreated  = errors.New("created_at must be set")
	ErrNotRetryable    = errors.New("entry is not in a retryable state")
	ErrEmptyRecipient  = errors.New("email recipient is required")
)

// Entry is one external side effect waiting to be delivered.
type Entry struct {
	ID              string
	ActionType      string
	Payload         string // JSON, decoded by the executor for ActionType
	Status          string
	Attempts        int
	MaxAttempts     int
	LastAttemptedAt time.Time
	NextAttemptAt   time.Time
	CreatedAt       time.Time
	ExternalID      string // provider message ID once delivered
	ErrorMessage    string
	DedupKey        string // optional; a second enqueue with the same key is ignored
}

// EmailPayload is the payload of an ActionTypeEmail entry.
// Markdown is rendered to HTML at send time.
type EmailPayload struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Markdown string `json:"markdown"`
	UserID   string `json:"userId,omitempty"`
}

// NewEmail builds a pending email entry.
// PRE: p.To is set
// POST: entry passes Validate
func NewEmail(id string, p EmailPayload, dedupKey string, now time.Time) (Entry, error) {
	if p.To == "" {
		return Entry{}, ErrEmptyRecipient
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:            id,
		ActionType:    ActionTypeEmail,
		Payload:       string(raw),
		Status:        StatusPending,
		MaxAttempts:   DefaultMaxAttempts,
		NextAttemptAt: now,
		CreatedAt:     now,
		DedupKey:      dedupKey,
	}, nil
}

// DecodeEmail unmarshals the entry payload as an EmailPayload.
func (e *Entry) DecodeEmail() (EmailPayload, error) {
	var p EmailPayload
	if err := json.Unmarshal([]byte(e.Payload), &p); err != nil {
		return p, err
	}
	if p.To == "" {
		return p, ErrEmptyRecipient
	}
	return p, nil
}

// Validate checks that the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid; MaxAttempts defaulted when unset
func (e *Entry) Validate() error {
	if e.ActionType == "" {
		return ErrEmptyActionType
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return ErrMissingCreated
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// CanRetry reports whether the entry still has attempts left.
func (e *Entry) CanRetry() bool {
	return (e.Status == StatusPending || e.Status == StatusRetrying || e.Status == StatusFailed) &&
		e.Attempts < e.MaxAttempts
}

// IsDue reports whether the worker should attempt the entry at now.
func (e *Entry) IsDue(now time.Time) bool {
	return e.CanRetry() && !now.Before(e.NextAttemptAt)
}

// IsTerminal reports whether no further attempts will be made.
func (e *Entry) IsTerminal() bool {
	switch e.Status {
	case StatusDone, StatusAbandoned:
		return true
	case StatusFailed:
		return e.Attempts >= e.MaxAttempts
	}
	return false
}

// MarkAttempt records that delivery is being tried.
// POST: Attempts incremented, status retrying
func (e *Entry) MarkAttempt(now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.Status = StatusRetrying
}

// MarkSuccess marks the entry delivered.
func (e *Entry) MarkSuccess(externalID string) {
	e.Status = StatusDone
	e.ExternalID = externalID
	e.ErrorMessage = ""
}

// MarkFailed records a failed attempt and schedules the next one.
// POST: status failed once attempts are exhausted; otherwise NextAttemptAt moves out by backoff
func (e *Entry) MarkFailed(err error, now time.Time, base, max time.Duration) {
	e.ErrorMessage = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
		return
	}
	e.NextAttemptAt = now.Add(e.NextRetryDelay(base, max))
}

// MarkAbandoned marks the entry as given up on by an admin.
func (e *Entry) MarkAbandoned() {
	e.Status = StatusAbandoned
}

// Requeue gives a failed entry a fresh set of attempts.
// PRE: entry is not done or abandoned
func (e *Entry) Requeue(now time.Time) error {
	if e.Status == StatusDone || e.Status == StatusAbandoned {
		return ErrNotRetryable
	}
	e.Status = StatusPending
	e.Attempts = 0
	e.NextAttemptAt = now
	return nil
}

// NextRetryDelay is 2^attempts * base, capped at max.
func (e *Entry) NextRetryDelay(base, max time.Duration) time.Duration {
	if e.Attempts >= 30 {
		return max
	}
	delay := base * (1 << e.Attempts)
	if delay > max || delay <= 0 {
		return max
	}
	return delay
}
