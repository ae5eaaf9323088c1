package outbox_test

import (
	"errors"
	"testing"
	"time"

	"actiontracker/internal/domain/outbox"
)

// TestEntry_Backoff tests the exponential retry schedule.
func TestEntry_Backoff(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{10, time.Minute},
		{64, time.Minute},
	}
	for _, tt := range tests {
		e := outbox.Entry{Attempts: tt.attempts}
		if got := e.NextRetryDelay(time.Second, time.Minute); got != tt.want {
			t.Errorf("attempts=%d: delay = %v, want %v", tt.attempts, got, tt.want)
		}
	}
}

// TestEntry_Lifecycle walks an email entry to failure and back.
func TestEntry_Lifecycle(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	e, err := outbox.NewEmail("e1", outbox.EmailPayload{To: "rep@acme.test", Subject: "Hi"}, "", now)
	if err != nil {
		t.Fatalf("NewEmail: %v", err)
	}
	e.MaxAttempts = 2
	if !e.IsDue(now) {
		t.Fatalf("new entry should be due")
	}

	e.MarkAttempt(now)
	e.MarkFailed(errors.New("smtp down"), now, time.Second, time.Minute)
	if e.Status != outbox.StatusRetrying || e.IsDue(now) {
		t.Errorf("after first failure: status=%s due=%v", e.Status, e.IsDue(now))
	}
	if !e.IsDue(now.Add(2 * time.Second)) {
		t.Errorf("entry should be due after backoff")
	}

	e.MarkAttempt(now)
	e.MarkFailed(errors.New("smtp down"), now, time.Second, time.Minute)
	if e.Status != outbox.StatusFailed || !e.IsTerminal() {
		t.Errorf("after exhausting attempts: %+v", e)
	}

	if err := e.Requeue(now); err != nil {
		t.Fatalf("Requeue: %v", err)
	}
	if e.Attempts != 0 || !e.IsDue(now) {
		t.Errorf("requeue did not reset: %+v", e)
	}
	e.MarkSuccess("msg-1")
	if err := e.Requeue(now); err != outbox.ErrNotRetryable {
		t.Errorf("requeue done entry = %v", err)
	}

	p, err := e.DecodeEmail()
	if err != nil || p.To != "rep@acme.test" {
		t.Errorf("DecodeEmail = %+v, %v", p, err)
	}
}

// TestNewEmail_RequiresRecipient tests payload validation.
func TestNewEmail_RequiresRecipient(t *testing.T) {
	if _, err := outbox.NewEmail("e1", outbox.EmailPayload{Subject: "x"}, "", time.Now()); err != outbox.ErrEmptyRecipient {
		t.Errorf("err = %v", err)
	}
}
