package orchestrators

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"actiontracker/internal/adapters/email"
	"actiontracker/internal/domain/outbox"
)

type flakySender struct {
	failures int
	calls    int
	last     email.SendRequest
}

func (s *flakySender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	s.calls++
	s.last = req
	if s.calls <= s.failures {
		return email.SendResult{}, errors.New("provider unavailable")
	}
	return email.SendResult{MessageID: "msg-1"}, nil
}

func enqueueEmail(t *testing.T, ob *memOutbox, id string, at time.Time) {
	t.Helper()
	e, err := outbox.NewEmail(id, outbox.EmailPayload{To: "rep@acme.test", Subject: "Due today", Markdown: "- **Dana**"}, "", at)
	if err != nil {
		t.Fatalf("NewEmail: %v", err)
	}
	if _, err := ob.Enqueue(context.Background(), e); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
}

// TestOutboxProcessor_RetryWithBackoff fails once, waits out the backoff, then delivers.
func TestOutboxProcessor_RetryWithBackoff(t *testing.T) {
	ob := newMemOutbox()
	enqueueEmail(t, ob, "e1", testTime)
	sender := &flakySender{failures: 1}
	now := testTime
	p := NewOutboxProcessor(ob, map[string]ActionExecutor{
		outbox.ActionTypeEmail: &EmailExecutor{Sender: sender, From: "MAT <noreply@mat.test>"},
	}, OutboxConfig{BaseDelay: time.Minute, MaxDelay: time.Hour, Now: func() time.Time { return now }})

	stats, err := p.ProcessPending(context.Background())
	if err != nil || stats.Failed != 1 {
		t.Fatalf("first pass = %+v, %v", stats, err)
	}
	e, _ := ob.GetByID(context.Background(), "e1")
	if e.Status != outbox.StatusRetrying || e.Attempts != 1 || !e.NextAttemptAt.Equal(testTime.Add(2*time.Minute)) {
		t.Fatalf("after failure = %+v", e)
	}

	now = testTime.Add(time.Minute)
	if stats, _ := p.ProcessPending(context.Background()); stats.Processed != 0 {
		t.Errorf("entry retried inside backoff window")
	}

	now = testTime.Add(2 * time.Minute)
	stats, err = p.ProcessPending(context.Background())
	if err != nil || stats.Succeeded != 1 {
		t.Fatalf("second pass = %+v, %v", stats, err)
	}
	e, _ = ob.GetByID(context.Background(), "e1")
	if e.Status != outbox.StatusDone || e.ExternalID != "msg-1" {
		t.Errorf("after success = %+v", e)
	}
	if sender.last.From != "MAT <noreply@mat.test>" || !strings.Contains(sender.last.HTML, "<strong>Dana</strong>") {
		t.Errorf("sent request = %+v", sender.last)
	}
}

// TestOutboxProcessor_ExhaustRetryAbandon walks an entry to failed, retries and abandons it.
func TestOutboxProcessor_ExhaustRetryAbandon(t *testing.T) {
	ob := newMemOutbox()
	enqueueEmail(t, ob, "e1", testTime)
	e, _ := ob.GetByID(context.Background(), "e1")
	e.MaxAttempts = 2
	_ = ob.Save(context.Background(), e)

	sender := &flakySender{failures: 2}
	now := testTime
	p := NewOutboxProcessor(ob, map[string]ActionExecutor{
		outbox.ActionTypeEmail: &EmailExecutor{Sender: sender},
	}, OutboxConfig{BaseDelay: time.Second, MaxDelay: time.Second, Now: func() time.Time { return now }})

	for i := 0; i < 3; i++ {
		if _, err := p.ProcessPending(context.Background()); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
		now = now.Add(time.Minute)
	}
	e, _ = ob.GetByID(context.Background(), "e1")
	if e.Status != outbox.StatusFailed || e.Attempts != 2 || sender.calls != 2 {
		t.Fatalf("exhausted entry = %+v, calls = %d", e, sender.calls)
	}

	e, err := p.ProcessSingle(context.Background(), "e1")
	if err != nil || e.Status != outbox.StatusDone || e.Attempts != 1 {
		t.Fatalf("manual retry = %+v, %v", e, err)
	}
	if _, err := p.AbandonEntry(context.Background(), "e1"); !errors.Is(err, outbox.ErrNotRetryable) {
		t.Errorf("abandon delivered entry err = %v", err)
	}

	enqueueEmail(t, ob, "e2", testTime)
	e, err = p.AbandonEntry(context.Background(), "e2")
	if err != nil || e.Status != outbox.StatusAbandoned {
		t.Fatalf("abandon = %+v, %v", e, err)
	}
	if _, err := p.ProcessSingle(context.Background(), "e2"); !errors.Is(err, outbox.ErrNotRetryable) {
		t.Errorf("retry abandoned err = %v", err)
	}
}

// TestOutboxProcessor_UnknownAction fails entries with no executor.
func TestOutboxProcessor_UnknownAction(t *testing.T) {
	ob := newMemOutbox()
	_, _ = ob.Enqueue(context.Background(), outbox.Entry{ID: "x", ActionType: "sms", Payload: "{}", Status: outbox.StatusPending, MaxAttempts: 1, CreatedAt: testTime, NextAttemptAt: testTime})
	p := NewOutboxProcessor(ob, nil, OutboxConfig{Now: testNow})

	if _, err := p.ProcessPending(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}
	e, _ := ob.GetByID(context.Background(), "x")
	if e.Status != outbox.StatusFailed || !strings.Contains(e.ErrorMessage, "no executor") {
		t.Errorf("entry = %+v", e)
	}
}

// TestStartBackgroundWorker_Stops runs jobs on the ticker and exits cleanly.
func TestStartBackgroundWorker_Stops(t *testing.T) {
	// the genai client dependency starts package-level goroutines at init
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var runs atomic.Int32
	stop := make(chan struct{})
	done := StartBackgroundWorker(5*time.Millisecond, stop, BackgroundJob{Name: "count", Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}, BackgroundJob{Name: "broken", Run: func(context.Context) error {
		return errors.New("boom")
	}})

	deadline := time.After(2 * time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("worker never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
	close(stop)
	<-done
}
