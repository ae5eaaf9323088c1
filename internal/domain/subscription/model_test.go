package subscription_test

import (
	"testing"
	"time"

	"actiontracker/internal/domain/subscription"
)

// TestSubscription_Consume tests the per-plan limits.
func TestSubscription_Consume(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		plan    string
		used    int
		wantErr error
	}{
		{subscription.PlanFree, 0, nil},
		{subscription.PlanFree, 4, nil},
		{subscription.PlanFree, 5, subscription.ErrLimitReached},
		{subscription.PlanPro, 99, nil},
		{subscription.PlanPro, 100, subscription.ErrLimitReached},
		{subscription.PlanElite, 100000, nil},
	}
	for _, tt := range tests {
		s := subscription.Subscription{UserID: "u1", Plan: tt.plan, GenerationsUsed: tt.used, PeriodStart: now}
		err := s.Consume(subscription.DefaultLimits, now)
		if err != tt.wantErr {
			t.Errorf("%s used=%d: err = %v, want %v", tt.plan, tt.used, err, tt.wantErr)
			continue
		}
		if err == nil && s.GenerationsUsed != tt.used+1 {
			t.Errorf("%s used=%d: GenerationsUsed = %d", tt.plan, tt.used, s.GenerationsUsed)
		}
		if err != nil && s.GenerationsUsed != tt.used {
			t.Errorf("%s used=%d: usage changed on rejection", tt.plan, tt.used)
		}
	}
}

// TestSubscription_ResetIfElapsed tests the monthly period rollover.
func TestSubscription_ResetIfElapsed(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	s := subscription.Subscription{UserID: "u1", Plan: subscription.PlanFree, GenerationsUsed: 5, PeriodStart: start}

	if s.ResetIfElapsed(start.AddDate(0, 0, 30)) {
		t.Errorf("reset before a month elapsed")
	}
	if s.GenerationsUsed != 5 {
		t.Errorf("usage changed: %d", s.GenerationsUsed)
	}
	later := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	if !s.ResetIfElapsed(later) {
		t.Fatalf("no reset after a month")
	}
	if s.GenerationsUsed != 0 || !s.PeriodStart.Equal(later) {
		t.Errorf("after reset: %+v", s)
	}
}

// TestLimits_For tests configured overrides and fallbacks.
func TestLimits_For(t *testing.T) {
	l := subscription.Limits{subscription.PlanFree: 2}
	if got := l.For(subscription.PlanFree); got != 2 {
		t.Errorf("free = %d", got)
	}
	if got := l.For(subscription.PlanPro); got != 100 {
		t.Errorf("pro fallback = %d", got)
	}
	if got := l.For("platinum"); got != 5 {
		t.Errorf("unknown plan = %d", got)
	}
	s := subscription.Subscription{Plan: subscription.PlanElite}
	if s.Remaining(l) != subscription.Unlimited {
		t.Errorf("elite should be unlimited")
	}
}
