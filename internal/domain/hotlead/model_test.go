package hotlead_test

import (
	"testing"
	"time"

	"actiontracker/internal/domain/hotlead"
)

// TestHotLead_Cadence walks a lead through all nine touches.
func TestHotLead_Cadence(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	l := hotlead.HotLead{UserID: "u1", Name: "Dana"}
	l.Start(start, hotlead.DefaultCadence)

	if l.NextFollowUp != "2024-05-01" || l.Status != hotlead.StatusActive {
		t.Fatalf("after start: %+v", l)
	}

	now := start
	if err := l.Advance(now, hotlead.DefaultCadence); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if l.Step != 1 || l.NextFollowUp != "2024-05-02" {
		t.Errorf("after first touch: step=%d next=%s", l.Step, l.NextFollowUp)
	}

	for l.Status == hotlead.StatusActive {
		now = now.AddDate(0, 0, 1)
		if err := l.Advance(now, hotlead.DefaultCadence); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if l.Step != hotlead.CadenceSteps || l.Status != hotlead.StatusCompleted || l.NextFollowUp != "" {
		t.Errorf("final state: %+v", l)
	}
	if err := l.Advance(now, hotlead.DefaultCadence); err != hotlead.ErrNotActive {
		t.Errorf("advance after completion = %v, want ErrNotActive", err)
	}
}

// TestHotLead_Close tests closing decisions.
func TestHotLead_Close(t *testing.T) {
	l := hotlead.HotLead{UserID: "u1", Name: "Dana"}
	l.Start(time.Now(), hotlead.DefaultCadence)

	if err := l.Close("maybe", time.Now()); err != hotlead.ErrInvalidStatus {
		t.Errorf("Close(maybe) = %v", err)
	}
	if err := l.Close(hotlead.StatusWon, time.Now()); err != nil {
		t.Fatalf("Close(won) = %v", err)
	}
	if l.IsDue("2100-01-01") {
		t.Errorf("closed lead should never be due")
	}
}

// TestValidateCadence tests cadence validation.
func TestValidateCadence(t *testing.T) {
	if err := hotlead.ValidateCadence(hotlead.DefaultCadence); err != nil {
		t.Errorf("default cadence invalid: %v", err)
	}
	if err := hotlead.ValidateCadence([]int{0, 1, 2}); err == nil {
		t.Errorf("short cadence accepted")
	}
	if err := hotlead.ValidateCadence([]int{0, 3, 2, 4, 5, 6, 7, 8, 9}); err == nil {
		t.Errorf("decreasing cadence accepted")
	}
}
