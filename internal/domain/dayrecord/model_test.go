package dayrecord_test

import (
	"testing"

	"actiontracker/internal/domain/dayrecord"
)

// TestNormalize_RestoresInvariants pads SOI and caps goal lists.
func TestNormalize_RestoresInvariants(t *testing.T) {
	d := dayrecord.DayRecord{UserID: "u1", Date: "2024-01-10"}
	for i := 0; i < 9; i++ {
		d.MassiveGoals = append(d.MassiveGoals, dayrecord.Goal{ID: string(rune('a' + i)), Text: "x"})
	}
	d.SpeedOfImplementation = make([]dayrecord.SOITarget, 3)

	d.Normalize()

	if len(d.MassiveGoals) != dayrecord.MaxGoals {
		t.Errorf("massive goals = %d, want %d", len(d.MassiveGoals), dayrecord.MaxGoals)
	}
	if d.TopTargets == nil {
		t.Errorf("TopTargets should be an empty slice, not nil")
	}
	if len(d.SpeedOfImplementation) != dayrecord.SOISlots {
		t.Errorf("SOI slots = %d, want %d", len(d.SpeedOfImplementation), dayrecord.SOISlots)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() after Normalize = %v", err)
	}
}

// TestFillSlots_KeepsOversizedGoals pads SOI without truncating goal lists.
func TestFillSlots_KeepsOversizedGoals(t *testing.T) {
	d := dayrecord.DayRecord{UserID: "u1", Date: "2024-01-10"}
	for i := 0; i < 8; i++ {
		d.TopTargets = append(d.TopTargets, dayrecord.Goal{ID: string(rune('a' + i)), Text: "x"})
	}

	d.FillSlots()

	if len(d.TopTargets) != 8 {
		t.Errorf("top targets = %d, want 8", len(d.TopTargets))
	}
	if d.MassiveGoals == nil || d.Contacts == nil || d.Events == nil {
		t.Errorf("nil slices left after FillSlots: %+v", d)
	}
	if len(d.SpeedOfImplementation) != dayrecord.SOISlots {
		t.Errorf("SOI slots = %d, want %d", len(d.SpeedOfImplementation), dayrecord.SOISlots)
	}
}

// TestDayRecord_Validate tests the record-level invariants.
func TestDayRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *dayrecord.DayRecord)
		wantErr error
	}{
		{"valid empty record", func(d *dayrecord.DayRecord) {}, nil},
		{"missing user", func(d *dayrecord.DayRecord) { d.UserID = "" }, dayrecord.ErrEmptyUserID},
		{"bad date", func(d *dayrecord.DayRecord) { d.Date = "03/05/2024" }, dayrecord.ErrInvalidDate},
		{"too many targets", func(d *dayrecord.DayRecord) { d.TopTargets = make([]dayrecord.Goal, 7) }, dayrecord.ErrTooManyGoals},
		{"short SOI", func(d *dayrecord.DayRecord) { d.SpeedOfImplementation = d.SpeedOfImplementation[:11] }, dayrecord.ErrSOISlotCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dayrecord.NewEmpty("u1", "2024-03-05")
			tt.mutate(&d)
			if err := d.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestContact_IsCall checks which outcomes count as calls.
func TestContact_IsCall(t *testing.T) {
	calls := map[string]bool{
		dayrecord.OutcomeSpokeWith:     true,
		dayrecord.OutcomeNoAnswer:      true,
		dayrecord.OutcomeLeftMessage:   true,
		dayrecord.OutcomeNotInterested: false,
		dayrecord.OutcomeBadNumber:     false,
	}
	for outcome, want := range calls {
		if got := (dayrecord.Contact{Outcome: outcome}).IsCall(); got != want {
			t.Errorf("IsCall(%s) = %v, want %v", outcome, got, want)
		}
	}
}

// TestUpsertEvent replaces by external id.
func TestUpsertEvent(t *testing.T) {
	d := dayrecord.NewEmpty("u1", "2024-03-05")
	d.UpsertEvent(dayrecord.CalendarEvent{ID: "e1", Title: "Demo", GHLEventID: "ghl-1"})
	replaced := d.UpsertEvent(dayrecord.CalendarEvent{ID: "e2", Title: "Demo (moved)", GHLEventID: "ghl-1"})

	if !replaced || len(d.Events) != 1 {
		t.Fatalf("replaced = %v, events = %d", replaced, len(d.Events))
	}
	if d.Events[0].ID != "e1" || d.Events[0].Title != "Demo (moved)" {
		t.Errorf("event = %+v", d.Events[0])
	}
	if taken, ok := d.TakeEventByExternalID("ghl-1"); !ok || taken.ID != "e1" || len(d.Events) != 0 {
		t.Errorf("take = %+v, %v; events = %d", taken, ok, len(d.Events))
	}
	if d.RemoveEventByExternalID("ghl-1") {
		t.Errorf("removed an event that was already taken")
	}
}

// TestDateKeys covers key arithmetic.
func TestDateKeys(t *testing.T) {
	next, err := dayrecord.AddDays("2024-02-28", 2)
	if err != nil || next != "2024-03-01" {
		t.Errorf("AddDays = %q, %v", next, err)
	}
	keys, err := dayrecord.DaysBetween("2024-01-30", "2024-02-02")
	if err != nil || len(keys) != 4 || keys[3] != "2024-02-02" {
		t.Errorf("DaysBetween = %v, %v", keys, err)
	}
	if _, err := dayrecord.ParseDateKey("nope"); err != dayrecord.ErrInvalidDate {
		t.Errorf("ParseDateKey error = %v", err)
	}
}
