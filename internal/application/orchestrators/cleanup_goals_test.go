package orchestrators

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	dayStore "actiontracker/internal/adapters/storage/dayrecord"
	"actiontracker/internal/adapters/storage/storagetest"
	"actiontracker/internal/domain/dayrecord"
)

// TestCleanupGoals_DryRunThenApply repairs an oversized list once and only once.
func TestCleanupGoals_DryRunThenApply(t *testing.T) {
	messy := dayrecord.DayRecord{UserID: "u1", Date: "2024-01-02"}
	messy.MassiveGoals = []dayrecord.Goal{
		{ID: "a", Text: "Call Bob"},
		{ID: "b", Text: "call bob "},
		{ID: "c", Text: "Email list", RolledOver: true},
		{ID: "d", Text: "Post reel"},
	}
	clean := dayrecord.NewEmpty("u2", "2024-01-02")
	clean.TopTargets = goals("x", "y")
	outside := dayrecord.NewEmpty("u1", "2024-02-01")
	outside.MassiveGoals = []dayrecord.Goal{{ID: "p", Text: "dup"}, {ID: "q", Text: "DUP"}}

	store := newMemDayStore(messy, clean, outside)
	deps := CleanupGoalsDeps{DayStore: store, Now: testNow}
	in := CleanupGoalsInput{From: "2024-01-01", To: "2024-01-31", DryRun: true}

	res, err := ExecuteCleanupGoals(context.Background(), in, deps)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if res.Scanned != 2 || len(res.Changes) != 1 || store.saveCalls != 0 {
		t.Fatalf("dry run result = %+v, saves = %d", res, store.saveCalls)
	}
	want := CleanupChange{UserID: "u1", Date: "2024-01-02", GoalsBefore: 4, GoalsAfter: 3}
	if diff := cmp.Diff(want, res.Changes[0]); diff != "" {
		t.Errorf("change (-want +got):\n%s", diff)
	}

	in.DryRun = false
	if _, err := ExecuteCleanupGoals(context.Background(), in, deps); err != nil {
		t.Fatalf("apply: %v", err)
	}
	got, _ := store.Get(context.Background(), "u1", "2024-01-02")
	if diff := cmp.Diff([]string{"c", "a", "d"}, goalIDs(got.MassiveGoals)); diff != "" {
		t.Errorf("cleaned goals (-want +got):\n%s", diff)
	}
	untouched, _ := store.Get(context.Background(), "u1", "2024-02-01")
	if len(untouched.MassiveGoals) != 2 {
		t.Errorf("record outside range was modified")
	}

	again, err := ExecuteCleanupGoals(context.Background(), in, deps)
	if err != nil || len(again.Changes) != 0 {
		t.Errorf("second run = %+v, %v", again, err)
	}
}

// TestCleanupGoals_SingleUser limits the scan.
func TestCleanupGoals_SingleUser(t *testing.T) {
	a := dayrecord.NewEmpty("u1", "2024-01-02")
	b := dayrecord.NewEmpty("u2", "2024-01-02")
	store := newMemDayStore(a, b)
	res, err := ExecuteCleanupGoals(context.Background(), CleanupGoalsInput{UserID: "u2", From: "2024-01-01", To: "2024-01-03"},
		CleanupGoalsDeps{DayStore: store, Now: testNow})
	if err != nil || res.Scanned != 1 {
		t.Errorf("res = %+v, %v", res, err)
	}
	if _, err := ExecuteCleanupGoals(context.Background(), CleanupGoalsInput{From: "bad", To: "2024-01-03"},
		CleanupGoalsDeps{DayStore: store, Now: testNow}); err == nil {
		t.Errorf("bad from accepted")
	}
}

// TestCleanupGoals_OversizedStoredLists runs against the SQL store so lists
// longer than the cap reach the cleanup whole.
func TestCleanupGoals_OversizedStoredLists(t *testing.T) {
	ctx := context.Background()
	store := dayStore.NewSQLStore(storagetest.NewDB(t))

	rec := dayrecord.NewEmpty("u1", "2024-01-02")
	for i, text := range []string{"dup", "Dup", "DUP ", " dup", "dUp", "duP"} {
		rec.MassiveGoals = append(rec.MassiveGoals, dayrecord.Goal{ID: fmt.Sprintf("n%d", i+1), Text: text})
	}
	rec.MassiveGoals = append(rec.MassiveGoals,
		dayrecord.Goal{ID: "b", Text: "Bravo"},
		dayrecord.Goal{ID: "r", Text: "Rolled", RolledOver: true},
	)
	for i := 1; i <= 8; i++ {
		rec.TopTargets = append(rec.TopTargets, dayrecord.Goal{ID: fmt.Sprintf("t%d", i), Text: fmt.Sprintf("Target %d", i)})
	}
	rec.TopTargets[7].RolledOver = true
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("seed: %v", err)
	}

	deps := CleanupGoalsDeps{DayStore: store, Now: testNow}
	in := CleanupGoalsInput{From: "2024-01-01", To: "2024-01-31"}
	res, err := ExecuteCleanupGoals(ctx, in, deps)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	want := []CleanupChange{{UserID: "u1", Date: "2024-01-02", TargetsBefore: 8, TargetsAfter: 6, GoalsBefore: 8, GoalsAfter: 3}}
	if diff := cmp.Diff(want, res.Changes); diff != "" {
		t.Errorf("changes (-want +got):\n%s", diff)
	}

	got, err := store.Get(ctx, "u1", "2024-01-02")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff([]string{"r", "n1", "b"}, goalIDs(got.MassiveGoals)); diff != "" {
		t.Errorf("stored goals (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"t8", "t1", "t2", "t3", "t4", "t5"}, goalIDs(got.TopTargets)); diff != "" {
		t.Errorf("stored targets (-want +got):\n%s", diff)
	}

	again, err := ExecuteCleanupGoals(ctx, in, deps)
	if err != nil || len(again.Changes) != 0 {
		t.Errorf("second run = %+v, %v", again, err)
	}
}
