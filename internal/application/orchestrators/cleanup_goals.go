package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/rollover"
)

// DayStoreForCleanup defines the store interface needed by CleanupGoals.
type DayStoreForCleanup interface {
	ListRange(ctx context.Context, userIDs []string, from, to string) ([]dayrecord.DayRecord, error)
	SaveAll(ctx context.Context, recs ...dayrecord.DayRecord) error
}

// CleanupGoalsInput selects the records to repair.
type CleanupGoalsInput struct {
	UserID string // empty repairs every user
	From   string
	To     string
	DryRun bool
}

// CleanupGoalsDeps holds dependencies for CleanupGoals.
type CleanupGoalsDeps struct {
	DayStore DayStoreForCleanup
	Now      func() time.Time
}

// CleanupChange describes one record the cleanup rewrote.
type CleanupChange struct {
	UserID        string `json:"userId"`
	Date          string `json:"date"`
	TargetsBefore int    `json:"targetsBefore"`
	TargetsAfter  int    `json:"targetsAfter"`
	GoalsBefore   int    `json:"goalsBefore"`
	GoalsAfter    int    `json:"goalsAfter"`
}

// CleanupGoalsResult summarises a cleanup run.
type CleanupGoalsResult struct {
	Scanned int             `json:"scanned"`
	Changes []CleanupChange `json:"changes"`
	DryRun  bool            `json:"dryRun"`
}

// ExecuteCleanupGoals dedups, orders and caps the goal lists of stored records.
// It is a maintenance pass run by hand, never on a request path.
// PRE: From <= To, both valid date keys
// POST: unless DryRun, every changed record is rewritten in one transaction
// INVARIANT: running it twice changes nothing the second time
func ExecuteCleanupGoals(ctx context.Context, input CleanupGoalsInput, deps CleanupGoalsDeps) (CleanupGoalsResult, error) {
	if _, err := dayrecord.ParseDateKey(input.From); err != nil {
		return CleanupGoalsResult{}, err
	}
	if _, err := dayrecord.ParseDateKey(input.To); err != nil {
		return CleanupGoalsResult{}, err
	}
	var users []string
	if input.UserID != "" {
		users = []string{input.UserID}
	}
	recs, err := deps.DayStore.ListRange(ctx, users, input.From, input.To)
	if err != nil {
		return CleanupGoalsResult{}, fmt.Errorf("list days: %w", err)
	}

	res := CleanupGoalsResult{Scanned: len(recs), Changes: []CleanupChange{}, DryRun: input.DryRun}
	var changed []dayrecord.DayRecord
	now := deps.Now()
	for _, rec := range recs {
		targets := rollover.Cleanup(rec.TopTargets)
		goals := rollover.Cleanup(rec.MassiveGoals)
		if sameGoalIDs(targets, rec.TopTargets) && sameGoalIDs(goals, rec.MassiveGoals) {
			continue
		}
		res.Changes = append(res.Changes, CleanupChange{
			UserID:        rec.UserID,
			Date:          rec.Date,
			TargetsBefore: len(rec.TopTargets),
			TargetsAfter:  len(targets),
			GoalsBefore:   len(rec.MassiveGoals),
			GoalsAfter:    len(goals),
		})
		rec.TopTargets = targets
		rec.MassiveGoals = goals
		rec.UpdatedAt = now
		changed = append(changed, rec)
	}

	if !input.DryRun && len(changed) > 0 {
		if err := deps.DayStore.SaveAll(ctx, changed...); err != nil {
			return CleanupGoalsResult{}, fmt.Errorf("save cleaned days: %w", err)
		}
	}
	slog.Info("goals_cleaned", "user_id", input.UserID, "from", input.From, "to", input.To,
		"scanned", res.Scanned, "changed", len(res.Changes), "dry_run", input.DryRun)
	return res, nil
}

func sameGoalIDs(a, b []dayrecord.Goal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
