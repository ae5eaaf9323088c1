package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/rollover"
)

// ErrAlreadyRolledOver is returned when the day's rollover was already confirmed or dismissed.
var ErrAlreadyRolledOver = errors.New("rollover already handled for this day")

// RolloverInput identifies the day receiving the rollover.
type RolloverInput struct {
	UserID string
	Date   string
}

// RolloverDeps holds dependencies for the rollover orchestrators.
type RolloverDeps struct {
	DayStore DayStoreForOrchestrator
	Now      func() time.Time
}

// RolloverPreview is what the "uncompleted items from yesterday" prompt shows.
type RolloverPreview struct {
	Date       string              `json:"date"`
	From       string              `json:"from"`
	Candidates rollover.Candidates `json:"candidates"`
	Handled    bool                `json:"handled"`
}

// RolloverResult carries the updated day after confirm.
type RolloverResult struct {
	Day    dayrecord.DayRecord  `json:"day"`
	Result rollover.ApplyResult `json:"result"`
}

func loadRolloverPair(ctx context.Context, input RolloverInput, store DayStoreForOrchestrator) (*dayrecord.DayRecord, dayrecord.DayRecord, string, error) {
	yesterdayKey, err := dayrecord.AddDays(input.Date, -1)
	if err != nil {
		return nil, dayrecord.DayRecord{}, "", err
	}
	yesterday, found, err := loadDay(ctx, store, input.UserID, yesterdayKey)
	if err != nil {
		return nil, dayrecord.DayRecord{}, "", err
	}
	today, _, err := loadDay(ctx, store, input.UserID, input.Date)
	if err != nil {
		return nil, dayrecord.DayRecord{}, "", err
	}
	if !found {
		return nil, today, yesterdayKey, nil
	}
	return &yesterday, today, yesterdayKey, nil
}

// ExecuteRolloverPreview lists yesterday's items eligible to roll onto input.Date.
// INVARIANT: nothing is written; repeated calls return the same candidates
func ExecuteRolloverPreview(ctx context.Context, input RolloverInput, deps RolloverDeps) (RolloverPreview, error) {
	yesterday, today, yesterdayKey, err := loadRolloverPair(ctx, input, deps.DayStore)
	if err != nil {
		return RolloverPreview{}, err
	}
	c := rollover.Detect(yesterday, today, input.Date)
	if c.TopTargets == nil {
		c.TopTargets = []dayrecord.Goal{}
	}
	if c.MassiveGoals == nil {
		c.MassiveGoals = []dayrecord.Goal{}
	}
	return RolloverPreview{
		Date:       input.Date,
		From:       yesterdayKey,
		Candidates: c,
		Handled:    today.LastRolloverDate == input.Date,
	}, nil
}

// ExecuteRolloverConfirm applies the rollover and persists today.
// Overflow past the six-item cap drops today's trailing items; the counts are reported.
// PRE: rollover not yet handled for input.Date
// POST: today.LastRolloverDate == input.Date
func ExecuteRolloverConfirm(ctx context.Context, input RolloverInput, deps RolloverDeps) (RolloverResult, error) {
	yesterday, today, _, err := loadRolloverPair(ctx, input, deps.DayStore)
	if err != nil {
		return RolloverResult{}, err
	}
	if today.LastRolloverDate == input.Date {
		return RolloverResult{}, ErrAlreadyRolledOver
	}

	c := rollover.Detect(yesterday, today, input.Date)
	res := rollover.Apply(&today, c, input.Date)
	today.UpdatedAt = deps.Now()
	if err := deps.DayStore.Save(ctx, today); err != nil {
		return RolloverResult{}, fmt.Errorf("save rolled day: %w", err)
	}

	slog.Info("rollover_applied", "user_id", input.UserID, "date", input.Date,
		"rolled_targets", res.RolledTargets, "rolled_goals", res.RolledGoals,
		"dropped_targets", res.DroppedTargets, "dropped_goals", res.DroppedGoals)
	if res.DroppedTargets > 0 || res.DroppedGoals > 0 {
		slog.Warn("rollover_overflow", "user_id", input.UserID, "date", input.Date,
			"dropped", res.DroppedTargets+res.DroppedGoals)
	}
	return RolloverResult{Day: today, Result: res}, nil
}

// ExecuteRolloverDismiss marks the day handled without moving anything.
// POST: today.LastRolloverDate == input.Date
func ExecuteRolloverDismiss(ctx context.Context, input RolloverInput, deps RolloverDeps) (dayrecord.DayRecord, error) {
	if _, err := dayrecord.ParseDateKey(input.Date); err != nil {
		return dayrecord.DayRecord{}, err
	}
	today, _, err := loadDay(ctx, deps.DayStore, input.UserID, input.Date)
	if err != nil {
		return dayrecord.DayRecord{}, err
	}
	if today.LastRolloverDate == input.Date {
		return today, nil
	}
	rollover.Dismiss(&today, input.Date)
	today.UpdatedAt = deps.Now()
	if err := deps.DayStore.Save(ctx, today); err != nil {
		return dayrecord.DayRecord{}, fmt.Errorf("save dismissed day: %w", err)
	}
	slog.Info("rollover_dismissed", "user_id", input.UserID, "date", input.Date)
	return today, nil
}
