package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/rollover"
)

// ForwardItemInput identifies one item to move to tomorrow.
type ForwardItemInput struct {
	UserID string
	Date   string
	List   string // topTargets, massiveGoals or speedOfImplementation
	ItemID string
}

// ForwardItemDeps holds dependencies for ForwardItem.
type ForwardItemDeps struct {
	DayStore DayStoreForOrchestrator
	Now      func() time.Time
}

// ForwardItemResult carries both touched days.
type ForwardItemResult struct {
	Today    dayrecord.DayRecord    `json:"today"`
	Tomorrow dayrecord.DayRecord    `json:"tomorrow"`
	Result   rollover.ForwardResult `json:"result"`
}

// ExecuteForwardItem moves one uncompleted item onto the next day.
// Both days are written in one transaction, so the source is never marked
// forwarded without the clone landing on tomorrow.
// PRE: item exists on input.Date, is not blank, completed or already forwarded
// POST: source Forwarded == true; clone on tomorrow has ForwardCount+1
func ExecuteForwardItem(ctx context.Context, input ForwardItemInput, deps ForwardItemDeps) (ForwardItemResult, error) {
	tomorrowKey, err := dayrecord.AddDays(input.Date, 1)
	if err != nil {
		return ForwardItemResult{}, err
	}
	today, _, err := loadDay(ctx, deps.DayStore, input.UserID, input.Date)
	if err != nil {
		return ForwardItemResult{}, err
	}
	tomorrow, _, err := loadDay(ctx, deps.DayStore, input.UserID, tomorrowKey)
	if err != nil {
		return ForwardItemResult{}, err
	}

	now := deps.Now()
	res, err := rollover.Forward(&today, &tomorrow, input.List, input.ItemID, now)
	if err != nil {
		return ForwardItemResult{}, err
	}
	today.Normalize()
	tomorrow.Normalize()
	today.UpdatedAt = now
	tomorrow.UpdatedAt = now

	if err := deps.DayStore.SaveAll(ctx, today, tomorrow); err != nil {
		return ForwardItemResult{}, fmt.Errorf("save forwarded days: %w", err)
	}

	if res.Placed {
		slog.Info("item_forwarded", "user_id", input.UserID, "list", input.List,
			"source_id", res.SourceID, "clone_id", res.CloneID, "to", tomorrowKey, "slot", res.Slot)
	} else {
		slog.Warn("item_forward_unplaced", "user_id", input.UserID, "list", input.List,
			"source_id", res.SourceID, "to", tomorrowKey, "reason", "no_blank_slot")
	}
	return ForwardItemResult{Today: today, Tomorrow: tomorrow, Result: res}, nil
}
