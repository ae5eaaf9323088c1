package rollover

import (
	"errors"
	"time"

	"actiontracker/internal/domain/dayrecord"
)

// Forward errors
var (
	ErrItemNotFound     = errors.New("item not found on this day")
	ErrItemCompleted    = errors.New("completed items cannot be moved to tomorrow")
	ErrAlreadyForwarded = errors.New("item has already been moved to tomorrow")
	ErrBlankItem        = errors.New("blank items cannot be moved to tomorrow")
)

// ForwardResult describes where a forwarded item landed.
// Placed is false when a Speed of Implementation target found no blank slot.
type ForwardResult struct {
	List     string `json:"list"`
	SourceID string `json:"sourceId"`
	CloneID  string `json:"cloneId,omitempty"`
	Placed   bool   `json:"placed"`
	Slot     int    `json:"slot"`
}

// Forward moves one uncompleted item from today onto tomorrow.
// Goals and top targets are prepended to tomorrow's list and capped; SOI
// targets take the first blank slot of tomorrow's 12-slot array. The source
// item stays on today with Forwarded set.
// PRE: today.Date and tomorrow.Date are consecutive date keys
// POST: on success the source item has Forwarded == true and its Completed flag is unchanged
func Forward(today, tomorrow *dayrecord.DayRecord, list, itemID string, now time.Time) (ForwardResult, error) {
	if list == dayrecord.ListSOI {
		return forwardSOI(today, tomorrow, itemID, now)
	}

	src, err := today.GoalList(list)
	if err != nil {
		return ForwardResult{}, err
	}
	dst, _ := tomorrow.GoalList(list)

	idx := indexOfGoal(*src, itemID)
	if idx < 0 {
		return ForwardResult{}, ErrItemNotFound
	}
	if err := checkForwardable((*src)[idx]); err != nil {
		return ForwardResult{}, err
	}

	clone := forwardedClone((*src)[idx], today.Date, tomorrow.Date, now)
	(*src)[idx].Forwarded = true

	merged := make([]dayrecord.Goal, 0, len(*dst)+1)
	merged = append(merged, clone)
	merged = append(merged, *dst...)
	*dst = dayrecord.CapGoals(merged)

	return ForwardResult{List: list, SourceID: itemID, CloneID: clone.ID, Placed: true, Slot: 0}, nil
}

func forwardSOI(today, tomorrow *dayrecord.DayRecord, itemID string, now time.Time) (ForwardResult, error) {
	idx := -1
	for i, s := range today.SpeedOfImplementation {
		if s.ID == itemID && s.ID != "" {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ForwardResult{}, ErrItemNotFound
	}
	src := &today.SpeedOfImplementation[idx]
	if err := checkForwardable(src.Goal); err != nil {
		return ForwardResult{}, err
	}

	src.Forwarded = true
	res := ForwardResult{List: dayrecord.ListSOI, SourceID: itemID, Slot: -1}

	tomorrow.Normalize()
	slot := tomorrow.FirstBlankSlot()
	if slot < 0 {
		return res, nil
	}

	clone := *src
	clone.Goal = forwardedClone(src.Goal, today.Date, tomorrow.Date, now)
	clone.CurrentDay = src.CurrentDay + 1
	tomorrow.SpeedOfImplementation[slot] = clone

	res.CloneID = clone.ID
	res.Placed = true
	res.Slot = slot
	return res, nil
}

func checkForwardable(g dayrecord.Goal) error {
	switch {
	case g.IsBlank():
		return ErrBlankItem
	case g.Completed:
		return ErrItemCompleted
	case g.Forwarded:
		return ErrAlreadyForwarded
	}
	return nil
}

func forwardedClone(g dayrecord.Goal, fromKey, toKey string, now time.Time) dayrecord.Goal {
	at := now
	clone := g
	clone.ID = g.ID + "-fwd-" + toKey
	clone.Forwarded = false
	clone.ForwardCount = g.ForwardCount + 1
	clone.ForwardedFromDate = fromKey
	clone.LastForwardedAt = &at
	clone.Provenance = dayrecord.Provenance{
		Kind:     dayrecord.OriginForwarded,
		SourceID: g.ID,
		Date:     toKey,
	}
	return clone
}

func indexOfGoal(goals []dayrecord.Goal, id string) int {
	for i, g := range goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}
