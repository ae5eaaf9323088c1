// Package rollover moves uncompleted goals and targets between days.
//
// All functions are pure over dayrecord values; persistence is the caller's job.
package rollover

import (
	"strings"

	"actiontracker/internal/domain/dayrecord"
)

// Candidates are yesterday's items eligible for bulk rollover.
type Candidates struct {
	TopTargets   []dayrecord.Goal `json:"topTargets"`
	MassiveGoals []dayrecord.Goal `json:"massiveGoals"`
}

// Empty reports whether there is nothing to roll.
func (c Candidates) Empty() bool {
	return len(c.TopTargets) == 0 && len(c.MassiveGoals) == 0
}

// ApplyResult reports what a confirmed rollover did.
type ApplyResult struct {
	RolledTargets  int `json:"rolledTargets"`
	RolledGoals    int `json:"rolledGoals"`
	DroppedTargets int `json:"droppedTargets"`
	DroppedGoals   int `json:"droppedGoals"`
}

// Detect returns yesterday's items that should be offered for rollover onto today.
// yesterday is nil when no record exists for that date.
// PRE: todayKey is a valid date key
// POST: returns empty Candidates when yesterday is nil or today already rolled over
// INVARIANT: neither record is mutated
func Detect(yesterday *dayrecord.DayRecord, today dayrecord.DayRecord, todayKey string) Candidates {
	if yesterday == nil || today.LastRolloverDate == todayKey {
		return Candidates{}
	}
	return Candidates{
		TopTargets:   eligible(yesterday.TopTargets),
		MassiveGoals: eligible(yesterday.MassiveGoals),
	}
}

func eligible(goals []dayrecord.Goal) []dayrecord.Goal {
	var out []dayrecord.Goal
	for _, g := range goals {
		if g.Completed || g.RolledOver || g.IsBlank() {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Apply merges the candidates onto today and stamps the rollover marker.
// Rolled items are prepended in their original order; the merged list is capped
// at MaxGoals, so trailing items already on today are dropped when it overflows.
// PRE: today is non-nil
// POST: today.LastRolloverDate == todayKey; list caps hold
func Apply(today *dayrecord.DayRecord, c Candidates, todayKey string) ApplyResult {
	var res ApplyResult
	today.TopTargets, res.RolledTargets, res.DroppedTargets = merge(today.TopTargets, c.TopTargets, todayKey)
	today.MassiveGoals, res.RolledGoals, res.DroppedGoals = merge(today.MassiveGoals, c.MassiveGoals, todayKey)
	today.LastRolloverDate = todayKey
	return res
}

// Dismiss stamps the rollover marker without moving anything.
func Dismiss(today *dayrecord.DayRecord, todayKey string) {
	today.LastRolloverDate = todayKey
}

func merge(existing, incoming []dayrecord.Goal, todayKey string) ([]dayrecord.Goal, int, int) {
	merged := make([]dayrecord.Goal, 0, len(incoming)+len(existing))
	for _, g := range incoming {
		merged = append(merged, rolledClone(g, todayKey))
	}
	merged = append(merged, existing...)

	dropped := 0
	if len(merged) > dayrecord.MaxGoals {
		dropped = len(merged) - dayrecord.MaxGoals
		merged = merged[:dayrecord.MaxGoals]
	}
	rolled := len(incoming)
	if rolled > dayrecord.MaxGoals {
		rolled = dayrecord.MaxGoals
	}
	return merged, rolled, dropped
}

func rolledClone(g dayrecord.Goal, todayKey string) dayrecord.Goal {
	clone := g
	clone.ID = g.ID + "-rolled-" + todayKey
	clone.RolledOver = true
	clone.Provenance = dayrecord.Provenance{
		Kind:     dayrecord.OriginRolled,
		SourceID: g.ID,
		Date:     todayKey,
	}
	return clone
}

// Cleanup is the offline repair pass for goal lists written before the cap existed.
// It drops duplicates (case-insensitive trimmed text, or ID when the text is blank),
// moves rolled-over items ahead of the rest and truncates to MaxGoals.
// POST: Cleanup(Cleanup(x)) equals Cleanup(x)
func Cleanup(goals []dayrecord.Goal) []dayrecord.Goal {
	seen := make(map[string]bool, len(goals))
	var rolled, rest []dayrecord.Goal
	for _, g := range goals {
		key := dedupKey(g)
		if seen[key] {
			continue
		}
		seen[key] = true
		if g.RolledOver {
			rolled = append(rolled, g)
		} else {
			rest = append(rest, g)
		}
	}
	out := append(rolled, rest...)
	if out == nil {
		return []dayrecord.Goal{}
	}
	return dayrecord.CapGoals(out)
}

func dedupKey(g dayrecord.Goal) string {
	text := strings.ToLower(strings.TrimSpace(g.Text))
	if text == "" {
		return "id:" + g.ID
	}
	return "text:" + text
}
