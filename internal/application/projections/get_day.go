package projections

import (
	"context"
	"errors"

	"actiontracker/internal/adapters/storage"
	"actiontracker/internal/domain/dayrecord"
)

// GetDayQuery carries input for the day projection.
type GetDayQuery struct {
	UserID string
	Date   string
}

// GetDayDeps holds dependencies for the day projection.
type GetDayDeps struct {
	DayStore DayStore
}

// DayView is a day record plus whether it exists in storage.
type DayView struct {
	Day    dayrecord.DayRecord `json:"day"`
	Stored bool                `json:"stored"`
}

// GetDay returns the stored record, or an empty one that is not persisted.
// PRE: Date is a valid date key
// INVARIANT: never writes
func GetDay(ctx context.Context, query GetDayQuery, deps GetDayDeps) (DayView, error) {
	if _, err := dayrecord.ParseDateKey(query.Date); err != nil {
		return DayView{}, err
	}
	rec, err := deps.DayStore.Get(ctx, query.UserID, query.Date)
	if errors.Is(err, storage.ErrNotFound) {
		return DayView{Day: dayrecord.NewEmpty(query.UserID, query.Date)}, nil
	}
	if err != nil {
		return DayView{}, err
	}
	rec.Normalize()
	return DayView{Day: rec, Stored: true}, nil
}
