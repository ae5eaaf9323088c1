package dayrecord

import (
	"context"

	domain "actiontracker/internal/domain/dayrecord"
)

// Store persists DayRecords keyed by (user ID, date).
type Store interface {
	// Get returns the stored record, or storage.ErrNotFound.
	Get(ctx context.Context, userID, date string) (domain.DayRecord, error)

	// Save upserts one record. Last write wins.
	Save(ctx context.Context, rec domain.DayRecord) error

	// SaveAll upserts every record in one transaction.
	// POST: either all records are persisted or none are
	SaveAll(ctx context.Context, recs ...domain.DayRecord) error

	// ListRange returns records for the given users with from <= date <= to,
	// ordered by date then user. An empty userIDs slice matches every user.
	ListRange(ctx context.Context, userIDs []string, from, to string) ([]domain.DayRecord, error)

	// ListUserIDs returns every user with at least one stored record.
	ListUserIDs(ctx context.Context) ([]string, error)

	// EventDate returns the date of the record holding the CRM event with
	// the given id, or storage.ErrNotFound.
	EventDate(ctx context.Context, userID, ghlEventID string) (string, error)
}
