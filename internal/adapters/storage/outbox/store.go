package outbox

import (
	"context"
	"time"

	domain "actiontracker/internal/domain/outbox"
)

// Store defines the interface for outbox entry persistence.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	// PRE: id is non-empty
	// POST: Returns the entry or storage.ErrNotFound
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Enqueue inserts a new entry. An entry whose DedupKey already exists is skipped.
	// POST: returns false when the entry was a duplicate
	Enqueue(ctx context.Context, e domain.Entry) (bool, error)

	// Save persists an outbox entry to the database.
	// PRE: entity has been validated
	// POST: Entity is persisted (insert or update)
	Save(ctx context.Context, e domain.Entry) error

	// ListDue returns pending or retrying entries whose next attempt is at or before now.
	// PRE: limit > 0
	// POST: Returns up to limit entries ordered by next_attempt_at
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error)

	// ListByStatus returns entries in status, newest first. An empty status matches all.
	ListByStatus(ctx context.Context, status string, limit int) ([]domain.Entry, error)
}
