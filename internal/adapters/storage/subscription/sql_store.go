package subscription

import (
	"context"
	"database/sql"

	"actiontracker/internal/adapters/storage"
	domain "actiontracker/internal/domain/subscription"
)

// SQLStore implements Store.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new Subscription store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Get retrieves the user's Subscription.
func (s *SQLStore) Get(ctx context.Context, userID string) (domain.Subscription, error) {
	var sub domain.Subscription
	var periodStart, updatedAt sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, plan, generations_used, period_start, updated_at FROM user_subscription WHERE user_id = ?`,
		userID).Scan(&sub.UserID, &sub.Plan, &sub.GenerationsUsed, &periodStart, &updatedAt)
	if err != nil {
		return domain.Subscription{}, storage.NotFound(err, "subscription "+userID)
	}
	sub.PeriodStart = storage.ParseTime(periodStart)
	sub.UpdatedAt = storage.ParseTime(updatedAt)
	return sub, nil
}

// Save persists a Subscription.
// PRE: sub has been validated
func (s *SQLStore) Save(ctx context.Context, sub domain.Subscription) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_subscription (user_id, plan, generations_used, period_start, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   plan=excluded.plan, generations_used=excluded.generations_used,
		   period_start=excluded.period_start, updated_at=excluded.updated_at`,
		sub.UserID, sub.Plan, sub.GenerationsUsed, storage.TimeText(sub.PeriodStart), storage.TimeText(sub.UpdatedAt))
	return err
}
