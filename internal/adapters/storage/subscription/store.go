package subscription

import (
	"context"

	domain "actiontracker/internal/domain/subscription"
)

// Store persists one Subscription per user.
type Store interface {
	// Get returns the user's subscription, or storage.ErrNotFound.
	Get(ctx context.Context, userID string) (domain.Subscription, error)
	Save(ctx context.Context, s domain.Subscription) error
}
