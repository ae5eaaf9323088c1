package avatar

import (
	"context"

	domain "actiontracker/internal/domain/avatar"
)

// Store persists BuyerAvatars.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.BuyerAvatar, error)
	Save(ctx context.Context, a domain.BuyerAvatar) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]domain.BuyerAvatar, error)
}
