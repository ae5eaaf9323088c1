package transaction

import (
	"context"

	domain "actiontracker/internal/domain/transaction"
)

// Store persists Transactions.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Transaction, error)
	// GetByExternalID finds a transaction by its CRM opportunity ID for one user.
	GetByExternalID(ctx context.Context, userID, opportunityID string) (domain.Transaction, error)
	Save(ctx context.Context, t domain.Transaction) error
	Delete(ctx context.Context, id string) error
	// ListByUsers returns every transaction of the given users, oldest first.
	// An empty from/to leaves that side of the range open.
	ListByUsers(ctx context.Context, userIDs []string, from, to string) ([]domain.Transaction, error)
}
