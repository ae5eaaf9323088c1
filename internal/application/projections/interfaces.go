package projections

import (
	"context"

	accountstore "actiontracker/internal/adapters/storage/account"
	"actiontracker/internal/domain/account"
	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/hotlead"
	"actiontracker/internal/domain/subscription"
	"actiontracker/internal/domain/transaction"
)

// DayStore interface for day record queries.
type DayStore interface {
	Get(ctx context.Context, userID, date string) (dayrecord.DayRecord, error)
	ListRange(ctx context.Context, userIDs []string, from, to string) ([]dayrecord.DayRecord, error)
}

// TransactionStore interface for transaction queries.
type TransactionStore interface {
	ListByUsers(ctx context.Context, userIDs []string, from, to string) ([]transaction.Transaction, error)
}

// HotLeadStore interface for hot lead queries.
type HotLeadStore interface {
	ListDue(ctx context.Context, userID, date string) ([]hotlead.HotLead, error)
}

// SubscriptionStore interface for usage queries.
type SubscriptionStore interface {
	Get(ctx context.Context, userID string) (subscription.Subscription, error)
}

// AccountStore interface for resolving which users a viewer may see.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	List(ctx context.Context, filter accountstore.ListFilter) ([]account.Account, error)
}
