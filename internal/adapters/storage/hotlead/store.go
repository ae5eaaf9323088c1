package hotlead

import (
	"context"

	domain "actiontracker/internal/domain/hotlead"
)

// Store persists HotLeads.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.HotLead, error)
	GetByExternalID(ctx context.Context, userID, contactID string) (domain.HotLead, error)
	Save(ctx context.Context, l domain.HotLead) error
	List(ctx context.Context, filter ListFilter) ([]domain.HotLead, error)
	// ListDue returns active leads whose next follow-up is on or before date.
	// An empty userID matches every user.
	ListDue(ctx context.Context, userID, date string) ([]domain.HotLead, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	UserID string
	Status string
	Limit  int
	Offset int
}
