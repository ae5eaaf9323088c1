package content

import (
	"context"

	domain "actiontracker/internal/domain/content"
)

// Store persists generated Content.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Content, error)
	Save(ctx context.Context, c domain.Content) error
	List(ctx context.Context, filter ListFilter) ([]domain.Content, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	UserID   string
	AvatarID string
	Kind     string
	Posted   *bool
	Limit    int
	Offset   int
}
