package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"actiontracker/internal/domain/avatar"
)

// AvatarStoreForOrchestrator defines the store interface needed by avatar orchestrators.
type AvatarStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (avatar.BuyerAvatar, error)
	Save(ctx context.Context, a avatar.BuyerAvatar) error
	Delete(ctx context.Context, id string) error
}

// SaveAvatarInput creates an avatar, or updates one when ID is set.
type SaveAvatarInput struct {
	UserID        string
	ID            string
	Name          string
	Demographics  string
	PainPoints    string
	Desires       string
	Objections    string
	WateringHoles string
	Offer         string
}

// AvatarDeps holds dependencies for avatar orchestrators.
type AvatarDeps struct {
	AvatarStore AvatarStoreForOrchestrator
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteSaveAvatar creates or updates a buyer avatar.
// PRE: when ID is set the avatar is owned by input.UserID
func ExecuteSaveAvatar(ctx context.Context, input SaveAvatarInput, deps AvatarDeps) (avatar.BuyerAvatar, error) {
	now := deps.Now()
	a := avatar.BuyerAvatar{ID: deps.GenerateID(), UserID: input.UserID, CreatedAt: now}
	if input.ID != "" {
		existing, err := deps.AvatarStore.GetByID(ctx, input.ID)
		if err != nil {
			return avatar.BuyerAvatar{}, err
		}
		if existing.UserID != input.UserID {
			return avatar.BuyerAvatar{}, ErrNotOwner
		}
		a = existing
	}
	a.Name = strings.TrimSpace(input.Name)
	a.Demographics = input.Demographics
	a.PainPoints = input.PainPoints
	a.Desires = input.Desires
	a.Objections = input.Objections
	a.WateringHoles = input.WateringHoles
	a.Offer = input.Offer
	a.UpdatedAt = now

	if err := a.Validate(); err != nil {
		return avatar.BuyerAvatar{}, err
	}
	if err := deps.AvatarStore.Save(ctx, a); err != nil {
		return avatar.BuyerAvatar{}, fmt.Errorf("save avatar: %w", err)
	}
	slog.Info("avatar_saved", "avatar_id", a.ID, "user_id", a.UserID, "updated", input.ID != "")
	return a, nil
}

// ExecuteDeleteAvatar removes one of the user's avatars. Content generated
// from it keeps its AvatarID.
func ExecuteDeleteAvatar(ctx context.Context, userID, avatarID string, deps AvatarDeps) error {
	a, err := deps.AvatarStore.GetByID(ctx, avatarID)
	if err != nil {
		return err
	}
	if a.UserID != userID {
		return ErrNotOwner
	}
	if err := deps.AvatarStore.Delete(ctx, avatarID); err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	slog.Info("avatar_deleted", "avatar_id", avatarID, "user_id", userID)
	return nil
}
