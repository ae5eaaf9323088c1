package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"actiontracker/internal/adapters/ai"
	"actiontracker/internal/adapters/storage"
	"actiontracker/internal/domain/avatar"
	"actiontracker/internal/domain/content"
	"actiontracker/internal/domain/subscription"
)

// ErrGenerationFailed is returned when the model call fails. Usage is not consumed.
var ErrGenerationFailed = errors.New("content generation failed, please try again")

// ContentStoreForOrchestrator defines the store interface needed by content orchestrators.
type ContentStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (content.Content, error)
	Save(ctx context.Context, c content.Content) error
}

// SubscriptionStoreForOrchestrator defines the store interface needed by the usage limiter.
type SubscriptionStoreForOrchestrator interface {
	Get(ctx context.Context, userID string) (subscription.Subscription, error)
	Save(ctx context.Context, s subscription.Subscription) error
}

// AvatarLookup loads the avatar content is written for.
type AvatarLookup interface {
	GetByID(ctx context.Context, id string) (avatar.BuyerAvatar, error)
}

// loadSubscription returns the user's subscription, defaulting to the free plan.
// The period is rolled forward when a month has elapsed.
func loadSubscription(ctx context.Context, store SubscriptionStoreForOrchestrator, userID string, now time.Time) (subscription.Subscription, error) {
	sub, err := store.Get(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return subscription.NewFree(userID, now), nil
	}
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("load subscription: %w", err)
	}
	sub.ResetIfElapsed(now)
	return sub, nil
}

// --- Generate ---

// GenerateContentInput carries a generation request.
type GenerateContentInput struct {
	UserID   string
	AvatarID string
	Kind     string
	Platform string
	Tone     string
	Extra    string
}

// GenerateContentDeps holds dependencies for GenerateContent.
type GenerateContentDeps struct {
	AvatarStore       AvatarLookup
	ContentStore      ContentStoreForOrchestrator
	SubscriptionStore SubscriptionStoreForOrchestrator
	Generator         ai.Generator
	Limits            subscription.Limits
	GenerateID        func() string
	Now               func() time.Time
}

// GenerateContentResult carries the saved piece and remaining quota.
type GenerateContentResult struct {
	Content   content.Content `json:"content"`
	Remaining int             `json:"remaining"` // -1 when unlimited
}

// ExecuteGenerateContent writes copy for an avatar and counts it against the plan.
// PRE: avatar owned by input.UserID; plan has generations left
// POST: on success content saved and one generation consumed; on model failure nothing is written
func ExecuteGenerateContent(ctx context.Context, input GenerateContentInput, deps GenerateContentDeps) (GenerateContentResult, error) {
	if !content.IsValidKind(input.Kind) {
		return GenerateContentResult{}, content.ErrInvalidKind
	}
	av, err := deps.AvatarStore.GetByID(ctx, input.AvatarID)
	if err != nil {
		return GenerateContentResult{}, err
	}
	if av.UserID != input.UserID {
		return GenerateContentResult{}, ErrNotOwner
	}

	now := deps.Now()
	sub, err := loadSubscription(ctx, deps.SubscriptionStore, input.UserID, now)
	if err != nil {
		return GenerateContentResult{}, err
	}
	if !sub.CanGenerate(deps.Limits) {
		slog.Info("generation_limited", "user_id", input.UserID, "plan", sub.Plan, "used", sub.GenerationsUsed)
		return GenerateContentResult{}, subscription.ErrLimitReached
	}

	prompt, err := content.BuildPrompt(content.PromptRequest{
		Avatar:   av,
		Kind:     input.Kind,
		Platform: input.Platform,
		Tone:     input.Tone,
		Extra:    input.Extra,
	})
	if err != nil {
		return GenerateContentResult{}, err
	}

	out, err := deps.Generator.Generate(ctx, ai.Request{Prompt: prompt, Structured: content.WantsJSON(input.Kind)})
	if err != nil {
		slog.Error("content_generation_failed", "user_id", input.UserID, "avatar_id", av.ID, "kind", input.Kind, "error", err)
		return GenerateContentResult{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	c := content.Content{
		ID:          deps.GenerateID(),
		UserID:      input.UserID,
		AvatarID:    av.ID,
		Kind:        input.Kind,
		Platform:    input.Platform,
		Headline:    out.Headline,
		Body:        out.Body,
		CTA:         out.CTA,
		ImagePrompt: out.ImagePrompt,
		Prompt:      prompt,
		CreatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		return GenerateContentResult{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if err := deps.ContentStore.Save(ctx, c); err != nil {
		return GenerateContentResult{}, fmt.Errorf("save content: %w", err)
	}

	if err := sub.Consume(deps.Limits, now); err != nil {
		return GenerateContentResult{}, err
	}
	if err := deps.SubscriptionStore.Save(ctx, sub); err != nil {
		return GenerateContentResult{}, fmt.Errorf("save subscription usage: %w", err)
	}

	slog.Info("content_generated", "content_id", c.ID, "user_id", c.UserID, "kind", c.Kind, "used", sub.GenerationsUsed)
	return GenerateContentResult{Content: c, Remaining: sub.Remaining(deps.Limits)}, nil
}

// --- Posted / Performance ---

// ContentActionDeps holds dependencies for post-generation content updates.
type ContentActionDeps struct {
	ContentStore ContentStoreForOrchestrator
	Now          func() time.Time
}

func loadOwnedContent(ctx context.Context, store ContentStoreForOrchestrator, userID, contentID string) (content.Content, error) {
	c, err := store.GetByID(ctx, contentID)
	if err != nil {
		return content.Content{}, err
	}
	if c.UserID != userID {
		return content.Content{}, ErrNotOwner
	}
	return c, nil
}

// ExecuteMarkContentPosted records that a piece went live.
// PRE: content owned by userID and not yet posted
func ExecuteMarkContentPosted(ctx context.Context, userID, contentID string, deps ContentActionDeps) (content.Content, error) {
	c, err := loadOwnedContent(ctx, deps.ContentStore, userID, contentID)
	if err != nil {
		return content.Content{}, err
	}
	if err := c.MarkPosted(deps.Now()); err != nil {
		return content.Content{}, err
	}
	if err := deps.ContentStore.Save(ctx, c); err != nil {
		return content.Content{}, fmt.Errorf("save content: %w", err)
	}
	slog.Info("content_posted", "content_id", c.ID, "user_id", userID)
	return c, nil
}

// ExecuteRecordContentPerformance replaces the metrics for a posted piece.
// PRE: content owned by userID and posted; metrics non-negative
func ExecuteRecordContentPerformance(ctx context.Context, userID, contentID string, p content.Performance, deps ContentActionDeps) (content.Content, error) {
	c, err := loadOwnedContent(ctx, deps.ContentStore, userID, contentID)
	if err != nil {
		return content.Content{}, err
	}
	if err := c.RecordPerformance(p); err != nil {
		return content.Content{}, err
	}
	if err := deps.ContentStore.Save(ctx, c); err != nil {
		return content.Content{}, fmt.Errorf("save content: %w", err)
	}
	slog.Info("content_performance_recorded", "content_id", c.ID, "impressions", p.Impressions, "clicks", p.Clicks, "leads", p.Leads, "sales", p.Sales)
	return c, nil
}
