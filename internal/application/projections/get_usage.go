package projections

import (
	"context"
	"errors"
	"time"

	"actiontracker/internal/adapters/storage"
	"actiontracker/internal/domain/subscription"
)

// GetUsageQuery carries input for the usage projection.
type GetUsageQuery struct {
	UserID string
}

// GetUsageDeps holds dependencies for the usage projection.
type GetUsageDeps struct {
	SubscriptionStore SubscriptionStore
	Limits            subscription.Limits
	Now               func() time.Time
}

// UsageView reports generation usage for the current period.
// Limit and Remaining are -1 for unlimited plans.
type UsageView struct {
	Plan        string    `json:"plan"`
	Used        int       `json:"used"`
	Limit       int       `json:"limit"`
	Remaining   int       `json:"remaining"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
}

// GetUsage reports the user's plan and remaining generations.
// A user with no subscription row is shown as a fresh free plan.
// INVARIANT: never writes; an elapsed period is shown as reset
func GetUsage(ctx context.Context, query GetUsageQuery, deps GetUsageDeps) (UsageView, error) {
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	limits := deps.Limits
	if limits == nil {
		limits = subscription.DefaultLimits
	}

	sub, err := deps.SubscriptionStore.Get(ctx, query.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		sub = subscription.NewFree(query.UserID, now)
	} else if err != nil {
		return UsageView{}, err
	}
	sub.ResetIfElapsed(now)

	return UsageView{
		Plan:        sub.Plan,
		Used:        sub.GenerationsUsed,
		Limit:       limits.For(sub.Plan),
		Remaining:   sub.Remaining(limits),
		PeriodStart: sub.PeriodStart,
		PeriodEnd:   sub.PeriodEnd(),
	}, nil
}
