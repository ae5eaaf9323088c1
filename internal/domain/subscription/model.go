package subscription

import (
	"errors"
	"time"
)

// Plan constants
const (
	PlanFree  = "free"
	PlanPro   = "pro"
	PlanElite = "elite"
)

// Unlimited is the limit value for plans without a generation cap.
const Unlimited = -1

// ValidPlans contains all valid plan values.
var ValidPlans = []string{PlanFree, PlanPro, PlanElite}

// DefaultLimits are the monthly generation limits per plan.
var DefaultLimits = Limits{
	PlanFree:  5,
	PlanPro:   100,
	PlanElite: Unlimited,
}

// Domain errors
var (
	ErrEmptyUserID   = errors.New("user ID is required")
	ErrInvalidPlan   = errors.New("plan must be one of: free, pro, elite")
	ErrLimitReached  = errors.New("monthly generation limit reached")
	ErrNegativeUsage = errors.New("usage cannot be negative")
)

// Limits maps a plan to its monthly generation allowance.
type Limits map[string]int

// For returns the limit for plan, falling back to the free allowance.
func (l Limits) For(plan string) int {
	if n, ok := l[plan]; ok {
		return n
	}
	if n, ok := DefaultLimits[plan]; ok {
		return n
	}
	return DefaultLimits[PlanFree]
}

// Subscription tracks a user's plan and generation usage for the current period.
type Subscription struct {
	UserID          string    `json:"userId"`
	Plan            string    `json:"plan"`
	GenerationsUsed int       `json:"generationsUsed"`
	PeriodStart     time.Time `json:"periodStart"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewFree returns a free-plan subscription whose period starts at now.
func NewFree(userID string, now time.Time) Subscription {
	return Subscription{UserID: userID, Plan: PlanFree, PeriodStart: now, UpdatedAt: now}
}

// Validate checks if the Subscription has valid data.
// PRE: Subscription struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Subscription) Validate() error {
	if s.UserID == "" {
		return ErrEmptyUserID
	}
	if !IsValidPlan(s.Plan) {
		return ErrInvalidPlan
	}
	if s.GenerationsUsed < 0 {
		return ErrNegativeUsage
	}
	return nil
}

// ResetIfElapsed starts a new period when a calendar month has passed since PeriodStart.
// POST: returns true if usage was reset
func (s *Subscription) ResetIfElapsed(now time.Time) bool {
	if s.PeriodStart.IsZero() {
		s.PeriodStart = now
		s.GenerationsUsed = 0
		return true
	}
	if now.Before(s.PeriodStart.AddDate(0, 1, 0)) {
		return false
	}
	s.PeriodStart = now
	s.GenerationsUsed = 0
	return true
}

// Remaining returns generations left in the period, or Unlimited.
// INVARIANT: Subscription fields are not mutated
func (s *Subscription) Remaining(limits Limits) int {
	limit := limits.For(s.Plan)
	if limit == Unlimited {
		return Unlimited
	}
	if left := limit - s.GenerationsUsed; left > 0 {
		return left
	}
	return 0
}

// CanGenerate reports whether another generation fits in the period.
// INVARIANT: Subscription fields are not mutated
func (s *Subscription) CanGenerate(limits Limits) bool {
	return limits.For(s.Plan) == Unlimited || s.Remaining(limits) > 0
}

// Consume records one generation.
// PRE: ResetIfElapsed has been applied for now
// POST: GenerationsUsed incremented, or ErrLimitReached with no change
func (s *Subscription) Consume(limits Limits, now time.Time) error {
	if !s.CanGenerate(limits) {
		return ErrLimitReached
	}
	s.GenerationsUsed++
	s.UpdatedAt = now
	return nil
}

// PeriodEnd returns when the current usage period resets.
func (s *Subscription) PeriodEnd() time.Time {
	return s.PeriodStart.AddDate(0, 1, 0)
}

// IsValidPlan reports whether plan is one of ValidPlans.
func IsValidPlan(plan string) bool {
	for _, p := range ValidPlans {
		if p == plan {
			return true
		}
	}
	return false
}
