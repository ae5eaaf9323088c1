package content

import (
	"errors"
	"time"
)

// Kind constants
const (
	KindAd     = "ad"
	KindEmail  = "email"
	KindSocial = "social"
	KindHooks  = "hooks" // free-text list of scroll-stopping opening lines
)

// ValidKinds contains all valid content kinds.
var ValidKinds = []string{KindAd, KindEmail, KindSocial, KindHooks}

// Domain errors
var (
	ErrEmptyUserID    = errors.New("user ID is required")
	ErrEmptyAvatarID  = errors.New("avatar ID is required")
	ErrInvalidKind    = errors.New("kind must be one of: ad, email, social, hooks")
	ErrEmptyBody      = errors.New("generated content has no body")
	ErrAlreadyPosted  = errors.New("content is already marked as posted")
	ErrNegativeMetric = errors.New("performance metrics cannot be negative")
	ErrNotPosted      = errors.New("performance can only be recorded for posted content")
)

// Performance is what a posted piece achieved.
type Performance struct {
	Impressions int `json:"impressions"`
	Clicks      int `json:"clicks"`
	Leads       int `json:"leads"`
	Sales       int `json:"sales"`
}

// ClickThroughRate returns clicks per impression as a percentage.
func (p Performance) ClickThroughRate() float64 {
	if p.Impressions == 0 {
		return 0
	}
	return float64(p.Clicks) * 100 / float64(p.Impressions)
}

// Content is a generated marketing piece.
type Content struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	AvatarID    string      `json:"avatarId"`
	Kind        string      `json:"kind"`
	Platform    string      `json:"platform,omitempty"`
	Headline    string      `json:"headline,omitempty"`
	Body        string      `json:"body"`
	CTA         string      `json:"cta,omitempty"`
	ImagePrompt string      `json:"imagePrompt,omitempty"`
	Prompt      string      `json:"prompt"`
	Posted      bool        `json:"posted"`
	PostedAt    *time.Time  `json:"postedAt,omitempty"`
	Performance Performance `json:"performance"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Validate checks if the Content has valid data.
// PRE: Content struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Content) Validate() error {
	if c.UserID == "" {
		return ErrEmptyUserID
	}
	if c.AvatarID == "" {
		return ErrEmptyAvatarID
	}
	if !IsValidKind(c.Kind) {
		return ErrInvalidKind
	}
	if c.Body == "" {
		return ErrEmptyBody
	}
	return nil
}

// MarkPosted records that the piece went live.
// PRE: content is not yet posted
// POST: Posted true, PostedAt set
func (c *Content) MarkPosted(at time.Time) error {
	if c.Posted {
		return ErrAlreadyPosted
	}
	c.Posted = true
	c.PostedAt = &at
	return nil
}

// RecordPerformance replaces the performance numbers for a posted piece.
func (c *Content) RecordPerformance(p Performance) error {
	if !c.Posted {
		return ErrNotPosted
	}
	if p.Impressions < 0 || p.Clicks < 0 || p.Leads < 0 || p.Sales < 0 {
		return ErrNegativeMetric
	}
	c.Performance = p
	return nil
}

// IsValidKind reports whether kind is one of ValidKinds.
func IsValidKind(kind string) bool {
	for _, k := range ValidKinds {
		if kind == k {
			return true
		}
	}
	return false
}

// WantsJSON reports whether the kind is generated against a JSON schema.
func WantsJSON(kind string) bool {
	return kind != KindHooks
}
