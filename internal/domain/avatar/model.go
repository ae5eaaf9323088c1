package avatar

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 120
	MaxFieldLength = 4000
)

// Domain errors
var (
	ErrEmptyUserID  = errors.New("user ID is required")
	ErrEmptyName    = errors.New("avatar name is required")
	ErrNameTooLong  = errors.New("avatar name cannot exceed 120 characters")
	ErrFieldTooLong = errors.New("avatar fields cannot exceed 4000 characters")
)

// BuyerAvatar is the "dream client" profile that generated copy is written for.
type BuyerAvatar struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Name          string    `json:"name"`
	Demographics  string    `json:"demographics"`
	PainPoints    string    `json:"painPoints"`
	Desires       string    `json:"desires"`
	Objections    string    `json:"objections"`
	WateringHoles string    `json:"wateringHoles"` // where they hang out online
	Offer         string    `json:"offer"`         // what the rep is selling them
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Validate checks if the BuyerAvatar has valid data.
// PRE: BuyerAvatar struct is populated
// POST: Returns nil if valid, error otherwise
func (a *BuyerAvatar) Validate() error {
	if a.UserID == "" {
		return ErrEmptyUserID
	}
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	for _, f := range []string{a.Demographics, a.PainPoints, a.Desires, a.Objections, a.WateringHoles, a.Offer} {
		if len(f) > MaxFieldLength {
			return ErrFieldTooLong
		}
	}
	return nil
}
