package hotlead

import (
	"errors"
	"strings"
	"time"
)

// Status constants
const (
	StatusActive    = "active"
	StatusWon       = "won"
	StatusLost      = "lost"
	StatusCompleted = "completed" // cadence exhausted without a decision
)

// CadenceSteps is the number of touches in the follow-up cadence.
const CadenceSteps = 9

// DefaultCadence is the day offset of each step from the day the lead was created.
var DefaultCadence = []int{0, 1, 3, 5, 7, 14, 21, 30, 45}

// Domain errors
var (
	ErrEmptyUserID    = errors.New("user ID is required")
	ErrEmptyName      = errors.New("lead name is required")
	ErrNotActive      = errors.New("lead is no longer active")
	ErrInvalidStatus  = errors.New("status must be one of: won, lost")
	ErrInvalidCadence = errors.New("cadence must list 9 non-decreasing day offsets")
)

// HotLead is a prospect in the 9-step follow-up cadence.
type HotLead struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone,omitempty"`
	Email           string     `json:"email,omitempty"`
	Source          string     `json:"source,omitempty"`
	Step            int        `json:"step"` // touches completed, 0..9
	Status          string     `json:"status"`
	NextFollowUp    string     `json:"nextFollowUp,omitempty"` // YYYY-MM-DD, empty when not active
	LastContactedAt *time.Time `json:"lastContactedAt,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	GHLContactID    string     `json:"ghl_contact_id,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Validate checks if the HotLead has valid data.
// PRE: HotLead struct is populated
// POST: Returns nil if valid, error otherwise
func (l *HotLead) Validate() error {
	if l.UserID == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// ValidateCadence checks a configured cadence.
func ValidateCadence(cadence []int) error {
	if len(cadence) != CadenceSteps {
		return ErrInvalidCadence
	}
	for i := 1; i < len(cadence); i++ {
		if cadence[i] < cadence[i-1] || cadence[i] < 0 {
			return ErrInvalidCadence
		}
	}
	return nil
}

// Start puts a new lead at step 0 with its first follow-up due per the cadence.
// PRE: cadence passed ValidateCadence
// POST: Status is active, NextFollowUp set
func (l *HotLead) Start(now time.Time, cadence []int) {
	l.Step = 0
	l.Status = StatusActive
	l.CreatedAt = now
	l.UpdatedAt = now
	l.NextFollowUp = now.AddDate(0, 0, cadence[0]).Format("2006-01-02")
}

// Advance records a completed touch and schedules the next one.
// After the ninth touch the lead is marked completed.
// PRE: lead is active
// POST: Step incremented, NextFollowUp moved or cleared
func (l *HotLead) Advance(now time.Time, cadence []int) error {
	if l.Status != StatusActive {
		return ErrNotActive
	}
	l.Step++
	at := now
	l.LastContactedAt = &at
	l.UpdatedAt = now
	if l.Step >= CadenceSteps {
		l.Status = StatusCompleted
		l.NextFollowUp = ""
		return nil
	}
	delta := cadence[l.Step] - cadence[l.Step-1]
	if delta < 1 {
		delta = 1
	}
	l.NextFollowUp = now.AddDate(0, 0, delta).Format("2006-01-02")
	return nil
}

// Close ends the cadence with a decision.
// PRE: status is won or lost
func (l *HotLead) Close(status string, now time.Time) error {
	if status != StatusWon && status != StatusLost {
		return ErrInvalidStatus
	}
	l.Status = status
	l.NextFollowUp = ""
	l.UpdatedAt = now
	return nil
}

// IsDue reports whether the lead needs a touch on or before date.
func (l *HotLead) IsDue(date string) bool {
	return l.Status == StatusActive && l.NextFollowUp != "" && l.NextFollowUp <= date
}
