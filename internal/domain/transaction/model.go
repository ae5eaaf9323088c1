package transaction

import (
	"errors"
	"strings"
	"time"

	"actiontracker/internal/domain/dayrecord"
)

// Domain errors
var (
	ErrEmptyUserID     = errors.New("user ID is required")
	ErrEmptyClientName = errors.New("client name is required")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
)

// Transaction is a single revenue event for a client.
type Transaction struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	ClientName       string    `json:"clientName"`
	Date             string    `json:"date"`        // YYYY-MM-DD
	AmountCents      int64     `json:"amountCents"` // always positive
	Product          string    `json:"product,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	GHLOpportunityID string    `json:"ghl_opportunity_id,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Validate checks if the Transaction has valid data.
// PRE: Transaction struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Transaction) Validate() error {
	if t.UserID == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(t.ClientName) == "" {
		return ErrEmptyClientName
	}
	if _, err := dayrecord.ParseDateKey(t.Date); err != nil {
		return err
	}
	if t.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ClientKey is the case-insensitive identity used to find a client's first purchase.
func (t *Transaction) ClientKey() string {
	return strings.ToLower(strings.TrimSpace(t.ClientName))
}

// FirstPurchaseDates maps each client key to the earliest date it appears in history.
// history must be the full transaction history, not a windowed slice of it.
func FirstPurchaseDates(history []Transaction) map[string]string {
	first := make(map[string]string, len(history))
	for i := range history {
		key := history[i].ClientKey()
		if d, ok := first[key]; !ok || history[i].Date < d {
			first[key] = history[i].Date
		}
	}
	return first
}

// IsNewRevenue reports whether t is the client's first-ever purchase date.
func (t *Transaction) IsNewRevenue(firstDates map[string]string) bool {
	return firstDates[t.ClientKey()] == t.Date
}
