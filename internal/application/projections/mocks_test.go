package projections

import (
	"context"
	"errors"
	"fmt"

	"actiontracker/internal/adapters/storage"
	accountstore "actiontracker/internal/adapters/storage/account"
	"actiontracker/internal/domain/account"
	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/hotlead"
	"actiontracker/internal/domain/subscription"
	"actiontracker/internal/domain/transaction"
)

type mockDayStore struct {
	days []dayrecord.DayRecord
	err  error
}

// Get returns the seeded record for (userID, date).
func (m *mockDayStore) Get(_ context.Context, userID, date string) (dayrecord.DayRecord, error) {
	for _, d := range m.days {
		if d.UserID == userID && d.Date == date {
			return d, nil
		}
	}
	return dayrecord.DayRecord{}, fmt.Errorf("day %s/%s: %w", userID, date, storage.ErrNotFound)
}

// ListRange returns seeded records for users within range.
// POST: Returns matching records
func (m *mockDayStore) ListRange(_ context.Context, userIDs []string, from, to string) ([]dayrecord.DayRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []dayrecord.DayRecord
	for _, d := range m.days {
		if contains(userIDs, d.UserID) && d.Date >= from && d.Date <= to {
			out = append(out, d)
		}
	}
	return out, nil
}

type mockTransactionStore struct {
	txns      []transaction.Transaction
	gotRanges [][2]string
}

// ListByUsers returns seeded transactions; empty bounds are open.
func (m *mockTransactionStore) ListByUsers(_ context.Context, userIDs []string, from, to string) ([]transaction.Transaction, error) {
	m.gotRanges = append(m.gotRanges, [2]string{from, to})
	var out []transaction.Transaction
	for _, t := range m.txns {
		if !contains(userIDs, t.UserID) {
			continue
		}
		if (from != "" && t.Date < from) || (to != "" && t.Date > to) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type mockHotLeadStore struct {
	leads []hotlead.HotLead
}

// ListDue returns seeded leads the store would consider due.
func (m *mockHotLeadStore) ListDue(_ context.Context, userID, date string) ([]hotlead.HotLead, error) {
	var out []hotlead.HotLead
	for _, l := range m.leads {
		if l.UserID == userID && l.Status == hotlead.StatusActive && l.NextFollowUp <= date {
			out = append(out, l)
		}
	}
	return out, nil
}

type mockSubscriptionStore struct {
	subs map[string]subscription.Subscription
}

// Get returns the seeded subscription.
func (m *mockSubscriptionStore) Get(_ context.Context, userID string) (subscription.Subscription, error) {
	s, ok := m.subs[userID]
	if !ok {
		return subscription.Subscription{}, storage.ErrNotFound
	}
	return s, nil
}

type mockAccountStore struct {
	accounts []account.Account
}

// GetByID returns the seeded account.
func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return account.Account{}, storage.ErrNotFound
}

// List returns seeded accounts, filtered by company.
func (m *mockAccountStore) List(_ context.Context, filter accountstore.ListFilter) ([]account.Account, error) {
	var out []account.Account
	for _, a := range m.accounts {
		if filter.CompanyID != "" && a.CompanyID != filter.CompanyID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

var errStoreDown = errors.New("store down")
