package projections

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/transaction"
)

// MaxPerformanceDays bounds one performance query.
const MaxPerformanceDays = 366

// Performance query errors
var (
	ErrNoUsers       = errors.New("at least one user is required")
	ErrInvalidRange  = errors.New("from must not be after to")
	ErrRangeTooLarge = errors.New("date range cannot exceed 366 days")
	ErrInvalidWindow = errors.New("window must be between 1 and 366 days")
)

// GetPerformanceQuery carries input for the performance projection.
// Either From/To or WindowDays is set; WindowDays ends at Today.
type GetPerformanceQuery struct {
	UserIDs    []string
	From       string
	To         string
	WindowDays int
	Today      string
}

// GetPerformanceDeps holds dependencies for the performance projection.
type GetPerformanceDeps struct {
	DayStore         DayStore
	TransactionStore TransactionStore
}

// Tally is the activity and revenue counted for a slice of days.
type Tally struct {
	Calls                 int   `json:"calls"`
	Appointments          int   `json:"appointments"`
	Leads                 int   `json:"leads"`
	NewRevenueCents       int64 `json:"newRevenue"`
	RecurringRevenueCents int64 `json:"recurringRevenue"`
	TotalRevenueCents     int64 `json:"totalRevenue"`
}

func (t *Tally) add(o Tally) {
	t.Calls += o.Calls
	t.Appointments += o.Appointments
	t.Leads += o.Leads
	t.NewRevenueCents += o.NewRevenueCents
	t.RecurringRevenueCents += o.RecurringRevenueCents
	t.TotalRevenueCents += o.TotalRevenueCents
}

// PerformanceRow is one user's tally for one date.
type PerformanceRow struct {
	Date   string `json:"date"`
	UserID string `json:"userId"`
	Tally
}

// UserTotals is one user's tally over the whole range.
type UserTotals struct {
	UserID string `json:"userId"`
	Tally
}

// PerformanceResult is the aggregated view over a date range.
type PerformanceResult struct {
	From    string           `json:"from"`
	To      string           `json:"to"`
	Rows    []PerformanceRow `json:"rows"`
	Users   []UserTotals     `json:"users"`
	Overall Tally            `json:"overall"`
}

// GetPerformance aggregates calls, appointments, leads and revenue per (date, user).
// PRE: at least one user; a valid range or window
// POST: one row per date per user, dates ascending, users in query order
// INVARIANT: new vs recurring revenue is decided against each user's full transaction history
func GetPerformance(ctx context.Context, query GetPerformanceQuery, deps GetPerformanceDeps) (PerformanceResult, error) {
	users := dedupe(query.UserIDs)
	if len(users) == 0 {
		return PerformanceResult{}, ErrNoUsers
	}
	from, to, err := resolveRange(query)
	if err != nil {
		return PerformanceResult{}, err
	}
	dates, err := dayrecord.DaysBetween(from, to)
	if err != nil {
		return PerformanceResult{}, err
	}

	var days []dayrecord.DayRecord
	var history []transaction.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		days, err = deps.DayStore.ListRange(gctx, users, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = deps.TransactionStore.ListByUsers(gctx, users, "", "")
		return err
	})
	if err := g.Wait(); err != nil {
		return PerformanceResult{}, err
	}

	type key struct{ date, user string }
	cells := make(map[key]*Tally, len(dates)*len(users))
	for _, d := range dates {
		for _, u := range users {
			cells[key{d, u}] = &Tally{}
		}
	}

	for i := range days {
		cell, ok := cells[key{days[i].Date, days[i].UserID}]
		if !ok {
			continue
		}
		for _, c := range days[i].Contacts {
			if c.IsCall() {
				cell.Calls++
			}
			if c.AppointmentSet {
				cell.Appointments++
			}
			if c.IsLead {
				cell.Leads++
			}
		}
	}

	// First purchases are per user: two reps selling to the same client name
	// each get their own first sale.
	byUser := make(map[string][]transaction.Transaction, len(users))
	for _, t := range history {
		byUser[t.UserID] = append(byUser[t.UserID], t)
	}
	for user, txns := range byUser {
		first := transaction.FirstPurchaseDates(txns)
		for i := range txns {
			cell, ok := cells[key{txns[i].Date, user}]
			if !ok {
				continue
			}
			if txns[i].IsNewRevenue(first) {
				cell.NewRevenueCents += txns[i].AmountCents
			} else {
				cell.RecurringRevenueCents += txns[i].AmountCents
			}
			cell.TotalRevenueCents += txns[i].AmountCents
		}
	}

	result := PerformanceResult{From: from, To: to, Rows: make([]PerformanceRow, 0, len(cells))}
	totals := make(map[string]*Tally, len(users))
	for _, u := range users {
		totals[u] = &Tally{}
	}
	for _, d := range dates {
		for _, u := range users {
			cell := cells[key{d, u}]
			result.Rows = append(result.Rows, PerformanceRow{Date: d, UserID: u, Tally: *cell})
			totals[u].add(*cell)
			result.Overall.add(*cell)
		}
	}
	for _, u := range users {
		result.Users = append(result.Users, UserTotals{UserID: u, Tally: *totals[u]})
	}
	return result, nil
}

func resolveRange(query GetPerformanceQuery) (string, string, error) {
	if query.WindowDays != 0 {
		if query.WindowDays < 1 || query.WindowDays > MaxPerformanceDays {
			return "", "", ErrInvalidWindow
		}
		from, err := dayrecord.AddDays(query.Today, -(query.WindowDays - 1))
		if err != nil {
			return "", "", err
		}
		return from, query.Today, nil
	}
	start, err := dayrecord.ParseDateKey(query.From)
	if err != nil {
		return "", "", err
	}
	end, err := dayrecord.ParseDateKey(query.To)
	if err != nil {
		return "", "", err
	}
	if end.Before(start) {
		return "", "", ErrInvalidRange
	}
	if int(end.Sub(start).Hours()/24)+1 > MaxPerformanceDays {
		return "", "", ErrRangeTooLarge
	}
	return query.From, query.To, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
