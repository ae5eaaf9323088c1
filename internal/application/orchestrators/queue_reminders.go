package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"actiontracker/internal/domain/account"
	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/hotlead"
	"actiontracker/internal/domain/outbox"
	"actiontracker/internal/domain/transaction"
)

// ReminderHotLeadStore lists leads due for a touch.
type ReminderHotLeadStore interface {
	ListDue(ctx context.Context, userID, date string) ([]hotlead.HotLead, error)
}

// ReminderAccountStore resolves the recipient of a digest.
type ReminderAccountStore interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// ReminderTransactionStore supplies month-to-date revenue for the digest.
type ReminderTransactionStore interface {
	ListByUsers(ctx context.Context, userIDs []string, from, to string) ([]transaction.Transaction, error)
}

// ReminderOutbox enqueues the digest emails.
type ReminderOutbox interface {
	Enqueue(ctx context.Context, e outbox.Entry) (bool, error)
}

// QueueRemindersInput selects the day the digest is for.
type QueueRemindersInput struct {
	Date string // defaults to today in deps.Location
}

// QueueRemindersDeps holds dependencies for QueueFollowUpReminders.
type QueueRemindersDeps struct {
	HotLeadStore     ReminderHotLeadStore
	AccountStore     ReminderAccountStore
	TransactionStore ReminderTransactionStore
	Outbox           ReminderOutbox
	Location         *time.Location
	GenerateID       func() string
	Now              func() time.Time
}

// QueueRemindersResult summarises one run.
type QueueRemindersResult struct {
	Date      string `json:"date"`
	Users     int    `json:"users"`
	Queued    int    `json:"queued"`
	Duplicate int    `json:"duplicate"`
	Skipped   int    `json:"skipped"`
}

// ExecuteQueueFollowUpReminders enqueues one digest email per user with leads due on Date.
// Each digest carries a dedup key of user and date, so re-running the same day queues nothing new.
// POST: at most one outbox entry per (user, date)
func ExecuteQueueFollowUpReminders(ctx context.Context, input QueueRemindersInput, deps QueueRemindersDeps) (QueueRemindersResult, error) {
	now := deps.Now()
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	date := input.Date
	if date == "" {
		date = dayrecord.DateKey(now.In(loc))
	}
	if _, err := dayrecord.ParseDateKey(date); err != nil {
		return QueueRemindersResult{}, err
	}

	due, err := deps.HotLeadStore.ListDue(ctx, "", date)
	if err != nil {
		return QueueRemindersResult{}, fmt.Errorf("list due leads: %w", err)
	}
	byUser := make(map[string][]hotlead.HotLead)
	for _, l := range due {
		byUser[l.UserID] = append(byUser[l.UserID], l)
	}
	userIDs := make([]string, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	res := QueueRemindersResult{Date: date, Users: len(userIDs)}
	for _, userID := range userIDs {
		acct, err := deps.AccountStore.GetByID(ctx, userID)
		if err != nil || acct.Email == "" {
			slog.Warn("reminder_recipient_missing", "user_id", userID, "error", err)
			res.Skipped++
			continue
		}
		revenue, err := monthToDate(ctx, deps.TransactionStore, userID, date)
		if err != nil {
			return res, err
		}

		entry, err := outbox.NewEmail(deps.GenerateID(), outbox.EmailPayload{
			To:       acct.Email,
			Subject:  fmt.Sprintf("%d follow-up%s due today", len(byUser[userID]), plural(len(byUser[userID]))),
			Markdown: reminderMarkdown(acct, byUser[userID], revenue, date, now),
			UserID:   userID,
		}, "hotlead-reminder:"+userID+":"+date, now)
		if err != nil {
			return res, err
		}
		queued, err := deps.Outbox.Enqueue(ctx, entry)
		if err != nil {
			return res, fmt.Errorf("enqueue reminder: %w", err)
		}
		if queued {
			res.Queued++
		} else {
			res.Duplicate++
		}
	}
	slog.Info("reminders_queued", "date", date, "users", res.Users, "queued", res.Queued, "duplicate", res.Duplicate, "skipped", res.Skipped)
	return res, nil
}

func monthToDate(ctx context.Context, store ReminderTransactionStore, userID, date string) (int64, error) {
	if store == nil {
		return 0, nil
	}
	txns, err := store.ListByUsers(ctx, []string{userID}, date[:8]+"01", date)
	if err != nil {
		return 0, fmt.Errorf("list month revenue: %w", err)
	}
	var total int64
	for _, t := range txns {
		total += t.AmountCents
	}
	return total, nil
}

func reminderMarkdown(acct account.Account, leads []hotlead.HotLead, revenueCents int64, date string, now time.Time) string {
	var b strings.Builder
	name := acct.Name
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\nThese hot leads are due for a touch on **%s**:\n\n", name, date)
	for _, l := range leads {
		fmt.Fprintf(&b, "- **%s** (touch %d of %d", l.Name, l.Step+1, hotlead.CadenceSteps)
		if l.NextFollowUp < date {
			b.WriteString(", overdue since " + l.NextFollowUp)
		}
		if l.LastContactedAt != nil {
			b.WriteString(", last contacted " + humanize.RelTime(*l.LastContactedAt, now, "ago", "from now"))
		}
		b.WriteString(")")
		if l.Phone != "" {
			b.WriteString(" " + l.Phone)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nMonth to date you have closed **%s**.\n", FormatDollars(revenueCents))
	return b.String()
}

// FormatDollars renders cents as a dollar amount with thousands separators.
func FormatDollars(cents int64) string {
	return "$" + humanize.FormatFloat("#,###.##", float64(cents)/100)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
