package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"actiontracker/internal/adapters/storage"
	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/hotlead"
)

// ErrNotOwner is returned when a user acts on a record that belongs to someone else.
var ErrNotOwner = errors.New("record belongs to another user")

// DayStoreForOrchestrator defines the day store interface needed by day orchestrators.
type DayStoreForOrchestrator interface {
	Get(ctx context.Context, userID, date string) (dayrecord.DayRecord, error)
	Save(ctx context.Context, rec dayrecord.DayRecord) error
	SaveAll(ctx context.Context, recs ...dayrecord.DayRecord) error
}

// loadDay returns the stored record or a fresh empty one when none exists.
// The bool reports whether the record was found.
func loadDay(ctx context.Context, store DayStoreForOrchestrator, userID, date string) (dayrecord.DayRecord, bool, error) {
	rec, err := store.Get(ctx, userID, date)
	if errors.Is(err, storage.ErrNotFound) {
		return dayrecord.NewEmpty(userID, date), false, nil
	}
	if err != nil {
		return dayrecord.DayRecord{}, false, fmt.Errorf("load day %s: %w", date, err)
	}
	rec.Normalize()
	return rec, true, nil
}

// --- Save Day ---

// SaveDayInput carries a whole-record write from the day view.
type SaveDayInput struct {
	UserID string
	Date   string
	Record dayrecord.DayRecord
}

// SaveDayDeps holds dependencies for SaveDay.
type SaveDayDeps struct {
	DayStore DayStoreForOrchestrator
	Now      func() time.Time
}

// ExecuteSaveDay upserts the whole record keyed by (user, date).
// Concurrent writers are not reconciled; the last write wins.
// PRE: input.Date is a valid date key
// POST: stored record satisfies the list caps and 12 SOI slots
func ExecuteSaveDay(ctx context.Context, input SaveDayInput, deps SaveDayDeps) (dayrecord.DayRecord, error) {
	rec := input.Record
	rec.UserID = input.UserID
	rec.Date = input.Date
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return dayrecord.DayRecord{}, err
	}
	rec.UpdatedAt = deps.Now()

	if err := deps.DayStore.Save(ctx, rec); err != nil {
		return dayrecord.DayRecord{}, fmt.Errorf("save day: %w", err)
	}
	slog.Info("day_saved", "user_id", rec.UserID, "date", rec.Date)
	return rec, nil
}

// --- Log Contact ---

// LogContactInput carries one prospecting touch.
type LogContactInput struct {
	UserID  string
	Date    string
	Contact dayrecord.Contact
	// PromoteToHotLead also starts the contact on the follow-up cadence.
	PromoteToHotLead bool
	Email            string
}

// LogContactResult carries the updated day and the hot lead, if one was created.
type LogContactResult struct {
	Day     dayrecord.DayRecord `json:"day"`
	HotLead *hotlead.HotLead    `json:"hotLead,omitempty"`
}

// LogContactDeps holds dependencies for LogContact.
type LogContactDeps struct {
	DayStore     DayStoreForOrchestrator
	HotLeadStore HotLeadStoreForOrchestrator
	Cadence      []int
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteLogContact appends a touch to the day and optionally promotes it to a hot lead.
// The day write and the lead write are independent; a failed lead write leaves the touch logged.
// PRE: contact has a name or phone and a known outcome
// POST: contact appended with an ID and timestamp
func ExecuteLogContact(ctx context.Context, input LogContactInput, deps LogContactDeps) (LogContactResult, error) {
	if _, err := dayrecord.ParseDateKey(input.Date); err != nil {
		return LogContactResult{}, err
	}
	c := input.Contact
	if err := c.Validate(); err != nil {
		return LogContactResult{}, err
	}
	now := deps.Now()
	c.ID = deps.GenerateID()
	if c.At.IsZero() {
		c.At = now
	}
	if input.PromoteToHotLead {
		c.IsLead = true
	}

	day, _, err := loadDay(ctx, deps.DayStore, input.UserID, input.Date)
	if err != nil {
		return LogContactResult{}, err
	}
	day.Contacts = append(day.Contacts, c)
	day.UpdatedAt = now
	if err := deps.DayStore.Save(ctx, day); err != nil {
		return LogContactResult{}, fmt.Errorf("save day: %w", err)
	}
	slog.Info("contact_logged", "user_id", input.UserID, "date", input.Date, "outcome", c.Outcome, "appointment", c.AppointmentSet)

	res := LogContactResult{Day: day}
	if !input.PromoteToHotLead {
		return res, nil
	}
	lead, err := ExecuteCreateHotLead(ctx, CreateHotLeadInput{
		UserID: input.UserID,
		Name:   c.Name,
		Phone:  c.Phone,
		Email:  input.Email,
		Source: "prospecting",
		Notes:  c.Notes,
	}, CreateHotLeadDeps{
		HotLeadStore: deps.HotLeadStore,
		Cadence:      deps.Cadence,
		GenerateID:   deps.GenerateID,
		Now:          deps.Now,
	})
	if err != nil {
		return res, fmt.Errorf("promote to hot lead: %w", err)
	}
	res.HotLead = &lead
	return res, nil
}
