package dayrecord

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar-date key format used for every DayRecord.
const DateLayout = "2006-01-02"

// List caps and slot counts.
const (
	MaxGoals = 6
	SOISlots = 12
)

// List names accepted by the forward operation.
const (
	ListTopTargets   = "topTargets"
	ListMassiveGoals = "massiveGoals"
	ListSOI          = "speedOfImplementation"
)

// Provenance kinds.
const (
	OriginOriginal  = "original"
	OriginRolled    = "rolled"
	OriginForwarded = "forwarded"
)

// Contact outcomes. The first three count as calls in reporting.
const (
	OutcomeSpokeWith     = "spoke_with"
	OutcomeNoAnswer      = "no_answer"
	OutcomeLeftMessage   = "left_message"
	OutcomeNotInterested = "not_interested"
	OutcomeBadNumber     = "bad_number"
)

// Domain errors
var (
	ErrInvalidDate    = errors.New("date must be YYYY-MM-DD")
	ErrEmptyUserID    = errors.New("user ID is required")
	ErrTooManyGoals   = errors.New("goal lists hold at most 6 items")
	ErrSOISlotCount   = errors.New("speed of implementation must have exactly 12 slots")
	ErrUnknownList    = errors.New("list must be topTargets, massiveGoals or speedOfImplementation")
	ErrEmptyContact   = errors.New("contact name or phone is required")
	ErrInvalidOutcome = errors.New("unknown contact outcome")
)

// Provenance records where an item came from.
// Lineage is read from here, never parsed out of the ID.
type Provenance struct {
	Kind     string `json:"kind"`
	SourceID string `json:"sourceId,omitempty"`
	Date     string `json:"date,omitempty"`
}

// Goal is an entry in topTargets or massiveGoals.
type Goal struct {
	ID                string     `json:"id"`
	Text              string     `json:"text"`
	Completed         bool       `json:"completed"`
	RolledOver        bool       `json:"rolledOver,omitempty"`
	Forwarded         bool       `json:"forwarded,omitempty"`
	ForwardCount      int        `json:"forward_count,omitempty"`
	ForwardedFromDate string     `json:"forwarded_from_date,omitempty"`
	LastForwardedAt   *time.Time `json:"last_forwarded_at,omitempty"`
	Provenance        Provenance `json:"provenance"`
}

// IsBlank reports whether the goal has no visible text.
func (g Goal) IsBlank() bool {
	return strings.TrimSpace(g.Text) == ""
}

// SOITarget is a Speed of Implementation commitment occupying one of 12 slots.
type SOITarget struct {
	Goal
	CurrentDay int    `json:"currentDay"`
	TotalDays  int    `json:"totalDays,omitempty"`
	Source     string `json:"source,omitempty"`
}

// Contact is a single prospecting touch.
type Contact struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone,omitempty"`
	Outcome        string    `json:"outcome"`
	AppointmentSet bool      `json:"appointmentSet,omitempty"`
	IsLead         bool      `json:"isLead,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	At             time.Time `json:"at"`
}

// IsCall reports whether the touch counts toward the call tally.
func (c Contact) IsCall() bool {
	switch c.Outcome {
	case OutcomeSpokeWith, OutcomeNoAnswer, OutcomeLeftMessage:
		return true
	}
	return false
}

// ValidOutcomes lists every accepted contact outcome.
var ValidOutcomes = []string{OutcomeSpokeWith, OutcomeNoAnswer, OutcomeLeftMessage, OutcomeNotInterested, OutcomeBadNumber}

// Validate checks a contact before it is appended to a day.
// PRE: Contact struct is populated
// POST: Returns nil if valid, error otherwise
func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Phone) == "" {
		return ErrEmptyContact
	}
	for _, o := range ValidOutcomes {
		if c.Outcome == o {
			return nil
		}
	}
	return ErrInvalidOutcome
}

// CalendarEvent is an appointment shown on the day view.
type CalendarEvent struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	GHLEventID string    `json:"ghl_event_id,omitempty"`
}

// RevenueSnapshot is the end-of-day revenue the rep typed in.
type RevenueSnapshot struct {
	NewCents       int64 `json:"new"`
	RecurringCents int64 `json:"recurring"`
}

// DayRecord is everything a user logged for one calendar date.
type DayRecord struct {
	UserID                string          `json:"userId"`
	Date                  string          `json:"date"`
	TopTargets            []Goal          `json:"topTargets"`
	MassiveGoals          []Goal          `json:"massiveGoals"`
	SpeedOfImplementation []SOITarget     `json:"speedOfImplementation"`
	Contacts              []Contact       `json:"contacts"`
	Events                []CalendarEvent `json:"events"`
	Notes                 string          `json:"notes"`
	Revenue               RevenueSnapshot `json:"revenue"`
	LastRolloverDate      string          `json:"lastRolloverDate,omitempty"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// NewEmpty builds the default record shown the first time a date is viewed.
// It is not persisted until the user edits it.
func NewEmpty(userID, date string) DayRecord {
	return DayRecord{
		UserID:                userID,
		Date:                  date,
		TopTargets:            []Goal{},
		MassiveGoals:          []Goal{},
		SpeedOfImplementation: make([]SOITarget, SOISlots),
		Contacts:              []Contact{},
		Events:                []CalendarEvent{},
	}
}

// Normalize restores the list invariants: goal lists capped at 6 and
// exactly 12 SOI slots. Nil slices become empty ones.
// POST: len(TopTargets) <= 6, len(MassiveGoals) <= 6, len(SpeedOfImplementation) == 12
func (d *DayRecord) Normalize() {
	d.FillSlots()
	d.TopTargets = CapGoals(d.TopTargets)
	d.MassiveGoals = CapGoals(d.MassiveGoals)
}

// FillSlots fixes the SOI slot count and replaces nil slices, leaving the
// goal lists at whatever length they were stored with.
// POST: len(SpeedOfImplementation) == 12, no nil slices
func (d *DayRecord) FillSlots() {
	if d.TopTargets == nil {
		d.TopTargets = []Goal{}
	}
	if d.MassiveGoals == nil {
		d.MassiveGoals = []Goal{}
	}
	switch {
	case len(d.SpeedOfImplementation) > SOISlots:
		d.SpeedOfImplementation = d.SpeedOfImplementation[:SOISlots]
	case len(d.SpeedOfImplementation) < SOISlots:
		padded := make([]SOITarget, SOISlots)
		copy(padded, d.SpeedOfImplementation)
		d.SpeedOfImplementation = padded
	}
	if d.Contacts == nil {
		d.Contacts = []Contact{}
	}
	if d.Events == nil {
		d.Events = []CalendarEvent{}
	}
}

// Validate checks the record invariants.
// PRE: DayRecord struct is populated
// POST: Returns nil if valid, error otherwise
func (d *DayRecord) Validate() error {
	if d.UserID == "" {
		return ErrEmptyUserID
	}
	if _, err := ParseDateKey(d.Date); err != nil {
		return err
	}
	if len(d.TopTargets) > MaxGoals || len(d.MassiveGoals) > MaxGoals {
		return ErrTooManyGoals
	}
	if len(d.SpeedOfImplementation) != SOISlots {
		return ErrSOISlotCount
	}
	return nil
}

// IsEmpty reports whether the record carries no user data.
func (d *DayRecord) IsEmpty() bool {
	if len(d.TopTargets) > 0 || len(d.MassiveGoals) > 0 || len(d.Contacts) > 0 || len(d.Events) > 0 {
		return false
	}
	for _, s := range d.SpeedOfImplementation {
		if !s.IsBlank() {
			return false
		}
	}
	return strings.TrimSpace(d.Notes) == "" && d.Revenue == (RevenueSnapshot{})
}

// GoalList returns a pointer to the named goal list.
func (d *DayRecord) GoalList(name string) (*[]Goal, error) {
	switch name {
	case ListTopTargets:
		return &d.TopTargets, nil
	case ListMassiveGoals:
		return &d.MassiveGoals, nil
	}
	return nil, ErrUnknownList
}

// FirstBlankSlot returns the index of the first SOI slot with blank text, or -1.
func (d *DayRecord) FirstBlankSlot() int {
	for i, s := range d.SpeedOfImplementation {
		if s.IsBlank() {
			return i
		}
	}
	return -1
}

// UpsertEvent replaces the event with the same GHLEventID, or appends it.
// Returns true when an existing event was replaced.
func (d *DayRecord) UpsertEvent(ev CalendarEvent) bool {
	if ev.GHLEventID != "" {
		for i, existing := range d.Events {
			if existing.GHLEventID == ev.GHLEventID {
				ev.ID = existing.ID
				d.Events[i] = ev
				return true
			}
		}
	}
	d.Events = append(d.Events, ev)
	return false
}

// RemoveEventByExternalID drops the event with the given GHL id.
func (d *DayRecord) RemoveEventByExternalID(ghlEventID string) bool {
	_, ok := d.TakeEventByExternalID(ghlEventID)
	return ok
}

// TakeEventByExternalID removes and returns the event with the given GHL id.
func (d *DayRecord) TakeEventByExternalID(ghlEventID string) (CalendarEvent, bool) {
	for i, existing := range d.Events {
		if existing.GHLEventID == ghlEventID {
			d.Events = append(d.Events[:i], d.Events[i+1:]...)
			return existing, true
		}
	}
	return CalendarEvent{}, false
}

// CapGoals truncates a goal list to MaxGoals, returning an empty slice for nil.
func CapGoals(goals []Goal) []Goal {
	if goals == nil {
		return []Goal{}
	}
	if len(goals) > MaxGoals {
		return goals[:MaxGoals]
	}
	return goals
}
