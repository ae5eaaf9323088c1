package orchestrators

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"actiontracker/internal/adapters/storage"
	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/hotlead"
	"actiontracker/internal/domain/transaction"
)

// Webhook event types from the CRM.
const (
	EventContactCreated     = "contact.created"
	EventContactUpdated     = "contact.updated"
	EventAppointmentCreated = "appointment.created"
	EventAppointmentUpdated = "appointment.updated"
	EventAppointmentDeleted = "appointment.deleted"
	EventOpportunityWon     = "opportunity.won"
)

// Webhook errors
var (
	ErrBadSignature   = errors.New("webhook signature does not match")
	ErrMalformedEvent = errors.New("webhook payload is malformed")
)

// WebhookEvent is the envelope the CRM posts.
type WebhookEvent struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

type webhookContact struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Source string `json:"source"`
}

type webhookAppointment struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Notes     string    `json:"notes"`
}

type webhookOpportunity struct {
	ID          string `json:"id"`
	ContactName string `json:"contact_name"`
	Amount      int64  `json:"monetary_value_cents"`
	Product     string `json:"name"`
	WonAt       string `json:"won_at"` // YYYY-MM-DD or RFC 3339
}

// WebhookHotLeadStore upserts leads by CRM contact ID.
type WebhookHotLeadStore interface {
	GetByExternalID(ctx context.Context, userID, contactID string) (hotlead.HotLead, error)
	Save(ctx context.Context, l hotlead.HotLead) error
}

// WebhookTransactionStore upserts transactions by CRM opportunity ID.
type WebhookTransactionStore interface {
	GetByExternalID(ctx context.Context, userID, opportunityID string) (transaction.Transaction, error)
	Save(ctx context.Context, t transaction.Transaction) error
}

// WebhookDayStore finds which day already holds a CRM appointment.
type WebhookDayStore interface {
	DayStoreForOrchestrator
	EventDate(ctx context.Context, userID, ghlEventID string) (string, error)
}

// IngestWebhookInput carries one signed delivery.
type IngestWebhookInput struct {
	UserID    string
	Body      []byte
	Signature string // hex HMAC-SHA256 of Body
}

// IngestWebhookDeps holds dependencies for IngestWebhook.
type IngestWebhookDeps struct {
	Secret           string
	DayStore         WebhookDayStore
	HotLeadStore     WebhookHotLeadStore
	TransactionStore WebhookTransactionStore
	Cadence          []int
	Location         *time.Location
	GenerateID       func() string
	Now              func() time.Time
}

// IngestWebhookResult reports what the delivery did.
type IngestWebhookResult struct {
	EventType string `json:"eventType"`
	Handled   bool   `json:"handled"`
	Created   bool   `json:"created"`
	ID        string `json:"id,omitempty"`
}

// VerifySignature checks a hex HMAC-SHA256 signature in constant time.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" {
		return false
	}
	want, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signature), "sha256="))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), want)
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ExecuteIngestWebhook maps a CRM event onto an idempotent upsert.
// Unknown event types are acknowledged with Handled false.
// PRE: signature valid for input.Body
// POST: replaying the same delivery leaves storage unchanged apart from timestamps
func ExecuteIngestWebhook(ctx context.Context, input IngestWebhookInput, deps IngestWebhookDeps) (IngestWebhookResult, error) {
	if !VerifySignature(deps.Secret, input.Body, input.Signature) {
		slog.Warn("webhook_rejected", "user_id", input.UserID, "reason", "bad_signature")
		return IngestWebhookResult{}, ErrBadSignature
	}
	var ev WebhookEvent
	if err := json.Unmarshal(input.Body, &ev); err != nil || ev.EventType == "" {
		return IngestWebhookResult{}, ErrMalformedEvent
	}

	res := IngestWebhookResult{EventType: ev.EventType, Handled: true}
	var err error
	switch ev.EventType {
	case EventContactCreated, EventContactUpdated:
		res.ID, res.Created, err = upsertContact(ctx, input.UserID, ev.Data, deps)
	case EventAppointmentCreated, EventAppointmentUpdated:
		res.ID, res.Created, err = upsertAppointment(ctx, input.UserID, ev.Data, deps)
	case EventAppointmentDeleted:
		res.ID, err = deleteAppointment(ctx, input.UserID, ev.Data, deps)
	case EventOpportunityWon:
		res.ID, res.Created, err = upsertOpportunity(ctx, input.UserID, ev.Data, deps)
	default:
		slog.Info("webhook_ignored", "user_id", input.UserID, "event_type", ev.EventType)
		return IngestWebhookResult{EventType: ev.EventType}, nil
	}
	if err != nil {
		return IngestWebhookResult{}, err
	}
	slog.Info("webhook_ingested", "user_id", input.UserID, "event_type", ev.EventType, "id", res.ID, "created", res.Created)
	return res, nil
}

func upsertContact(ctx context.Context, userID string, raw json.RawMessage, deps IngestWebhookDeps) (string, bool, error) {
	var c webhookContact
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == "" {
		return "", false, ErrMalformedEvent
	}
	now := deps.Now()
	lead, err := deps.HotLeadStore.GetByExternalID(ctx, userID, c.ID)
	created := errors.Is(err, storage.ErrNotFound)
	if err != nil && !created {
		return "", false, fmt.Errorf("lookup contact: %w", err)
	}
	if created {
		lead = hotlead.HotLead{ID: deps.GenerateID(), UserID: userID, GHLContactID: c.ID, Source: "ghl"}
		lead.Start(now, cadenceOrDefault(deps.Cadence))
	}
	if c.Name != "" {
		lead.Name = c.Name
	}
	if c.Phone != "" {
		lead.Phone = c.Phone
	}
	if c.Email != "" {
		lead.Email = c.Email
	}
	if c.Source != "" {
		lead.Source = c.Source
	}
	if lead.Name == "" {
		lead.Name = lead.Email
	}
	lead.UpdatedAt = now
	if err := lead.Validate(); err != nil {
		return "", false, err
	}
	if err := deps.HotLeadStore.Save(ctx, lead); err != nil {
		return "", false, fmt.Errorf("save contact: %w", err)
	}
	return lead.ID, created, nil
}

func appointmentDay(a webhookAppointment, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return dayrecord.DateKey(a.StartTime.In(loc))
}

// previousEventDate returns the date currently holding the event, or "".
func previousEventDate(ctx context.Context, userID, ghlEventID string, deps IngestWebhookDeps) (string, error) {
	date, err := deps.DayStore.EventDate(ctx, userID, ghlEventID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return date, err
}

// upsertAppointment keeps one copy of each CRM appointment, on the day of its
// current start time. A reschedule moves the event and keeps its local ID.
func upsertAppointment(ctx context.Context, userID string, raw json.RawMessage, deps IngestWebhookDeps) (string, bool, error) {
	var a webhookAppointment
	if err := json.Unmarshal(raw, &a); err != nil || a.ID == "" || a.StartTime.IsZero() {
		return "", false, ErrMalformedEvent
	}
	date := appointmentDay(a, deps.Location)
	prevDate, err := previousEventDate(ctx, userID, a.ID, deps)
	if err != nil {
		return "", false, fmt.Errorf("find appointment: %w", err)
	}
	day, _, err := loadDay(ctx, deps.DayStore, userID, date)
	if err != nil {
		return "", false, err
	}
	now := deps.Now()
	ev := dayrecord.CalendarEvent{
		ID:         deps.GenerateID(),
		Title:      a.Title,
		Start:      a.StartTime,
		End:        a.EndTime,
		Notes:      a.Notes,
		GHLEventID: a.ID,
	}

	if prevDate != "" && prevDate != date {
		old, found, err := loadDay(ctx, deps.DayStore, userID, prevDate)
		if err != nil {
			return "", false, err
		}
		if moved, ok := old.TakeEventByExternalID(a.ID); found && ok {
			ev.ID = moved.ID
			day.UpsertEvent(ev)
			old.UpdatedAt = now
			day.UpdatedAt = now
			if err := deps.DayStore.SaveAll(ctx, old, day); err != nil {
				return "", false, fmt.Errorf("save moved appointment: %w", err)
			}
			slog.Info("appointment_moved", "user_id", userID, "ghl_event_id", a.ID, "from", prevDate, "to", date)
			return a.ID, false, nil
		}
	}

	replaced := day.UpsertEvent(ev)
	day.UpdatedAt = now
	if err := deps.DayStore.Save(ctx, day); err != nil {
		return "", false, fmt.Errorf("save appointment day: %w", err)
	}
	return a.ID, !replaced, nil
}

func deleteAppointment(ctx context.Context, userID string, raw json.RawMessage, deps IngestWebhookDeps) (string, error) {
	var a webhookAppointment
	if err := json.Unmarshal(raw, &a); err != nil || a.ID == "" {
		return "", ErrMalformedEvent
	}
	date, err := previousEventDate(ctx, userID, a.ID, deps)
	if err != nil {
		return "", fmt.Errorf("find appointment: %w", err)
	}
	if date == "" {
		if a.StartTime.IsZero() {
			return a.ID, nil
		}
		date = appointmentDay(a, deps.Location)
	}
	day, found, err := loadDay(ctx, deps.DayStore, userID, date)
	if err != nil || !found {
		return a.ID, err
	}
	if !day.RemoveEventByExternalID(a.ID) {
		return a.ID, nil
	}
	day.UpdatedAt = deps.Now()
	if err := deps.DayStore.Save(ctx, day); err != nil {
		return "", fmt.Errorf("save appointment day: %w", err)
	}
	return a.ID, nil
}

func upsertOpportunity(ctx context.Context, userID string, raw json.RawMessage, deps IngestWebhookDeps) (string, bool, error) {
	var o webhookOpportunity
	if err := json.Unmarshal(raw, &o); err != nil || o.ID == "" {
		return "", false, ErrMalformedEvent
	}
	date, err := opportunityDate(o.WonAt, deps.Now(), deps.Location)
	if err != nil {
		return "", false, ErrMalformedEvent
	}

	t, err := deps.TransactionStore.GetByExternalID(ctx, userID, o.ID)
	created := errors.Is(err, storage.ErrNotFound)
	if err != nil && !created {
		return "", false, fmt.Errorf("lookup opportunity: %w", err)
	}
	if created {
		t = transaction.Transaction{ID: deps.GenerateID(), UserID: userID, GHLOpportunityID: o.ID, CreatedAt: deps.Now()}
	}
	t.ClientName = o.ContactName
	t.AmountCents = o.Amount
	t.Product = o.Product
	t.Date = date
	if err := t.Validate(); err != nil {
		return "", false, err
	}
	if err := deps.TransactionStore.Save(ctx, t); err != nil {
		return "", false, fmt.Errorf("save opportunity: %w", err)
	}
	return t.ID, created, nil
}

func opportunityDate(s string, now time.Time, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.UTC
	}
	if s == "" {
		return dayrecord.DateKey(now.In(loc)), nil
	}
	if _, err := dayrecord.ParseDateKey(s); err == nil {
		return s, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", err
	}
	return dayrecord.DateKey(t.In(loc)), nil
}
