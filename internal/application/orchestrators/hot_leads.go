package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"actiontracker/internal/domain/hotlead"
)

// HotLeadStoreForOrchestrator defines the store interface needed by hot-lead orchestrators.
type HotLeadStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (hotlead.HotLead, error)
	Save(ctx context.Context, l hotlead.HotLead) error
}

// --- Create ---

// CreateHotLeadInput carries input for creating a hot lead.
type CreateHotLeadInput struct {
	UserID string
	Name   string
	Phone  string
	Email  string
	Source string
	Notes  string
}

// CreateHotLeadDeps holds dependencies for CreateHotLead.
type CreateHotLeadDeps struct {
	HotLeadStore HotLeadStoreForOrchestrator
	Cadence      []int
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateHotLead starts a lead on the follow-up cadence.
// PRE: Cadence passes hotlead.ValidateCadence
// POST: lead is active at step 0 with its first follow-up scheduled
func ExecuteCreateHotLead(ctx context.Context, input CreateHotLeadInput, deps CreateHotLeadDeps) (hotlead.HotLead, error) {
	lead := hotlead.HotLead{
		ID:     deps.GenerateID(),
		UserID: input.UserID,
		Name:   strings.TrimSpace(input.Name),
		Phone:  strings.TrimSpace(input.Phone),
		Email:  strings.TrimSpace(input.Email),
		Source: input.Source,
		Notes:  input.Notes,
	}
	if err := lead.Validate(); err != nil {
		return hotlead.HotLead{}, err
	}
	lead.Start(deps.Now(), cadenceOrDefault(deps.Cadence))
	if err := deps.HotLeadStore.Save(ctx, lead); err != nil {
		return hotlead.HotLead{}, fmt.Errorf("save hot lead: %w", err)
	}
	slog.Info("hot_lead_created", "lead_id", lead.ID, "user_id", lead.UserID, "next_follow_up", lead.NextFollowUp)
	return lead, nil
}

// --- Advance / Close ---

// HotLeadActionInput identifies a lead owned by UserID.
type HotLeadActionInput struct {
	UserID string
	LeadID string
	Status string // close only: won or lost
}

// HotLeadActionDeps holds dependencies for AdvanceHotLead and CloseHotLead.
type HotLeadActionDeps struct {
	HotLeadStore HotLeadStoreForOrchestrator
	Cadence      []int
	Now          func() time.Time
}

func loadOwnedLead(ctx context.Context, store HotLeadStoreForOrchestrator, userID, leadID string) (hotlead.HotLead, error) {
	lead, err := store.GetByID(ctx, leadID)
	if err != nil {
		return hotlead.HotLead{}, err
	}
	if lead.UserID != userID {
		return hotlead.HotLead{}, ErrNotOwner
	}
	return lead, nil
}

// ExecuteAdvanceHotLead records a completed touch.
// PRE: lead is active and owned by input.UserID
// POST: Step incremented; completed after the ninth touch
func ExecuteAdvanceHotLead(ctx context.Context, input HotLeadActionInput, deps HotLeadActionDeps) (hotlead.HotLead, error) {
	lead, err := loadOwnedLead(ctx, deps.HotLeadStore, input.UserID, input.LeadID)
	if err != nil {
		return hotlead.HotLead{}, err
	}
	if err := lead.Advance(deps.Now(), cadenceOrDefault(deps.Cadence)); err != nil {
		return hotlead.HotLead{}, err
	}
	if err := deps.HotLeadStore.Save(ctx, lead); err != nil {
		return hotlead.HotLead{}, fmt.Errorf("save hot lead: %w", err)
	}
	slog.Info("hot_lead_advanced", "lead_id", lead.ID, "step", lead.Step, "status", lead.Status, "next_follow_up", lead.NextFollowUp)
	return lead, nil
}

// ExecuteCloseHotLead ends the cadence as won or lost.
// PRE: lead owned by input.UserID
func ExecuteCloseHotLead(ctx context.Context, input HotLeadActionInput, deps HotLeadActionDeps) (hotlead.HotLead, error) {
	lead, err := loadOwnedLead(ctx, deps.HotLeadStore, input.UserID, input.LeadID)
	if err != nil {
		return hotlead.HotLead{}, err
	}
	if err := lead.Close(input.Status, deps.Now()); err != nil {
		return hotlead.HotLead{}, err
	}
	if err := deps.HotLeadStore.Save(ctx, lead); err != nil {
		return hotlead.HotLead{}, fmt.Errorf("save hot lead: %w", err)
	}
	slog.Info("hot_lead_closed", "lead_id", lead.ID, "status", lead.Status)
	return lead, nil
}

func cadenceOrDefault(c []int) []int {
	if hotlead.ValidateCadence(c) != nil {
		return hotlead.DefaultCadence
	}
	return c
}
