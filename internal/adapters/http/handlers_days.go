package web

import (
	"net/http"

	"actiontracker/internal/application/orchestrators"
	"actiontracker/internal/application/projections"
	"actiontracker/internal/domain/dayrecord"
)

// handleGetDay handles GET /api/days/{date}
func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	view, err := projections.GetDay(r.Context(), projections.GetDayQuery{
		UserID: session(r).AccountID,
		Date:   date,
	}, projections.GetDayDeps{DayStore: s.stores.DayStore})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleSaveDay handles PUT /api/days/{date}
func (s *Server) handleSaveDay(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	var rec dayrecord.DayRecord
	if !strictDecode(w, r, &rec) {
		return
	}
	saved, err := orchestrators.ExecuteSaveDay(r.Context(), orchestrators.SaveDayInput{
		UserID: session(r).AccountID,
		Date:   date,
		Record: rec,
	}, orchestrators.SaveDayDeps{DayStore: s.stores.DayStore, Now: s.now})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

type logContactRequest struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Outcome          string `json:"outcome"`
	AppointmentSet   bool   `json:"appointmentSet"`
	IsLead           bool   `json:"isLead"`
	Notes            string `json:"notes"`
	PromoteToHotLead bool   `json:"promoteToHotLead"`
	Email            string `json:"email"`
}

// handleLogContact handles POST /api/days/{date}/contacts
func (s *Server) handleLogContact(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	var req logContactRequest
	if !strictDecode(w, r, &req) {
		return
	}
	result, err := orchestrators.ExecuteLogContact(r.Context(), orchestrators.LogContactInput{
		UserID: session(r).AccountID,
		Date:   date,
		Contact: dayrecord.Contact{
			Name:           req.Name,
			Phone:          req.Phone,
			Outcome:        req.Outcome,
			AppointmentSet: req.AppointmentSet,
			IsLead:         req.IsLead,
			Notes:          req.Notes,
		},
		PromoteToHotLead: req.PromoteToHotLead,
		Email:            req.Email,
	}, orchestrators.LogContactDeps{
		DayStore:     s.stores.DayStore,
		HotLeadStore: s.stores.HotLeadStore,
		Cadence:      s.opts.Cadence,
		GenerateID:   s.generateID,
		Now:          s.now,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) rolloverDeps() orchestrators.RolloverDeps {
	return orchestrators.RolloverDeps{DayStore: s.stores.DayStore, Now: s.now}
}

// handleRolloverPreview handles GET /api/days/{date}/rollover
func (s *Server) handleRolloverPreview(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	preview, err := orchestrators.ExecuteRolloverPreview(r.Context(),
		orchestrators.RolloverInput{UserID: session(r).AccountID, Date: date}, s.rolloverDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleRolloverConfirm handles POST /api/days/{date}/rollover
func (s *Server) handleRolloverConfirm(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	result, err := orchestrators.ExecuteRolloverConfirm(r.Context(),
		orchestrators.RolloverInput{UserID: session(r).AccountID, Date: date}, s.rolloverDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleRolloverDismiss handles POST /api/days/{date}/rollover/dismiss
func (s *Server) handleRolloverDismiss(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	day, err := orchestrators.ExecuteRolloverDismiss(r.Context(),
		orchestrators.RolloverInput{UserID: session(r).AccountID, Date: date}, s.rolloverDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

type forwardRequest struct {
	List   string `json:"list"`
	ItemID string `json:"itemId"`
}

// handleForwardItem handles POST /api/days/{date}/forward
func (s *Server) handleForwardItem(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	var req forwardRequest
	if !strictDecode(w, r, &req) {
		return
	}
	result, err := orchestrators.ExecuteForwardItem(r.Context(), orchestrators.ForwardItemInput{
		UserID: session(r).AccountID,
		Date:   date,
		List:   req.List,
		ItemID: req.ItemID,
	}, orchestrators.ForwardItemDeps{DayStore: s.stores.DayStore, Now: s.now})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
