package web

import (
	"net/http"

	hotLeadStore "actiontracker/internal/adapters/storage/hotlead"
	"actiontracker/internal/application/listutil"
	"actiontracker/internal/application/orchestrators"
	"actiontracker/internal/application/projections"
	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/hotlead"
	"actiontracker/internal/domain/transaction"
)

type transactionList struct {
	Transactions []transaction.Transaction `json:"transactions"`
	Page         listutil.PageInfo         `json:"page"`
}

// handleListTransactions handles GET /api/transactions?from=&to=&page=&per_page=
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := listutil.ParseFilterParams(q, []string{"from", "to"})
	for _, key := range []string{"from", "to"} {
		if v := filters.Get(key); v != "" {
			if _, err := dayrecord.ParseDateKey(v); err != nil {
				writeError(w, r, err)
				return
			}
		}
	}
	txns, err := s.stores.TransactionStore.ListByUsers(r.Context(), []string{session(r).AccountID}, filters.Get("from"), filters.Get("to"))
	if err != nil {
		internalError(w, r, err)
		return
	}
	// newest first
	for i, j := 0, len(txns)-1; i < j; i, j = i+1, j-1 {
		txns[i], txns[j] = txns[j], txns[i]
	}
	page, info := listutil.Slice(txns, listutil.ParsePageParams(q))
	writeJSON(w, http.StatusOK, transactionList{Transactions: page, Page: info})
}

type recordTransactionRequest struct {
	ClientName  string `json:"clientName"`
	Date        string `json:"date"`
	AmountCents int64  `json:"amountCents"`
	Product     string `json:"product"`
	Notes       string `json:"notes"`
}

// handleRecordTransaction handles POST /api/transactions
func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req recordTransactionRequest
	if !strictDecode(w, r, &req) {
		return
	}
	if req.Date == "" {
		req.Date = s.today()
	}
	t, err := orchestrators.ExecuteRecordTransaction(r.Context(), orchestrators.RecordTransactionInput{
		UserID:      session(r).AccountID,
		ClientName:  req.ClientName,
		Date:        req.Date,
		AmountCents: req.AmountCents,
		Product:     req.Product,
		Notes:       req.Notes,
	}, s.transactionDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// handleDeleteTransaction handles DELETE /api/transactions/{id}
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteTransaction(r.Context(), orchestrators.DeleteTransactionInput{
		UserID:        session(r).AccountID,
		TransactionID: r.PathValue("id"),
	}, s.transactionDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) transactionDeps() orchestrators.TransactionDeps {
	return orchestrators.TransactionDeps{
		TransactionStore: s.stores.TransactionStore,
		GenerateID:       s.generateID,
		Now:              s.now,
	}
}

type hotLeadList struct {
	HotLeads []hotlead.HotLead `json:"hotLeads"`
	Page     listutil.PageInfo `json:"page"`
}

// handleListHotLeads handles GET /api/hot-leads?status=&page=&per_page=, and
// GET /api/hot-leads?due=today for the follow-up list.
func (s *Server) handleListHotLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := session(r).AccountID

	if due := q.Get("due"); due != "" {
		date := due
		if due == "today" {
			date = s.today()
		}
		leads, err := projections.GetDueHotLeads(r.Context(), projections.GetDueHotLeadsQuery{
			UserID: userID,
			Date:   date,
		}, projections.GetDueHotLeadsDeps{HotLeadStore: s.stores.HotLeadStore})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, leads)
		return
	}

	p := listutil.ParsePageParams(q)
	filters := listutil.ParseFilterParams(q, []string{"status"})
	leads, err := s.stores.HotLeadStore.List(r.Context(), hotLeadStore.ListFilter{
		UserID: userID,
		Status: filters.Get("status"),
		Limit:  p.Limit(),
		Offset: p.Offset(),
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	page, info := listutil.Trim(leads, p)
	writeJSON(w, http.StatusOK, hotLeadList{HotLeads: page, Page: info})
}

type createHotLeadRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Source string `json:"source"`
	Notes  string `json:"notes"`
}

// handleCreateHotLead handles POST /api/hot-leads
func (s *Server) handleCreateHotLead(w http.ResponseWriter, r *http.Request) {
	var req createHotLeadRequest
	if !strictDecode(w, r, &req) {
		return
	}
	lead, err := orchestrators.ExecuteCreateHotLead(r.Context(), orchestrators.CreateHotLeadInput{
		UserID: session(r).AccountID,
		Name:   req.Name,
		Phone:  req.Phone,
		Email:  req.Email,
		Source: req.Source,
		Notes:  req.Notes,
	}, orchestrators.CreateHotLeadDeps{
		HotLeadStore: s.stores.HotLeadStore,
		Cadence:      s.opts.Cadence,
		GenerateID:   s.generateID,
		Now:          s.now,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (s *Server) hotLeadActionDeps() orchestrators.HotLeadActionDeps {
	return orchestrators.HotLeadActionDeps{
		HotLeadStore: s.stores.HotLeadStore,
		Cadence:      s.opts.Cadence,
		Now:          s.now,
	}
}

// handleAdvanceHotLead handles POST /api/hot-leads/{id}/advance
func (s *Server) handleAdvanceHotLead(w http.ResponseWriter, r *http.Request) {
	lead, err := orchestrators.ExecuteAdvanceHotLead(r.Context(), orchestrators.HotLeadActionInput{
		UserID: session(r).AccountID,
		LeadID: r.PathValue("id"),
	}, s.hotLeadActionDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type closeHotLeadRequest struct {
	Status string `json:"status"`
}

// handleCloseHotLead handles POST /api/hot-leads/{id}/close
func (s *Server) handleCloseHotLead(w http.ResponseWriter, r *http.Request) {
	var req closeHotLeadRequest
	if !strictDecode(w, r, &req) {
		return
	}
	lead, err := orchestrators.ExecuteCloseHotLead(r.Context(), orchestrators.HotLeadActionInput{
		UserID: session(r).AccountID,
		LeadID: r.PathValue("id"),
		Status: req.Status,
	}, s.hotLeadActionDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}
