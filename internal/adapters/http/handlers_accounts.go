package web

import (
	"net/http"
	"time"

	accountStore "actiontracker/internal/adapters/storage/account"
	"actiontracker/internal/application/listutil"
	"actiontracker/internal/application/orchestrators"
	"actiontracker/internal/domain/account"
)

// accountView is an account without its credentials.
type accountView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CompanyID string    `json:"companyId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Locked    bool      `json:"locked"`
}

func (s *Server) viewAccount(a account.Account) accountView {
	return accountView{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      a.Role,
		CompanyID: a.CompanyID,
		CreatedAt: a.CreatedAt,
		Locked:    a.IsLocked(s.now()),
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// handleChangePassword handles POST /api/password
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !strictDecode(w, r, &req) {
		return
	}
	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       session(r).AccountID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}, orchestrators.ChangePasswordDeps{AccountStore: s.stores.AccountStore})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type accountList struct {
	Accounts []accountView    `json:"accounts"`
	Page     listutil.PageInfo `json:"page"`
}

// handleAdminListAccounts handles GET /admin/accounts?role=&company=&page=&per_page=
func (s *Server) handleAdminListAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := listutil.ParsePageParams(q)
	filters := listutil.ParseFilterParams(q, []string{"role", "company"})

	accts, err := s.stores.AccountStore.List(r.Context(), accountStore.ListFilter{
		Limit:     p.Limit(),
		Offset:    p.Offset(),
		Role:      filters.Get("role"),
		CompanyID: filters.Get("company"),
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	page, info := listutil.Trim(accts, p)
	views := make([]accountView, 0, len(page))
	for _, a := range page {
		views = append(views, s.viewAccount(a))
	}
	writeJSON(w, http.StatusOK, accountList{Accounts: views, Page: info})
}

type createAccountRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
}

// handleAdminCreateAccount handles POST /admin/accounts
func (s *Server) handleAdminCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !strictDecode(w, r, &req) {
		return
	}
	acct, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Email:     req.Email,
		Name:      req.Name,
		Password:  req.Password,
		Role:      req.Role,
		CompanyID: req.CompanyID,
	}, orchestrators.CreateAccountDeps{
		AccountStore:      s.stores.AccountStore,
		SubscriptionStore: s.stores.SubscriptionStore,
		GenerateID:        s.generateID,
		Now:               s.now,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.viewAccount(acct))
}

// handleAdminResetPassword handles POST /admin/accounts/{id}/password
func (s *Server) handleAdminResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !strictDecode(w, r, &req) {
		return
	}
	acct, err := orchestrators.ExecuteResetPassword(r.Context(), orchestrators.ResetPasswordInput{
		AdminID:     session(r).AccountID,
		AccountID:   r.PathValue("id"),
		NewPassword: req.Password,
	}, orchestrators.ChangePasswordDeps{AccountStore: s.stores.AccountStore})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.viewAccount(acct))
}
