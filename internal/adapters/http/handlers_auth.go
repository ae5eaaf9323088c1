package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"actiontracker/internal/adapters/http/middleware"
	"actiontracker/internal/application/orchestrators"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin handles POST /login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !strictDecode(w, r, &req) {
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{
		AccountStore: s.stores.AccountStore,
		Now:          s.now,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := s.sessions.Create(middleware.Session{
		AccountID: result.AccountID,
		Email:     result.Email,
		Name:      result.Name,
		Role:      result.Role,
		CompanyID: result.CompanyID,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	middleware.SetSessionCookie(w, token, s.opts.SessionTTL, s.opts.SecureCookies)

	sess, _ := s.sessions.Get(token)
	writeJSON(w, http.StatusOK, sess)
}

// handleLogout handles POST /logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		slog.Info("auth_event", "event", "logout", "account_id", sess.AccountID)
	}
	middleware.ClearSessionCookie(w, s.opts.SecureCookies)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, session(r))
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// handleHealthz handles GET /healthz
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "ok"}
	if s.svc.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.svc.DB.PingContext(ctx); err != nil {
			slog.Error("health_check_failed", "error", err)
			resp = healthResponse{Status: "degraded", Database: "unreachable"}
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
