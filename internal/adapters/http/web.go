// Package web serves the JSON API.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"actiontracker/internal/adapters/ai"
	"actiontracker/internal/adapters/http/middleware"
	"actiontracker/internal/adapters/http/perf"
	accountStore "actiontracker/internal/adapters/storage/account"
	avatarStore "actiontracker/internal/adapters/storage/avatar"
	contentStore "actiontracker/internal/adapters/storage/content"
	dayStore "actiontracker/internal/adapters/storage/dayrecord"
	hotLeadStore "actiontracker/internal/adapters/storage/hotlead"
	outboxStore "actiontracker/internal/adapters/storage/outbox"
	subscriptionStore "actiontracker/internal/adapters/storage/subscription"
	transactionStore "actiontracker/internal/adapters/storage/transaction"
	"actiontracker/internal/application/orchestrators"
	"actiontracker/internal/domain/account"
	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/subscription"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore      accountStore.Store
	DayStore          dayStore.Store
	TransactionStore  transactionStore.Store
	HotLeadStore      hotLeadStore.Store
	AvatarStore       avatarStore.Store
	ContentStore      contentStore.Store
	SubscriptionStore subscriptionStore.Store
	OutboxStore       outboxStore.Store
}

// Pinger reports database health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services holds the non-storage collaborators.
type Services struct {
	Generator ai.Generator
	Outbox    *orchestrators.OutboxProcessor
	Collector *perf.Collector
	DB        Pinger
}

// Options carries configuration the handlers need.
type Options struct {
	CSRFKey        []byte
	TrustedOrigins []string
	SecureCookies  bool
	SessionTTL     time.Duration
	RateLimit      int // requests per second per client; 0 disables
	SlowRequest    time.Duration
	WebhookSecret  string
	Location       *time.Location
	Cadence        []int
	Limits         subscription.Limits
}

// Server holds handler dependencies.
type Server struct {
	stores     *Stores
	svc        Services
	opts       Options
	sessions   *middleware.SessionStore
	limiter    *middleware.RateLimiter
	now        func() time.Time
	generateID func() string
}

// NewServer builds a Server. Call Close when done.
func NewServer(s *Stores, svc Services, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = middleware.DefaultSessionTTL
	}
	srv := &Server{
		stores:     s,
		svc:        svc,
		opts:       opts,
		now:        time.Now,
		generateID: func() string { return uuid.New().String() },
	}
	srv.sessions = middleware.NewSessionStore(opts.SessionTTL, func() time.Time { return srv.now() })
	if opts.RateLimit > 0 {
		srv.limiter = middleware.NewRateLimiter(opts.RateLimit, time.Second)
	}
	return srv
}

// Close stops background goroutines owned by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Close()
	}
}

// Handler wires routes and the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	chain := []func(http.Handler) http.Handler{
		middleware.SecurityHeaders,
		middleware.CSRF(middleware.CSRFOptions{
			Key:            s.opts.CSRFKey,
			TrustedOrigins: s.opts.TrustedOrigins,
			Secure:         s.opts.SecureCookies,
			ExemptPrefixes: []string{"/webhooks/", "/healthz"},
		}),
		middleware.Auth(s.sessions),
	}
	if s.limiter != nil {
		chain = append(chain, middleware.RateLimit(s.limiter))
	}
	chain = append(chain, middleware.Timing(s.svc.Collector, s.opts.SlowRequest))
	return middleware.Chain(mux, chain...)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	public := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.Routed(h))
	}
	authed := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.Routed(middleware.RequireAuth(h)))
	}
	admin := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.Routed(middleware.RequireRole(account.RoleAdmin)(h)))
	}

	public("GET /healthz", s.handleHealthz)
	public("POST /login", s.handleLogin)
	public("POST /logout", s.handleLogout)
	public("POST /webhooks/ghl/{userID}", s.handleWebhook)

	authed("GET /api/me", s.handleMe)
	authed("POST /api/password", s.handleChangePassword)

	authed("GET /api/days/{date}", s.handleGetDay)
	authed("PUT /api/days/{date}", s.handleSaveDay)
	authed("POST /api/days/{date}/contacts", s.handleLogContact)
	authed("GET /api/days/{date}/rollover", s.handleRolloverPreview)
	authed("POST /api/days/{date}/rollover", s.handleRolloverConfirm)
	authed("POST /api/days/{date}/rollover/dismiss", s.handleRolloverDismiss)
	authed("POST /api/days/{date}/forward", s.handleForwardItem)

	authed("GET /api/performance", s.handlePerformance)

	authed("GET /api/transactions", s.handleListTransactions)
	authed("POST /api/transactions", s.handleRecordTransaction)
	authed("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	authed("GET /api/hot-leads", s.handleListHotLeads)
	authed("POST /api/hot-leads", s.handleCreateHotLead)
	authed("POST /api/hot-leads/{id}/advance", s.handleAdvanceHotLead)
	authed("POST /api/hot-leads/{id}/close", s.handleCloseHotLead)

	authed("GET /api/avatars", s.handleListAvatars)
	authed("POST /api/avatars", s.handleCreateAvatar)
	authed("PUT /api/avatars/{id}", s.handleUpdateAvatar)
	authed("DELETE /api/avatars/{id}", s.handleDeleteAvatar)

	authed("GET /api/content", s.handleListContent)
	authed("POST /api/content/generate", s.handleGenerateContent)
	authed("POST /api/content/{id}/posted", s.handleMarkPosted)
	authed("POST /api/content/{id}/performance", s.handleRecordPerformance)
	authed("GET /api/content/{id}/preview", s.handleContentPreview)

	authed("GET /api/subscription", s.handleSubscription)

	admin("GET /admin/accounts", s.handleAdminListAccounts)
	admin("POST /admin/accounts", s.handleAdminCreateAccount)
	admin("POST /admin/accounts/{id}/password", s.handleAdminResetPassword)
	admin("GET /admin/outbox", s.handleAdminOutboxList)
	admin("POST /admin/outbox/{id}/retry", s.handleAdminOutboxRetry)
	admin("POST /admin/outbox/{id}/abandon", s.handleAdminOutboxAbandon)
	admin("GET /admin/perf", s.handleAdminPerf)
}

// session returns the caller's session. Only call behind RequireAuth.
func session(r *http.Request) middleware.Session {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return sess
}

// today is the current date key in the configured zone.
func (s *Server) today() string {
	return dayrecord.DateKey(s.now().In(s.opts.Location))
}

// pathDate returns the {date} path value, writing a 400 if it is malformed.
func pathDate(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := r.PathValue("date")
	if _, err := dayrecord.ParseDateKey(date); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return date, true
}
