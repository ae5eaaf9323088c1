package web

import (
	"net/http"
	"strconv"

	"github.com/microcosm-cc/bluemonday"

	"actiontracker/internal/adapters/email"
	contentStore "actiontracker/internal/adapters/storage/content"
	"actiontracker/internal/application/listutil"
	"actiontracker/internal/application/orchestrators"
	"actiontracker/internal/application/projections"
	"actiontracker/internal/domain/avatar"
	"actiontracker/internal/domain/content"
)

// previewPolicy strips anything a generated body could smuggle into the preview.
var previewPolicy = bluemonday.UGCPolicy()

// handleListAvatars handles GET /api/avatars
func (s *Server) handleListAvatars(w http.ResponseWriter, r *http.Request) {
	avatars, err := s.stores.AvatarStore.ListByUser(r.Context(), session(r).AccountID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if avatars == nil {
		avatars = []avatar.BuyerAvatar{}
	}
	writeJSON(w, http.StatusOK, avatars)
}

type avatarRequest struct {
	Name          string `json:"name"`
	Demographics  string `json:"demographics"`
	PainPoints    string `json:"painPoints"`
	Desires       string `json:"desires"`
	Objections    string `json:"objections"`
	WateringHoles string `json:"wateringHoles"`
	Offer         string `json:"offer"`
}

func (s *Server) saveAvatar(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req avatarRequest
	if !strictDecode(w, r, &req) {
		return
	}
	a, err := orchestrators.ExecuteSaveAvatar(r.Context(), orchestrators.SaveAvatarInput{
		UserID:        session(r).AccountID,
		ID:            id,
		Name:          req.Name,
		Demographics:  req.Demographics,
		PainPoints:    req.PainPoints,
		Desires:       req.Desires,
		Objections:    req.Objections,
		WateringHoles: req.WateringHoles,
		Offer:         req.Offer,
	}, s.avatarDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, a)
}

// handleCreateAvatar handles POST /api/avatars
func (s *Server) handleCreateAvatar(w http.ResponseWriter, r *http.Request) {
	s.saveAvatar(w, r, "", http.StatusCreated)
}

// handleUpdateAvatar handles PUT /api/avatars/{id}
func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	s.saveAvatar(w, r, r.PathValue("id"), http.StatusOK)
}

// handleDeleteAvatar handles DELETE /api/avatars/{id}
func (s *Server) handleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteDeleteAvatar(r.Context(), session(r).AccountID, r.PathValue("id"), s.avatarDeps()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) avatarDeps() orchestrators.AvatarDeps {
	return orchestrators.AvatarDeps{
		AvatarStore: s.stores.AvatarStore,
		GenerateID:  s.generateID,
		Now:         s.now,
	}
}

type contentList struct {
	Content []content.Content `json:"content"`
	Page    listutil.PageInfo `json:"page"`
}

// handleListContent handles GET /api/content?avatar=&kind=&posted=&page=&per_page=
func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := listutil.ParsePageParams(q)
	filters := listutil.ParseFilterParams(q, []string{"avatar", "kind", "posted"})

	filter := contentStore.ListFilter{
		UserID:   session(r).AccountID,
		AvatarID: filters.Get("avatar"),
		Kind:     filters.Get("kind"),
		Limit:    p.Limit(),
		Offset:   p.Offset(),
	}
	if v := filters.Get("posted"); v != "" {
		posted, err := strconv.ParseBool(v)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "posted must be true or false")
			return
		}
		filter.Posted = &posted
	}

	items, err := s.stores.ContentStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	page, info := listutil.Trim(items, p)
	writeJSON(w, http.StatusOK, contentList{Content: page, Page: info})
}

type generateRequest struct {
	AvatarID string `json:"avatarId"`
	Kind     string `json:"kind"`
	Platform string `json:"platform"`
	Tone     string `json:"tone"`
	Extra    string `json:"extra"`
}

// handleGenerateContent handles POST /api/content/generate
func (s *Server) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !strictDecode(w, r, &req) {
		return
	}
	result, err := orchestrators.ExecuteGenerateContent(r.Context(), orchestrators.GenerateContentInput{
		UserID:   session(r).AccountID,
		AvatarID: req.AvatarID,
		Kind:     req.Kind,
		Platform: req.Platform,
		Tone:     req.Tone,
		Extra:    req.Extra,
	}, orchestrators.GenerateContentDeps{
		AvatarStore:       s.stores.AvatarStore,
		ContentStore:      s.stores.ContentStore,
		SubscriptionStore: s.stores.SubscriptionStore,
		Generator:         s.svc.Generator,
		Limits:            s.opts.Limits,
		GenerateID:        s.generateID,
		Now:               s.now,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) contentActionDeps() orchestrators.ContentActionDeps {
	return orchestrators.ContentActionDeps{ContentStore: s.stores.ContentStore, Now: s.now}
}

// handleMarkPosted handles POST /api/content/{id}/posted
func (s *Server) handleMarkPosted(w http.ResponseWriter, r *http.Request) {
	c, err := orchestrators.ExecuteMarkContentPosted(r.Context(), session(r).AccountID, r.PathValue("id"), s.contentActionDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleRecordPerformance handles POST /api/content/{id}/performance
func (s *Server) handleRecordPerformance(w http.ResponseWriter, r *http.Request) {
	var p content.Performance
	if !strictDecode(w, r, &p) {
		return
	}
	c, err := orchestrators.ExecuteRecordContentPerformance(r.Context(), session(r).AccountID, r.PathValue("id"), p, s.contentActionDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleContentPreview handles GET /api/content/{id}/preview and returns sanitised HTML.
func (s *Server) handleContentPreview(w http.ResponseWriter, r *http.Request) {
	c, err := s.stores.ContentStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if c.UserID != session(r).AccountID {
		writeError(w, r, orchestrators.ErrNotOwner)
		return
	}

	md := c.Body
	if c.Headline != "" {
		md = "## " + c.Headline + "\n\n" + md
	}
	if c.CTA != "" {
		md += "\n\n**" + c.CTA + "**"
	}
	html, err := email.MarkdownToHTML(md)
	if err != nil {
		internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(previewPolicy.SanitizeBytes([]byte(html)))
}

// handleSubscription handles GET /api/subscription
func (s *Server) handleSubscription(w http.ResponseWriter, r *http.Request) {
	usage, err := projections.GetUsage(r.Context(), projections.GetUsageQuery{
		UserID: session(r).AccountID,
	}, projections.GetUsageDeps{
		SubscriptionStore: s.stores.SubscriptionStore,
		Limits:            s.opts.Limits,
		Now:               s.now,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}
