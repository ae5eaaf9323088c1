package web

import (
	"net/http"
	"strconv"
	"strings"

	"actiontracker/internal/application/projections"
)

// handlePerformance handles GET /api/performance?from=&to= or ?window=N, with
// users=id,id or users=all. Without users the caller's own numbers are returned.
// New revenue is a client's first purchase from that rep, so a team view counts
// one client as new once per rep who sold to them.
func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sess := session(r)

	var query projections.GetPerformanceQuery
	if win := q.Get("window"); win != "" {
		n, err := strconv.Atoi(win)
		if err != nil {
			writeError(w, r, projections.ErrInvalidWindow)
			return
		}
		query.WindowDays = n
		query.Today = s.today()
	} else {
		query.From = q.Get("from")
		query.To = q.Get("to")
		if query.To == "" {
			query.To = s.today()
		}
		if query.From == "" {
			query.From = query.To
		}
	}

	resolve := projections.ResolveUsersQuery{ViewerID: sess.AccountID}
	switch users := strings.TrimSpace(q.Get("users")); users {
	case "":
	case "all":
		resolve.All = true
	default:
		resolve.Requested = strings.Split(users, ",")
	}
	ids, err := projections.ResolveUsers(r.Context(), resolve, projections.ResolveUsersDeps{AccountStore: s.stores.AccountStore})
	if err != nil {
		writeError(w, r, err)
		return
	}
	query.UserIDs = ids

	result, err := projections.GetPerformance(r.Context(), query, projections.GetPerformanceDeps{
		DayStore:         s.stores.DayStore,
		TransactionStore: s.stores.TransactionStore,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
