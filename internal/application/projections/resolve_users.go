package projections

import (
	"context"
	"errors"

	"actiontracker/internal/adapters/storage"
	accountstore "actiontracker/internal/adapters/storage/account"
	"actiontracker/internal/domain/account"
)

// ErrForbidden is returned when a viewer asks for a user they may not see.
var ErrForbidden = errors.New("not permitted to view that user")

// ResolveUsersQuery carries input for resolving the users a report covers.
type ResolveUsersQuery struct {
	ViewerID  string
	Requested []string // empty means the viewer alone
	All       bool     // every user the viewer may see
}

// ResolveUsersDeps holds dependencies for user resolution.
type ResolveUsersDeps struct {
	AccountStore AccountStore
}

// ResolveUsers turns a report request into the user IDs the viewer may see.
// Reps see only themselves; managers see their company; admins see everyone.
// POST: returns ErrForbidden if any requested user is out of reach
func ResolveUsers(ctx context.Context, query ResolveUsersQuery, deps ResolveUsersDeps) ([]string, error) {
	viewer, err := deps.AccountStore.GetByID(ctx, query.ViewerID)
	if err != nil {
		return nil, err
	}

	if query.All {
		var filter accountstore.ListFilter
		switch viewer.Role {
		case account.RoleAdmin:
		case account.RoleManager:
			if viewer.CompanyID == "" {
				return []string{viewer.ID}, nil
			}
			filter.CompanyID = viewer.CompanyID
		default:
			return []string{viewer.ID}, nil
		}
		accts, err := deps.AccountStore.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(accts))
		for _, a := range accts {
			ids = append(ids, a.ID)
		}
		return ids, nil
	}

	requested := dedupe(query.Requested)
	if len(requested) == 0 {
		return []string{viewer.ID}, nil
	}
	for _, id := range requested {
		if id == viewer.ID {
			continue
		}
		other, err := deps.AccountStore.GetByID(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrForbidden
		}
		if err != nil {
			return nil, err
		}
		if !viewer.CanView(other) {
			return nil, ErrForbidden
		}
	}
	return requested, nil
}
