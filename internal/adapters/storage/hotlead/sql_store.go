package hotlead

import (
	"context"
	"database/sql"
	"strings"

	"actiontracker/internal/adapters/storage"
	domain "actiontracker/internal/domain/hotlead"
)

const selectCols = `SELECT id, user_id, name, phone, email, source, step, next_follow_up, last_contacted_at,
	status, notes, ghl_contact_id, created_at, updated_at FROM hot_lead`

// SQLStore implements Store.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new HotLead store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a HotLead by its ID.
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.HotLead, error) {
	l, err := scanLead(s.db.QueryRowContext(ctx, selectCols+` WHERE id = ?`, id).Scan)
	return l, storage.NotFound(err, "hot lead "+id)
}

// GetByExternalID retrieves the HotLead mirrored from a CRM contact.
func (s *SQLStore) GetByExternalID(ctx context.Context, userID, contactID string) (domain.HotLead, error) {
	l, err := scanLead(s.db.QueryRowContext(ctx,
		selectCols+` WHERE user_id = ? AND ghl_contact_id = ?`, userID, contactID).Scan)
	return l, storage.NotFound(err, "contact "+contactID)
}

// Save persists a HotLead.
// PRE: l has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLStore) Save(ctx context.Context, l domain.HotLead) error {
	var lastContacted any
	if l.LastContactedAt != nil {
		lastContacted = storage.FormatTime(*l.LastContactedAt)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hot_lead (id, user_id, name, phone, email, source, step, next_follow_up, last_contacted_at,
		   status, notes, ghl_contact_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, phone=excluded.phone, email=excluded.email, source=excluded.source,
		   step=excluded.step, next_follow_up=excluded.next_follow_up, last_contacted_at=excluded.last_contacted_at,
		   status=excluded.status, notes=excluded.notes, ghl_contact_id=excluded.ghl_contact_id,
		   updated_at=excluded.updated_at`,
		l.ID, l.UserID, l.Name, l.Phone, l.Email, l.Source, l.Step, l.NextFollowUp, lastContacted,
		l.Status, l.Notes, l.GHLContactID, storage.TimeText(l.CreatedAt), storage.TimeText(l.UpdatedAt))
	return err
}

// List retrieves HotLeads based on the filter, newest first.
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.HotLead, error) {
	var where []string
	var args []any
	if filter.UserID != "" {
		where = append(where, `user_id = ?`)
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, filter.Status)
	}
	query := selectCols
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}
	return s.query(ctx, query, args...)
}

// ListDue retrieves active leads due on or before date, most overdue first.
func (s *SQLStore) ListDue(ctx context.Context, userID, date string) ([]domain.HotLead, error) {
	query := selectCols + ` WHERE status = ? AND next_follow_up != '' AND next_follow_up <= ?`
	args := []any{domain.StatusActive, date}
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY user_id, next_follow_up, name`
	return s.query(ctx, query, args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) ([]domain.HotLead, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HotLead
	for rows.Next() {
		l, err := scanLead(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLead(scan func(dest ...any) error) (domain.HotLead, error) {
	var l domain.HotLead
	var lastContacted, createdAt, updatedAt sql.NullString
	err := scan(&l.ID, &l.UserID, &l.Name, &l.Phone, &l.Email, &l.Source, &l.Step, &l.NextFollowUp,
		&lastContacted, &l.Status, &l.Notes, &l.GHLContactID, &createdAt, &updatedAt)
	if err != nil {
		return domain.HotLead{}, err
	}
	if t := storage.ParseTime(lastContacted); !t.IsZero() {
		l.LastContactedAt = &t
	}
	l.CreatedAt = storage.ParseTime(createdAt)
	l.UpdatedAt = storage.ParseTime(updatedAt)
	return l, nil
}
