package avatar

import (
	"context"
	"database/sql"

	"actiontracker/internal/adapters/storage"
	domain "actiontracker/internal/domain/avatar"
)

const selectCols = `SELECT id, user_id, name, demographics, pain_points, desires, objections, watering_holes, offer,
	created_at, updated_at FROM buyer_avatar`

// SQLStore implements Store.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new BuyerAvatar store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a BuyerAvatar by its ID.
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.BuyerAvatar, error) {
	a, err := scanAvatar(s.db.QueryRowContext(ctx, selectCols+` WHERE id = ?`, id).Scan)
	return a, storage.NotFound(err, "avatar "+id)
}

// Save persists a BuyerAvatar.
// PRE: a has been validated
func (s *SQLStore) Save(ctx context.Context, a domain.BuyerAvatar) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO buyer_avatar (id, user_id, name, demographics, pain_points, desires, objections, watering_holes, offer, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, demographics=excluded.demographics, pain_points=excluded.pain_points,
		   desires=excluded.desires, objections=excluded.objections, watering_holes=excluded.watering_holes,
		   offer=excluded.offer, updated_at=excluded.updated_at`,
		a.ID, a.UserID, a.Name, a.Demographics, a.PainPoints, a.Desires, a.Objections, a.WateringHoles, a.Offer,
		storage.TimeText(a.CreatedAt), storage.TimeText(a.UpdatedAt))
	return err
}

// Delete removes a BuyerAvatar.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM buyer_avatar WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound(sql.ErrNoRows, "avatar "+id)
	}
	return nil
}

// ListByUser retrieves a user's avatars by name.
func (s *SQLStore) ListByUser(ctx context.Context, userID string) ([]domain.BuyerAvatar, error) {
	rows, err := s.db.QueryContext(ctx, selectCols+` WHERE user_id = ? ORDER BY name, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BuyerAvatar
	for rows.Next() {
		a, err := scanAvatar(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAvatar(scan func(dest ...any) error) (domain.BuyerAvatar, error) {
	var a domain.BuyerAvatar
	var createdAt, updatedAt sql.NullString
	err := scan(&a.ID, &a.UserID, &a.Name, &a.Demographics, &a.PainPoints, &a.Desires, &a.Objections,
		&a.WateringHoles, &a.Offer, &createdAt, &updatedAt)
	if err != nil {
		return domain.BuyerAvatar{}, err
	}
	a.CreatedAt = storage.ParseTime(createdAt)
	a.UpdatedAt = storage.ParseTime(updatedAt)
	return a, nil
}
