package transaction

import (
	"context"
	"database/sql"
	"strings"

	"actiontracker/internal/adapters/storage"
	domain "actiontracker/internal/domain/transaction"
)

const selectCols = `SELECT id, user_id, client_name, date, amount_cents, product, notes, ghl_opportunity_id, created_at FROM transactions`

// SQLStore implements Store.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new Transaction store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a Transaction by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx, selectCols+` WHERE id = ?`, id).Scan)
	return t, storage.NotFound(err, "transaction "+id)
}

// GetByExternalID retrieves the Transaction imported from a CRM opportunity.
func (s *SQLStore) GetByExternalID(ctx context.Context, userID, opportunityID string) (domain.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx,
		selectCols+` WHERE user_id = ? AND ghl_opportunity_id = ?`, userID, opportunityID).Scan)
	return t, storage.NotFound(err, "opportunity "+opportunityID)
}

// Save persists a Transaction.
// PRE: t has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLStore) Save(ctx context.Context, t domain.Transaction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, client_name, date, amount_cents, product, notes, ghl_opportunity_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   client_name=excluded.client_name, date=excluded.date, amount_cents=excluded.amount_cents,
		   product=excluded.product, notes=excluded.notes, ghl_opportunity_id=excluded.ghl_opportunity_id`,
		t.ID, t.UserID, t.ClientName, t.Date, t.AmountCents, t.Product, t.Notes, t.GHLOpportunityID,
		storage.TimeText(t.CreatedAt))
	return err
}

// Delete removes a Transaction.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound(sql.ErrNoRows, "transaction "+id)
	}
	return nil
}

// ListByUsers retrieves transactions for userIDs, ordered by date then created_at.
func (s *SQLStore) ListByUsers(ctx context.Context, userIDs []string, from, to string) ([]domain.Transaction, error) {
	var where []string
	var args []any
	if len(userIDs) > 0 {
		where = append(where, `user_id IN (`+storage.Placeholders(len(userIDs))+`)`)
		for _, id := range userIDs {
			args = append(args, id)
		}
	}
	if from != "" {
		where = append(where, `date >= ?`)
		args = append(args, from)
	}
	if to != "" {
		where = append(where, `date <= ?`)
		args = append(args, to)
	}
	query := selectCols
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY date, created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(scan func(dest ...any) error) (domain.Transaction, error) {
	var t domain.Transaction
	var createdAt sql.NullString
	err := scan(&t.ID, &t.UserID, &t.ClientName, &t.Date, &t.AmountCents, &t.Product, &t.Notes,
		&t.GHLOpportunityID, &createdAt)
	if err != nil {
		return domain.Transaction{}, err
	}
	t.CreatedAt = storage.ParseTime(createdAt)
	return t, nil
}
