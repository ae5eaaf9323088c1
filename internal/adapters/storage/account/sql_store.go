package account

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"actiontracker/internal/adapters/storage"
	domain "actiontracker/internal/domain/account"
)

var fields = []string{"id", "email", "name", "password_hash", "role", "company_id", "created_at", "failed_logins", "locked_until"}

var selectCols = "SELECT " + strings.Join(fields, ", ") + " FROM account"

// SQLStore implements Store.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new AccountStore.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	entity, err := scanAccount(s.db.QueryRowContext(ctx, selectCols+" WHERE id = ?", id).Scan)
	return entity, storage.NotFound(err, "account "+id)
}

// GetByEmail retrieves an Account by email, case-insensitively.
// PRE: email is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	entity, err := scanAccount(s.db.QueryRowContext(ctx,
		selectCols+" WHERE LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Scan)
	return entity, storage.NotFound(err, "account")
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLStore) Save(ctx context.Context, entity domain.Account) error {
	updates := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "id" || f == "created_at" {
			continue
		}
		updates = append(updates, f+"=excluded."+f)
	}
	query := fmt.Sprintf(
		"INSERT INTO account (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		storage.Placeholders(len(fields)),
		strings.Join(updates, ", "),
	)

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Email,
		entity.Name,
		entity.PasswordHash,
		entity.Role,
		entity.CompanyID,
		storage.TimeText(entity.CreatedAt),
		entity.FailedLogins,
		storage.FormatTime(entity.LockedUntil),
	)
	return err
}

// List retrieves Accounts based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities ordered by name
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	var qb strings.Builder
	var where []string
	var args []any

	qb.WriteString(selectCols)
	if filter.Role != "" {
		where = append(where, "role = ?")
		args = append(args, filter.Role)
	}
	if filter.CompanyID != "" {
		where = append(where, "company_id = ?")
		args = append(args, filter.CompanyID)
	}
	if len(where) > 0 {
		qb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	qb.WriteString(" ORDER BY name, email")
	if filter.Limit > 0 {
		qb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of accounts.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&count)
	return count, err
}

func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var createdAt, lockedUntil sql.NullString
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.Name,
		&entity.PasswordHash,
		&entity.Role,
		&entity.CompanyID,
		&createdAt,
		&entity.FailedLogins,
		&lockedUntil,
	)
	if err != nil {
		return domain.Account{}, err
	}
	entity.CreatedAt = storage.ParseTime(createdAt)
	entity.LockedUntil = storage.ParseTime(lockedUntil)
	return entity, nil
}
