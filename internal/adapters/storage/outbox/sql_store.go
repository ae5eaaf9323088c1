package outbox

import (
	"context"
	"database/sql"
	"time"

	"actiontracker/internal/adapters/storage"
	domain "actiontracker/internal/domain/outbox"
)

const selectCols = `SELECT id, action_type, payload, status, attempts, max_attempts, last_attempted_at,
	next_attempt_at, created_at, external_id, error_message, dedup_key FROM outbox`

// SQLStore implements the outbox Store interface.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new outbox store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves an outbox entry by its ID.
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, selectCols+` WHERE id = ?`, id).Scan)
	return e, storage.NotFound(err, "outbox entry "+id)
}

// Enqueue inserts e unless another entry already carries its DedupKey.
// PRE: e has been validated
func (s *SQLStore) Enqueue(ctx context.Context, e domain.Entry) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox (id, action_type, payload, status, attempts, max_attempts, last_attempted_at,
		   next_attempt_at, created_at, external_id, error_message, dedup_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(dedup_key) DO NOTHING`,
		args(e)...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Save persists an outbox entry to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLStore) Save(ctx context.Context, e domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox (id, action_type, payload, status, attempts, max_attempts, last_attempted_at,
		   next_attempt_at, created_at, external_id, error_message, dedup_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, attempts=excluded.attempts, max_attempts=excluded.max_attempts,
		   last_attempted_at=excluded.last_attempted_at, next_attempt_at=excluded.next_attempt_at,
		   external_id=excluded.external_id, error_message=excluded.error_message`,
		args(e)...)
	return err
}

// ListDue returns entries ready for another attempt.
func (s *SQLStore) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error) {
	return s.query(ctx,
		selectCols+` WHERE status IN (?, ?) AND attempts < max_attempts
		  AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
		 ORDER BY next_attempt_at, created_at LIMIT ?`,
		domain.StatusPending, domain.StatusRetrying, storage.TimeText(now), limit)
}

// ListByStatus returns entries filtered by status.
func (s *SQLStore) ListByStatus(ctx context.Context, status string, limit int) ([]domain.Entry, error) {
	if status == "" {
		return s.query(ctx, selectCols+` ORDER BY created_at DESC LIMIT ?`, limit)
	}
	return s.query(ctx, selectCols+` WHERE status = ? ORDER BY created_at DESC LIMIT ?`, status, limit)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func args(e domain.Entry) []any {
	var dedup any
	if e.DedupKey != "" {
		dedup = e.DedupKey
	}
	return []any{
		e.ID, e.ActionType, e.Payload, e.Status, e.Attempts, e.MaxAttempts,
		storage.FormatTime(e.LastAttemptedAt), storage.FormatTime(e.NextAttemptAt),
		storage.TimeText(e.CreatedAt), e.ExternalID, e.ErrorMessage, dedup,
	}
}

func scanEntry(scan func(dest ...any) error) (domain.Entry, error) {
	var e domain.Entry
	var lastAttempted, nextAttempt, createdAt, dedup sql.NullString
	err := scan(&e.ID, &e.ActionType, &e.Payload, &e.Status, &e.Attempts, &e.MaxAttempts,
		&lastAttempted, &nextAttempt, &createdAt, &e.ExternalID, &e.ErrorMessage, &dedup)
	if err != nil {
		return domain.Entry{}, err
	}
	e.LastAttemptedAt = storage.ParseTime(lastAttempted)
	e.NextAttemptAt = storage.ParseTime(nextAttempt)
	e.CreatedAt = storage.ParseTime(createdAt)
	e.DedupKey = dedup.String
	return e, nil
}
