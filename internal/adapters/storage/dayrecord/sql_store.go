package dayrecord

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"actiontracker/internal/adapters/storage"
	domain "actiontracker/internal/domain/dayrecord"
)

const upsertDay = `INSERT INTO day_data (user_id, date, data, updated_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id, date) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`

// SQLStore implements Store over day_data, one JSON document per row.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new DayRecord store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Get retrieves the record for userID on date.
// PRE: userID and date are non-empty
// POST: SOI slots filled; goal lists are returned as stored, even past the cap
func (s *SQLStore) Get(ctx context.Context, userID, date string) (domain.DayRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM day_data WHERE user_id = ? AND date = ?`, userID, date).Scan(&data)
	if err != nil {
		return domain.DayRecord{}, storage.NotFound(err, "day "+date)
	}
	return decode(userID, date, data)
}

// Save persists a record.
// PRE: rec has been validated
// POST: row (rec.UserID, rec.Date) holds rec
func (s *SQLStore) Save(ctx context.Context, rec domain.DayRecord) error {
	return s.SaveAll(ctx, rec)
}

// SaveAll persists recs atomically, refreshing each day's CRM event index.
// PRE: every record has been validated
// POST: all rows are written or none are
func (s *SQLStore) SaveAll(ctx context.Context, recs ...domain.DayRecord) error {
	encoded := make([]string, len(recs))
	for i, rec := range recs {
		data, err := encode(rec)
		if err != nil {
			return err
		}
		encoded[i] = data
	}
	return storage.InTx(ctx, s.db, func(tx *storage.Tx) error {
		for i, rec := range recs {
			if _, err := tx.ExecContext(ctx, upsertDay, rec.UserID, rec.Date, encoded[i], storage.TimeText(rec.UpdatedAt)); err != nil {
				return fmt.Errorf("save day %s/%s: %w", rec.UserID, rec.Date, err)
			}
			if err := indexEvents(ctx, tx, rec); err != nil {
				return fmt.Errorf("index events %s/%s: %w", rec.UserID, rec.Date, err)
			}
		}
		return nil
	})
}

// indexEvents replaces the day's rows in day_event. An event id seen on a
// later record in the same SaveAll moves to that record's date.
func indexEvents(ctx context.Context, tx *storage.Tx, rec domain.DayRecord) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM day_event WHERE user_id = ? AND date = ?`, rec.UserID, rec.Date); err != nil {
		return err
	}
	for _, ev := range rec.Events {
		if ev.GHLEventID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO day_event (user_id, ghl_event_id, date) VALUES (?, ?, ?)
			ON CONFLICT(user_id, ghl_event_id) DO UPDATE SET date=excluded.date`,
			rec.UserID, ev.GHLEventID, rec.Date); err != nil {
			return err
		}
	}
	return nil
}

// EventDate returns the date whose record holds the CRM event, or storage.ErrNotFound.
func (s *SQLStore) EventDate(ctx context.Context, userID, ghlEventID string) (string, error) {
	var date string
	err := s.db.QueryRowContext(ctx,
		`SELECT date FROM day_event WHERE user_id = ? AND ghl_event_id = ?`, userID, ghlEventID).Scan(&date)
	if err != nil {
		return "", storage.NotFound(err, "event "+ghlEventID)
	}
	return date, nil
}

// ListRange retrieves records between from and to inclusive.
// PRE: from <= to, both YYYY-MM-DD
// POST: rows ordered by date, user_id
func (s *SQLStore) ListRange(ctx context.Context, userIDs []string, from, to string) ([]domain.DayRecord, error) {
	var qb strings.Builder
	args := []any{from, to}
	qb.WriteString(`SELECT user_id, date, data FROM day_data WHERE date >= ? AND date <= ?`)
	if len(userIDs) > 0 {
		qb.WriteString(` AND user_id IN (` + storage.Placeholders(len(userIDs)) + `)`)
		for _, id := range userIDs {
			args = append(args, id)
		}
	}
	qb.WriteString(` ORDER BY date, user_id`)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DayRecord
	for rows.Next() {
		var userID, date, data string
		if err := rows.Scan(&userID, &date, &data); err != nil {
			return nil, err
		}
		rec, err := decode(userID, date, data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListUserIDs returns distinct users with stored days.
func (s *SQLStore) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM day_data ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func encode(rec domain.DayRecord) (string, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode day %s: %w", rec.Date, err)
	}
	return string(b), nil
}

// decode trusts the key columns over whatever the blob says.
// Goal lists are not capped here so the cleanup pass sees oversized legacy lists whole.
func decode(userID, date, data string) (domain.DayRecord, error) {
	var rec domain.DayRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return domain.DayRecord{}, fmt.Errorf("decode day %s: %w", date, err)
	}
	rec.UserID = userID
	rec.Date = date
	rec.FillSlots()
	return rec, nil
}

