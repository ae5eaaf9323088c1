package content

import (
	"context"
	"database/sql"
	"strings"

	"actiontracker/internal/adapters/storage"
	domain "actiontracker/internal/domain/content"
)

const selectCols = `SELECT id, user_id, avatar_id, kind, platform, headline, body, cta, image_prompt, prompt,
	posted, posted_at, impressions, clicks, leads, sales, created_at FROM generated_content`

// SQLStore implements Store.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new Content store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a Content by its ID.
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Content, error) {
	c, err := scanContent(s.db.QueryRowContext(ctx, selectCols+` WHERE id = ?`, id).Scan)
	return c, storage.NotFound(err, "content "+id)
}

// Save persists a Content.
// PRE: c has been validated
func (s *SQLStore) Save(ctx context.Context, c domain.Content) error {
	var postedAt any
	if c.PostedAt != nil {
		postedAt = storage.FormatTime(*c.PostedAt)
	}
	p := c.Performance
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generated_content (id, user_id, avatar_id, kind, platform, headline, body, cta, image_prompt, prompt,
		   posted, posted_at, impressions, clicks, leads, sales, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   headline=excluded.headline, body=excluded.body, cta=excluded.cta, image_prompt=excluded.image_prompt,
		   posted=excluded.posted, posted_at=excluded.posted_at, impressions=excluded.impressions,
		   clicks=excluded.clicks, leads=excluded.leads, sales=excluded.sales`,
		c.ID, c.UserID, c.AvatarID, c.Kind, c.Platform, c.Headline, c.Body, c.CTA, c.ImagePrompt, c.Prompt,
		storage.BoolInt(c.Posted), postedAt, p.Impressions, p.Clicks, p.Leads, p.Sales, storage.TimeText(c.CreatedAt))
	return err
}

// List retrieves Content based on the filter, newest first.
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Content, error) {
	var where []string
	var args []any
	add := func(clause string, v any) {
		where = append(where, clause)
		args = append(args, v)
	}
	if filter.UserID != "" {
		add(`user_id = ?`, filter.UserID)
	}
	if filter.AvatarID != "" {
		add(`avatar_id = ?`, filter.AvatarID)
	}
	if filter.Kind != "" {
		add(`kind = ?`, filter.Kind)
	}
	if filter.Posted != nil {
		add(`posted = ?`, storage.BoolInt(*filter.Posted))
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

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Content
	for rows.Next() {
		c, err := scanContent(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanContent(scan func(dest ...any) error) (domain.Content, error) {
	var c domain.Content
	var posted int
	var postedAt, createdAt sql.NullString
	err := scan(&c.ID, &c.UserID, &c.AvatarID, &c.Kind, &c.Platform, &c.Headline, &c.Body, &c.CTA,
		&c.ImagePrompt, &c.Prompt, &posted, &postedAt, &c.Performance.Impressions, &c.Performance.Clicks,
		&c.Performance.Leads, &c.Performance.Sales, &createdAt)
	if err != nil {
		return domain.Content{}, err
	}
	c.Posted = posted == 1
	if t := storage.ParseTime(postedAt); !t.IsZero() {
		c.PostedAt = &t
	}
	c.CreatedAt = storage.ParseTime(createdAt)
	return c, nil
}
