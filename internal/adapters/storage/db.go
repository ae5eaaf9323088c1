package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open opens and pings a database for driver ("sqlite" or "postgres").
// PRE: dsn is valid for driver
// POST: returned *sql.DB is reachable and pool limits are applied
func Open(ctx context.Context, driver, dsn string, maxOpen int) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations must only ever be appended to.
var migrations = []migration{
	{1, "accounts", []string{
		`CREATE TABLE IF NOT EXISTS account (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			company_id TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			failed_logins INTEGER NOT NULL DEFAULT 0,
			locked_until TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_account_company ON account (company_id)`,
	}},
	{2, "day_data", []string{
		`CREATE TABLE IF NOT EXISTS day_data (
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (user_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_day_data_date ON day_data (date)`,
	}},
	{3, "transactions", []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			client_name TEXT NOT NULL,
			date TEXT NOT NULL,
			amount_cents BIGINT NOT NULL,
			product TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			ghl_opportunity_id TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions (user_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_ghl ON transactions (user_id, ghl_opportunity_id)`,
	}},
	{4, "hot_leads", []string{
		`CREATE TABLE IF NOT EXISTS hot_lead (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			step INTEGER NOT NULL DEFAULT 0,
			next_follow_up TEXT NOT NULL DEFAULT '',
			last_contacted_at TEXT,
			status TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			ghl_contact_id TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hot_lead_due ON hot_lead (user_id, status, next_follow_up)`,
		`CREATE INDEX IF NOT EXISTS idx_hot_lead_ghl ON hot_lead (user_id, ghl_contact_id)`,
	}},
	{5, "dream_client_studio", []string{
		`CREATE TABLE IF NOT EXISTS buyer_avatar (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			demographics TEXT NOT NULL DEFAULT '',
			pain_points TEXT NOT NULL DEFAULT '',
			desires TEXT NOT NULL DEFAULT '',
			objections TEXT NOT NULL DEFAULT '',
			watering_holes TEXT NOT NULL DEFAULT '',
			offer TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_buyer_avatar_user ON buyer_avatar (user_id)`,
		`CREATE TABLE IF NOT EXISTS generated_content (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			avatar_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			platform TEXT NOT NULL DEFAULT '',
			headline TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL,
			cta TEXT NOT NULL DEFAULT '',
			image_prompt TEXT NOT NULL DEFAULT '',
			prompt TEXT NOT NULL DEFAULT '',
			posted INTEGER NOT NULL DEFAULT 0,
			posted_at TEXT,
			impressions INTEGER NOT NULL DEFAULT 0,
			clicks INTEGER NOT NULL DEFAULT 0,
			leads INTEGER NOT NULL DEFAULT 0,
			sales INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generated_content_user ON generated_content (user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS user_subscription (
			user_id TEXT PRIMARY KEY,
			plan TEXT NOT NULL,
			generations_used INTEGER NOT NULL DEFAULT 0,
			period_start TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}},
	{6, "outbox", []string{
		`CREATE TABLE IF NOT EXISTS outbox (
			id TEXT PRIMARY KEY,
			action_type TEXT NOT NULL,
			payload TEXT NOT NULL,
			status TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			max_attempts INTEGER NOT NULL DEFAULT 5,
			last_attempted_at TEXT,
			next_attempt_at TEXT,
			created_at TEXT NOT NULL,
			external_id TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT '',
			dedup_key TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox (status, next_attempt_at)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_outbox_dedup ON outbox (dedup_key)`,
	}},
	{7, "day_event_index", []string{
		`CREATE TABLE IF NOT EXISTS day_event (
			user_id TEXT NOT NULL,
			ghl_event_id TEXT NOT NULL,
			date TEXT NOT NULL,
			PRIMARY KEY (user_id, ghl_event_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_day_event_date ON day_event (user_id, date)`,
	}},
}

// LatestSchemaVersion returns the version the newest migration brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Migrate applies every migration newer than the recorded schema version.
// PRE: db is reachable
// POST: schema_version holds LatestSchemaVersion(); each migration is applied in its own transaction
func Migrate(ctx context.Context, db SQLDB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := InTx(ctx, db, func(tx *Tx) error {
			for _, stmt := range m.stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)`,
				m.version, m.name, FormatTime(nowUTC()))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		slog.Info("migration_applied", "version", m.version, "name", m.name)
	}
	return nil
}

// SchemaVersion returns the highest applied migration, or 0 for a fresh database.
func SchemaVersion(ctx context.Context, db SQLDB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}
