package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned by stores when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// TimeLayout is the TEXT encoding of timestamps. It is fixed width and always
// UTC so that string comparison orders by time.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// Dialect selects placeholder syntax.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// DialectFor maps a database/sql driver name to its Dialect.
func DialectFor(driver string) Dialect {
	if driver == "postgres" {
		return DialectPostgres
	}
	return DialectSQLite
}

// dialecter is implemented by wrappers that know their dialect.
type dialecter interface {
	Dialect() Dialect
}

// DialectOf returns the dialect of db, defaulting to SQLite.
func DialectOf(db SQLDB) Dialect {
	if d, ok := db.(dialecter); ok {
		return d.Dialect()
	}
	return DialectSQLite
}

// Rebind rewrites ? placeholders as $1..$n for postgres.
// Question marks inside single-quoted literals are left alone.
func Rebind(d Dialect, query string) string {
	if d != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Tx is a transaction that rebinds placeholders for its dialect.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

// ExecContext runs query inside the transaction.
func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, Rebind(t.dialect, query), args...)
}

// QueryRowContext runs a single-row query inside the transaction.
func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, Rebind(t.dialect, query), args...)
}

// InTx runs fn in a transaction, committing on nil and rolling back otherwise.
// PRE: fn does not retain tx
// POST: either every statement in fn is committed or none is
func InTx(ctx context.Context, db SQLDB, fn func(tx *Tx) error) error {
	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{tx: sqlTx, dialect: DialectOf(db)}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// NotFound translates sql.ErrNoRows into ErrNotFound wrapped with what.
func NotFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// FormatTime encodes t as TEXT, or nil when t is zero.
func FormatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(TimeLayout)
}

// TimeText encodes t for NOT NULL columns; the zero time becomes "".
func TimeText(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime decodes a TEXT timestamp; empty or invalid values yield the zero time.
func ParseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	for _, layout := range []string{TimeLayout, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s.String); err == nil {
			return t
		}
	}
	return time.Time{}
}

var nowUTC = func() time.Time { return time.Now().UTC() }

// BoolInt encodes a bool as 0/1.
func BoolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Placeholders returns "?, ?, ..." with n entries.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
