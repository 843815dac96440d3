// Package postgres is the PostgreSQL store adapter, for installations that
// sync the journal to a shared database. Semantics match the sqlite adapter;
// both run the storetest compliance suite.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
)

const uniqueViolation = "23505"

type pgStore struct{ db *sql.DB }

// Open connects via the pgx stdlib driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens the database, bootstraps the schema and returns the store.
func New(ctx context.Context, dsn string) (store.Store, error) {
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &pgStore{db: db}, nil
}

// NewWithDB wires the store onto an existing connection; the caller owns the
// schema.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

func (s *pgStore) Posts() store.Posts           { return &posts{db: s.db} }
func (s *pgStore) Users() store.Users           { return &users{db: s.db} }
func (s *pgStore) Personas() store.Personas     { return &personas{db: s.db} }
func (s *pgStore) MediaItems() store.MediaItems { return &mediaItems{db: s.db} }
func (s *pgStore) Memories() store.Memories     { return &memories{db: s.db} }
func (s *pgStore) Settings() store.Settings     { return &settings{db: s.db} }

func (s *pgStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *pgStore) Close() error                         { return s.db.Close() }

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// utc normalizes a timestamp for storage: UTC at microsecond precision, the
// native resolution of timestamptz, so values round-trip exactly.
func utc(t time.Time) time.Time { return t.UTC().Truncate(time.Microsecond) }

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := utc(*t)
	return &u
}

func now() time.Time { return utc(time.Now()) }

func translateErr(err error, field string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return model.NewConflictError(field, pgErr.Detail)
	}
	return err
}

// placeholders returns "$start,$start+1,..." with n slots.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ",")
}

func toAnys(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func rowsAffected(res sql.Result) int {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}

func exists(ctx context.Context, q querier, table, column, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE `+column+` = $1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func collectIDs(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
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

// dayBounds returns the [start, next) UTC window of the calendar day that
// contains t in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return utc(start), utc(start.AddDate(0, 0, 1))
}

// cond accumulates WHERE fragments with numbered placeholders.
type cond struct {
	frags []string
	args  []any
}

// bind appends the value and returns its placeholder.
func (c *cond) bind(v any) string {
	c.args = append(c.args, v)
	return fmt.Sprintf("$%d", len(c.args))
}

func (c *cond) add(format string, vals ...any) {
	phs := make([]any, len(vals))
	for i, v := range vals {
		phs[i] = c.bind(v)
	}
	c.frags = append(c.frags, fmt.Sprintf(format, phs...))
}

// bindAll binds each value and returns the comma-joined placeholders.
func (c *cond) bindAll(vals []string) string {
	phs := make([]string, len(vals))
	for i, v := range vals {
		phs[i] = c.bind(v)
	}
	return strings.Join(phs, ",")
}

func (c *cond) addRaw(frag string) { c.frags = append(c.frags, frag) }

func (c *cond) where() string {
	if len(c.frags) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.frags, " AND ")
}
