// Package sqlite is the primary store adapter: a device-local, transactional
// SQLite database via the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
)

type sqliteStore struct{ db *sql.DB }

// New opens the database file, bootstraps the schema and returns the store.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

// NewWithDB wires the store onto an existing connection. The caller is
// responsible for the schema (tests use EnsureSchema directly).
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

func (s *sqliteStore) Posts() store.Posts           { return &posts{db: s.db} }
func (s *sqliteStore) Users() store.Users           { return &users{db: s.db} }
func (s *sqliteStore) Personas() store.Personas     { return &personas{db: s.db} }
func (s *sqliteStore) MediaItems() store.MediaItems { return &mediaItems{db: s.db} }
func (s *sqliteStore) Memories() store.Memories     { return &memories{db: s.db} }
func (s *sqliteStore) Settings() store.Settings     { return &settings{db: s.db} }

func (s *sqliteStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *sqliteStore) Close() error                         { return s.db.Close() }

// querier is satisfied by *sql.DB and *sql.Tx so helpers run inside or
// outside transactions.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Timestamps are stored as unix microseconds (INTEGER columns): integer
// comparison is exact, index-friendly, and immune to text-format drift.
// utc normalizes a model timestamp to the stored precision.
func utc(t time.Time) time.Time { return t.UTC().Truncate(time.Microsecond) }

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := utc(*t)
	return &u
}

// now is the single write-side clock.
func now() time.Time { return utc(time.Now()) }

func micros(t time.Time) int64 { return t.UTC().UnixMicro() }

func microsPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := micros(*t)
	return &v
}

func fromMicros(v int64) time.Time { return time.UnixMicro(v).UTC() }

func fromMicrosPtr(v *int64) *time.Time {
	if v == nil {
		return nil
	}
	t := fromMicros(*v)
	return &t
}

// translateErr maps driver unique-constraint failures onto the model's
// conflict error; everything else propagates unchanged.
func translateErr(err error, field string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return model.NewConflictError(field, err.Error())
	}
	return err
}

// placeholders returns "?,?,..." with n slots.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
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

// exists reports whether the given id is present in table/column.
func exists(ctx context.Context, q querier, table, column, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE `+column+` = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// dayBounds returns the [start, next) window, in stored microseconds, of the
// calendar day that contains t in t's location.
func dayBounds(t time.Time) (int64, int64) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return micros(start), micros(start.AddDate(0, 0, 1))
}
