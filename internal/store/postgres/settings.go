package postgres

import (
	"context"
	"database/sql"
)

type settings struct{ db *sql.DB }

func (r *settings) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = $1`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (r *settings) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO app_settings (key, value) VALUES ($1,$2)
        ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (r *settings) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM app_settings WHERE key = $1`, key)
	return err
}
