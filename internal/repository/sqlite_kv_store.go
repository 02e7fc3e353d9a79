package repository

import (
	"context"
	"database/sql"
	"errors"
)

// SQLiteKVStore implementa KVStore sobre un archivo SQLite local.
type SQLiteKVStore struct {
	db *sql.DB
}

func NewSQLiteKVStore(db *sql.DB) *SQLiteKVStore {
	return &SQLiteKVStore{db: db}
}

func (r *SQLiteKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `SELECT value FROM kv_store WHERE key = ?`
	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *SQLiteKVStore) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE
		SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query, key, value)
	return err
}
