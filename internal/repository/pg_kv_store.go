package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgKVStore implementa KVStore sobre la tabla kv_store de Postgres.
type PgKVStore struct {
	pool *pgxpool.Pool
}

func NewPgKVStore(pool *pgxpool.Pool) *PgKVStore {
	return &PgKVStore{pool: pool}
}

func (r *PgKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `
		SELECT value
		FROM kv_store
		WHERE key = $1
	`
	var value string
	err := r.pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *PgKVStore) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.pool.Exec(ctx, query, key, value)
	return err
}
