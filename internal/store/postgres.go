package store

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore implements Store on two small tables (kv, kv_counters) created
// by the goose migrations. The counter increment is a single upsert with
// RETURNING, so it is atomic with respect to concurrent terminals.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Incr(ctx context.Context, key string) (int64, error) {
	var value int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO kv_counters (key, value)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET value = kv_counters.value + 1
		RETURNING value
	`, key).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) ResetCounter(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_counters (key, value)
		VALUES ($1, 0)
		ON CONFLICT (key) DO UPDATE SET value = 0
	`, key)
	if err != nil {
		return fmt.Errorf("failed to reset counter %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
