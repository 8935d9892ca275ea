package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fdg312/fitplanner/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage is a storage.KVStore over the kv_blobs table.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// New connects and pings the database. The kv_blobs table is created by
// the goose migrations (cmd/migrate or RUN_MIGRATIONS_ON_STARTUP).
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{pool: pool}, nil
}

func (p *PostgresStorage) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM kv_blobs WHERE key = $1`

	var value []byte
	err := p.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}

	return value, nil
}

func (p *PostgresStorage) Set(ctx context.Context, key string, value []byte) error {
	const query = `
		INSERT INTO kv_blobs (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`

	if _, err := p.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStorage) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_blobs WHERE key = $1`

	if _, err := p.pool.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}
