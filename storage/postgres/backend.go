// Package postgres is the durable storage backend used when DATABASE_URL is set.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
	"github.com/jrsteele09/swiftchat-web/storage"
)

// DBPool is the subset of *pgxpool.Pool the backend needs
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ storage.Backend = (*Backend)(nil)
	_ storage.Purger  = (*Backend)(nil)
	_ DBPool          = (*pgxpool.Pool)(nil)
)

type Backend struct {
	pool DBPool
}

func NewBackend(pool DBPool) *Backend {
	return &Backend{pool: pool}
}

// Connect opens a pool and verifies it with a ping
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("[postgres Connect] open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.Wrapf(apperrors.ErrStorageUnavailable, "[postgres Connect] ping: %v", err)
	}
	return pool, nil
}

func (b *Backend) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	query := `select value
				from browser_storage
				where namespace = $1 and key = $2`

	var value []byte
	err := b.pool.QueryRow(ctx, query, namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("[postgres Backend.Get] %w", err)
	}
	return value, nil
}

func (b *Backend) Set(ctx context.Context, namespace, key string, value []byte) error {
	query := `insert into browser_storage(namespace, key, value, updated_at)
				values ($1, $2, $3, now())
				on conflict (namespace, key)
				do update set value = excluded.value, updated_at = excluded.updated_at`

	if _, err := b.pool.Exec(ctx, query, namespace, key, value); err != nil {
		return fmt.Errorf("[postgres Backend.Set] %w", err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, namespace, key string) error {
	query := `delete from browser_storage
				where namespace = $1 and key = $2`

	if _, err := b.pool.Exec(ctx, query, namespace, key); err != nil {
		return fmt.Errorf("[postgres Backend.Delete] %w", err)
	}
	return nil
}

func (b *Backend) Purge(ctx context.Context, namespace string) error {
	if _, err := b.pool.Exec(ctx, `delete from browser_storage where namespace = $1`, namespace); err != nil {
		return fmt.Errorf("[postgres Backend.Purge] %w", err)
	}
	return nil
}
