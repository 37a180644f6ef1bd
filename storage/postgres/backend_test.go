package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
	"github.com/jrsteele09/swiftchat-web/storage/postgres"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	value []byte
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.value
	return nil
}

type execCall struct {
	sql  string
	args []any
}

type fakePool struct {
	row     fakeRow
	execErr error
	execs   []execCall
	queries []execCall
}

func (p *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.execs = append(p.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("OK"), p.execErr
}

func (p *fakePool) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.queries = append(p.queries, execCall{sql: sql, args: args})
	return p.row
}

func TestBackend_GetNotFound(t *testing.T) {
	pool := &fakePool{row: fakeRow{err: pgx.ErrNoRows}}
	b := postgres.NewBackend(pool)

	_, err := b.Get(context.Background(), "ns", "auth_tokens")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Equal(t, []any{"ns", "auth_tokens"}, pool.queries[0].args)
}

func TestBackend_GetValue(t *testing.T) {
	pool := &fakePool{row: fakeRow{value: []byte("v")}}
	b := postgres.NewBackend(pool)

	v, err := b.Get(context.Background(), "ns", "k")
	require.NoError(t, err)
	require.Equal(t, "v", string(v))
}

func TestBackend_GetError(t *testing.T) {
	boom := errors.New("connection reset")
	b := postgres.NewBackend(&fakePool{row: fakeRow{err: boom}})

	_, err := b.Get(context.Background(), "ns", "k")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBackend_SetDeletePurge(t *testing.T) {
	pool := &fakePool{}
	b := postgres.NewBackend(pool)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "ns", "k", []byte("v")))
	require.NoError(t, b.Delete(ctx, "ns", "k"))
	require.NoError(t, b.Purge(ctx, "ns"))

	require.Len(t, pool.execs, 3)
	require.Contains(t, pool.execs[0].sql, "on conflict (namespace, key)")
	require.Equal(t, []any{"ns", "k", []byte("v")}, pool.execs[0].args)
	require.Equal(t, []any{"ns", "k"}, pool.execs[1].args)
	require.Equal(t, []any{"ns"}, pool.execs[2].args)
}

func TestBackend_ExecError(t *testing.T) {
	boom := errors.New("read only")
	b := postgres.NewBackend(&fakePool{execErr: boom})

	require.ErrorIs(t, b.Set(context.Background(), "ns", "k", nil), boom)
	require.ErrorIs(t, b.Delete(context.Background(), "ns", "k"), boom)
}
