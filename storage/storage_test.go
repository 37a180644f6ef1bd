package storage_test

import (
	"context"
	"testing"

	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
	"github.com/jrsteele09/swiftchat-web/storage"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBackend_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	b := storage.NewInMemoryBackend()

	_, err := b.Get(ctx, "browser-1", "auth_tokens")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, b.Set(ctx, "browser-1", "auth_tokens", []byte(`{"accessToken":"a"}`)))
	value, err := b.Get(ctx, "browser-1", "auth_tokens")
	require.NoError(t, err)
	require.JSONEq(t, `{"accessToken":"a"}`, string(value))

	// Namespaces are isolated
	_, err = b.Get(ctx, "browser-2", "auth_tokens")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, b.Delete(ctx, "browser-1", "auth_tokens"))
	require.NoError(t, b.Delete(ctx, "browser-1", "auth_tokens"))
	_, err = b.Get(ctx, "browser-1", "auth_tokens")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Equal(t, 0, b.Len())
}

func TestInMemoryBackend_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	b := storage.NewInMemoryBackend()

	in := []byte("abc")
	require.NoError(t, b.Set(ctx, "ns", "k", in))
	in[0] = 'z'

	out, err := b.Get(ctx, "ns", "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(out))

	out[1] = 'z'
	again, err := b.Get(ctx, "ns", "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(again))
}

func TestInMemoryBackend_RequiresNamespaceAndKey(t *testing.T) {
	ctx := context.Background()
	b := storage.NewInMemoryBackend()

	require.Error(t, b.Set(ctx, "", "k", nil))
	require.Error(t, b.Set(ctx, "ns", "", nil))
	_, err := b.Get(ctx, "", "k")
	require.Error(t, err)
}

func TestInMemoryBackend_Purge(t *testing.T) {
	ctx := context.Background()
	b := storage.NewInMemoryBackend()

	require.NoError(t, b.Set(ctx, "ns", "a", []byte("1")))
	require.NoError(t, b.Set(ctx, "ns", "b", []byte("2")))
	require.NoError(t, b.Set(ctx, "other", "a", []byte("3")))

	require.NoError(t, b.Purge(ctx, "ns"))
	_, err := b.Get(ctx, "ns", "a")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = b.Get(ctx, "other", "a")
	require.NoError(t, err)
}

func TestArea(t *testing.T) {
	ctx := context.Background()
	area := storage.NewArea(storage.NewInMemoryBackend(), "browser-1")
	require.Equal(t, "browser-1", area.Namespace())

	require.NoError(t, area.SetItem(ctx, "user_data", []byte(`{}`)))
	v, err := area.GetItem(ctx, "user_data")
	require.NoError(t, err)
	require.Equal(t, "{}", string(v))
	require.NoError(t, area.RemoveItem(ctx, "user_data"))
	_, err = area.GetItem(ctx, "user_data")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestArea_NilIsUnavailable(t *testing.T) {
	ctx := context.Background()
	area := storage.NewArea(nil, "browser-1")
	require.Nil(t, area)

	_, err := area.GetItem(ctx, "k")
	require.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	require.ErrorIs(t, area.SetItem(ctx, "k", nil), apperrors.ErrStorageUnavailable)
	require.ErrorIs(t, area.RemoveItem(ctx, "k"), apperrors.ErrStorageUnavailable)
}

func TestSealedBackend(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewInMemoryBackend()

	_, err := storage.NewSealedBackend(inner, "short")
	require.ErrorIs(t, err, apperrors.ErrInvalidSealKey)

	sealed, err := storage.NewSealedBackend(inner, "0123456789abcdef-secret")
	require.NoError(t, err)

	require.NoError(t, sealed.Set(ctx, "ns", "auth_tokens", []byte("plaintext-token")))

	raw, err := inner.Get(ctx, "ns", "auth_tokens")
	require.NoError(t, err)
	require.NotContains(t, string(raw), "plaintext-token")

	opened, err := sealed.Get(ctx, "ns", "auth_tokens")
	require.NoError(t, err)
	require.Equal(t, "plaintext-token", string(opened))

	// A different key cannot open the value
	other, err := storage.NewSealedBackend(inner, "another-secret-of-16")
	require.NoError(t, err)
	_, err = other.Get(ctx, "ns", "auth_tokens")
	require.ErrorIs(t, err, apperrors.ErrCorruptValue)

	require.NoError(t, inner.Set(ctx, "ns", "short", []byte("x")))
	_, err = sealed.Get(ctx, "ns", "short")
	require.ErrorIs(t, err, apperrors.ErrCorruptValue)

	_, err = sealed.Get(ctx, "ns", "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, sealed.Purge(ctx, "ns"))
	require.Equal(t, 0, inner.Len())
}
