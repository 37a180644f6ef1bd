// Package storage is the server-side stand-in for browser storage: small
// key/value areas partitioned by browser context.
package storage

import (
	"context"

	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
)

// Backend persists values for many browser contexts. Get returns
// errors.ErrNotFound when the key has never been set or was removed.
type Backend interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
}

// Purger is implemented by backends that can drop a whole browser context at once.
type Purger interface {
	Purge(ctx context.Context, namespace string) error
}

// Area is the storage of a single browser context, the equivalent of one
// window.localStorage. A nil Area behaves as disabled storage.
type Area struct {
	backend   Backend
	namespace string
}

func NewArea(backend Backend, namespace string) *Area {
	if backend == nil {
		return nil
	}
	return &Area{backend: backend, namespace: namespace}
}

func (a *Area) Namespace() string {
	if a == nil {
		return ""
	}
	return a.namespace
}

func (a *Area) GetItem(ctx context.Context, key string) ([]byte, error) {
	if a == nil {
		return nil, apperrors.ErrStorageUnavailable
	}
	return a.backend.Get(ctx, a.namespace, key)
}

func (a *Area) SetItem(ctx context.Context, key string, value []byte) error {
	if a == nil {
		return apperrors.ErrStorageUnavailable
	}
	return a.backend.Set(ctx, a.namespace, key, value)
}

// RemoveItem deletes key; removing a missing key is not an error.
func (a *Area) RemoveItem(ctx context.Context, key string) error {
	if a == nil {
		return apperrors.ErrStorageUnavailable
	}
	return a.backend.Delete(ctx, a.namespace, key)
}
