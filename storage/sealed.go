package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var _ Backend = (*SealedBackend)(nil)

// SealedBackend encrypts values with NaCl secretbox before handing them to
// the wrapped backend. Values that fail to open report errors.ErrCorruptValue.
type SealedBackend struct {
	next Backend
	key  [32]byte
}

// NewSealedBackend derives the box key from secret with SHA-256
func NewSealedBackend(next Backend, secret string) (*SealedBackend, error) {
	if next == nil {
		return nil, fmt.Errorf("[storage NewSealedBackend] backend is required")
	}
	if len(secret) < 16 {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidSealKey, "[storage NewSealedBackend] secret must be at least 16 characters")
	}
	return &SealedBackend{next: next, key: sha256.Sum256([]byte(secret))}, nil
}

func (s *SealedBackend) Set(ctx context.Context, namespace, key string, value []byte) error {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("[storage SealedBackend.Set] nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], value, &nonce, &s.key)
	return s.next.Set(ctx, namespace, key, sealed)
}

func (s *SealedBackend) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	sealed, err := s.next.Get(ctx, namespace, key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, apperrors.ErrCorruptValue
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	opened, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, apperrors.ErrCorruptValue
	}
	return opened, nil
}

func (s *SealedBackend) Delete(ctx context.Context, namespace, key string) error {
	return s.next.Delete(ctx, namespace, key)
}

func (s *SealedBackend) Purge(ctx context.Context, namespace string) error {
	if p, ok := s.next.(Purger); ok {
		return p.Purge(ctx, namespace)
	}
	return apperrors.ErrUnsupported
}
