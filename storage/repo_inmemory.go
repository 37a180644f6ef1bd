package storage

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
)

var (
	_ Backend = (*InMemoryBackend)(nil)
	_ Purger  = (*InMemoryBackend)(nil)
)

// InMemoryBackend is a thread-safe in-memory Backend
type InMemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]map[string][]byte // namespace -> key -> value
}

// NewInMemoryBackend creates a new in-memory storage backend
func NewInMemoryBackend() *InMemoryBackend {
	return &InMemoryBackend{
		entries: make(map[string]map[string][]byte),
	}
}

// Set creates or replaces a value
func (b *InMemoryBackend) Set(_ context.Context, namespace, key string, value []byte) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	if key == "" {
		return fmt.Errorf("key is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[namespace]; !ok {
		b.entries[namespace] = make(map[string][]byte)
	}

	// Copy so callers cannot mutate what is stored
	b.entries[namespace][key] = append([]byte(nil), value...)
	return nil
}

// Get retrieves a value by namespace and key
func (b *InMemoryBackend) Get(_ context.Context, namespace, key string) ([]byte, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace is required")
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.entries[namespace][key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	return append([]byte(nil), value...), nil
}

// Delete removes a value
func (b *InMemoryBackend) Delete(_ context.Context, namespace, key string) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	values, ok := b.entries[namespace]
	if !ok {
		return nil // Already doesn't exist, no error
	}

	delete(values, key)

	// Clean up empty namespace map
	if len(values) == 0 {
		delete(b.entries, namespace)
	}

	return nil
}

// Purge drops every value of a browser context
func (b *InMemoryBackend) Purge(_ context.Context, namespace string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, namespace)
	return nil
}

// Len returns the number of browser contexts holding at least one value
func (b *InMemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
