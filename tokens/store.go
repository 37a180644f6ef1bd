package tokens

import (
	"context"
	"encoding/json"

	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
	"github.com/jrsteele09/swiftchat-web/storage"
	"github.com/rs/zerolog/log"
)

// StorageKey is the key the pair is written under
const StorageKey = "auth_tokens"

// Store persists the token pair. Storage failures are logged and never returned.
type Store struct {
	durable  *storage.Area
	fallback *storage.Area
}

// NewStore creates a store over the durable area and an optional session-scoped fallback
func NewStore(durable, fallback *storage.Area) *Store {
	return &Store{durable: durable, fallback: fallback}
}

// Save writes the pair to every configured area
func (s *Store) Save(ctx context.Context, pair Pair) {
	data, err := json.Marshal(pair)
	if err != nil {
		log.Warn().Err(err).Msg("tokens: encode pair")
		return
	}

	for _, area := range s.areas() {
		if err := area.SetItem(ctx, StorageKey, data); err != nil {
			log.Warn().Err(err).Str("area", area.Namespace()).Msg("tokens: save failed")
		}
	}
}

// Get returns the stored pair, or nil when absent, unreadable or malformed
func (s *Store) Get(ctx context.Context) *Pair {
	for _, area := range s.areas() {
		if pair := read(ctx, area); pair != nil {
			return pair
		}
	}
	return nil
}

// Clear removes the pair from every area. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) {
	for _, area := range s.areas() {
		if err := area.RemoveItem(ctx, StorageKey); err != nil {
			log.Warn().Err(err).Str("area", area.Namespace()).Msg("tokens: clear failed")
		}
	}
}

func (s *Store) areas() []*storage.Area {
	if s == nil {
		return nil
	}
	areas := make([]*storage.Area, 0, 2)
	if s.durable != nil {
		areas = append(areas, s.durable)
	}
	if s.fallback != nil {
		areas = append(areas, s.fallback)
	}
	return areas
}

func read(ctx context.Context, area *storage.Area) *Pair {
	data, err := area.GetItem(ctx, StorageKey)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			log.Warn().Err(err).Str("area", area.Namespace()).Msg("tokens: read failed")
		}
		return nil
	}

	var pair *Pair
	if err := json.Unmarshal(data, &pair); err != nil || !pair.Valid() {
		log.Warn().Err(err).Str("area", area.Namespace()).Msg("tokens: ignoring malformed stored value")
		return nil
	}
	return pair
}
