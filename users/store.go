package users

import (
	"context"
	"encoding/json"
	"reflect"

	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
	"github.com/jrsteele09/swiftchat-web/storage"
	"github.com/rs/zerolog/log"
)

// StorageKey is the key the user record is written under
const StorageKey = "user_data"

// Store caches the last known user record. Like the token store it never
// returns storage errors; they are logged and treated as absence.
type Store struct {
	durable  *storage.Area
	fallback *storage.Area
	roles    Roles
}

func NewStore(durable, fallback *storage.Area, roles Roles) *Store {
	return &Store{durable: durable, fallback: fallback, roles: roles}
}

func (s *Store) Roles() Roles {
	return s.roles
}

func (s *Store) Save(ctx context.Context, user *User) {
	if user == nil {
		s.Clear(ctx)
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		log.Warn().Err(err).Msg("users: encode user")
		return
	}

	// The caller's record is brought into the form a later Get returns:
	// numbers decode as float64, empty Extra maps as nil, and Extra keys
	// that shadow a named field are dropped.
	var normalised User
	if err := json.Unmarshal(data, &normalised); err != nil {
		log.Warn().Err(err).Msg("users: normalise user")
		return
	}
	if !reflect.DeepEqual(*user, normalised) {
		*user = normalised
	}

	for _, area := range s.areas() {
		if err := area.SetItem(ctx, StorageKey, data); err != nil {
			log.Warn().Err(err).Str("area", area.Namespace()).Msg("users: save failed")
		}
	}
}

func (s *Store) Get(ctx context.Context) *User {
	for _, area := range s.areas() {
		data, err := area.GetItem(ctx, StorageKey)
		if err != nil {
			if !apperrors.Is(err, apperrors.ErrNotFound) {
				log.Warn().Err(err).Str("area", area.Namespace()).Msg("users: read failed")
			}
			continue
		}

		var user *User
		if err := json.Unmarshal(data, &user); err != nil || user == nil {
			log.Warn().Err(err).Str("area", area.Namespace()).Msg("users: ignoring malformed stored value")
			continue
		}
		return user
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) {
	for _, area := range s.areas() {
		if err := area.RemoveItem(ctx, StorageKey); err != nil {
			log.Warn().Err(err).Str("area", area.Namespace()).Msg("users: clear failed")
		}
	}
}

// HasRole reports whether the cached user holds roleID
func (s *Store) HasRole(ctx context.Context, roleID string) bool {
	if roleID == "" {
		return false
	}
	return s.Get(ctx).HasRole(roleID)
}

func (s *Store) IsAdmin(ctx context.Context) bool {
	return s.HasRole(ctx, s.roles.Admin)
}

func (s *Store) IsModerator(ctx context.Context) bool {
	return s.HasRole(ctx, s.roles.Moderator)
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
