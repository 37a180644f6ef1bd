package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"unicode"
)

// User is the profile record returned by the backend. Fields the frontend
// does not know about are kept in Extra and written back unchanged. An Extra
// key that shares a name with a field above is never stored.
type User struct {
	ID     string         `json:"id"`               // Stable identifier
	Name   string         `json:"name"`             // Display name
	Email  string         `json:"email"`            // Email address
	Roles  []string       `json:"roles,omitempty"`  // Role identifiers, membership-tested
	Avatar string         `json:"avatar,omitempty"` // Avatar URL
	Extra  map[string]any `json:"-"`                // Extension fields
}

var knownFields = []string{"id", "name", "email", "roles", "avatar"}

// HasRole reports whether the user holds roleID. An empty identifier never matches.
func (u *User) HasRole(roleID string) bool {
	if u == nil || roleID == "" {
		return false
	}
	return slices.Contains(u.Roles, roleID)
}

// HasAnyRole reports whether the user holds at least one of roleIDs
func (u *User) HasAnyRole(roleIDs ...string) bool {
	for _, r := range roleIDs {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Extra)+len(knownFields))
	for k, v := range u.Extra {
		out[k] = v
	}
	out["id"] = u.ID
	out["name"] = u.Name
	out["email"] = u.Email
	if u.Roles != nil {
		out["roles"] = u.Roles
	} else {
		delete(out, "roles")
	}
	if u.Avatar != "" {
		out["avatar"] = u.Avatar
	} else {
		delete(out, "avatar")
	}
	return json.Marshal(out)
}

func (u *User) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("user record is null")
	}

	var user User
	if v, ok := raw["id"]; ok {
		id, err := decodeID(v)
		if err != nil {
			return err
		}
		user.ID = id
	}
	if err := decodeOptional(raw, "name", &user.Name); err != nil {
		return err
	}
	if err := decodeOptional(raw, "email", &user.Email); err != nil {
		return err
	}
	if err := decodeOptional(raw, "roles", &user.Roles); err != nil {
		return err
	}
	if err := decodeOptional(raw, "avatar", &user.Avatar); err != nil {
		return err
	}

	for k, v := range raw {
		if slices.Contains(knownFields, k) {
			continue
		}
		var value any
		if err := json.Unmarshal(v, &value); err != nil {
			return err
		}
		if user.Extra == nil {
			user.Extra = make(map[string]any)
		}
		user.Extra[k] = value
	}

	*u = user
	return nil
}

// decodeID accepts both string and numeric identifiers
func decodeID(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	if len(v) > 0 && v[0] == '"' {
		var s string
		err := json.Unmarshal(v, &s)
		return s, err
	}
	if bytes.Equal(v, []byte("null")) {
		return "", nil
	}

	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return "", fmt.Errorf("user id: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}

func decodeOptional(raw map[string]json.RawMessage, key string, dest any) error {
	v, ok := raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(v, dest); err != nil {
		return fmt.Errorf("user %s: %w", key, err)
	}
	return nil
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("Password must be at least 8 characters")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	if !hasUpper || !hasLower || !hasNumber {
		return fmt.Errorf("Password must contain at least one uppercase letter, one lowercase letter, and one number")
	}
	return nil
}
