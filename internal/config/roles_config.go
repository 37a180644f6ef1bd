package config

// RolesConfig exposes the backend's role identifiers. They are opaque and
// deployment specific; an unset identifier is the empty string and never matches.
type RolesConfig interface {
	GetRoleUserID() string
	GetRoleAdminID() string
	GetRoleModeratorID() string
}

type Roles struct{}

var _ RolesConfig = Roles{}

func (Roles) GetRoleUserID() string {
	return GetEnv("ROLE_USER_ID", "")
}

func (Roles) GetRoleAdminID() string {
	return GetEnv("ROLE_ADMIN_ID", "")
}

func (Roles) GetRoleModeratorID() string {
	return GetEnv("ROLE_MODERATOR_ID", "")
}
