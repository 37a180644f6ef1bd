package users

// Roles holds the externally configured role identifiers. Any of them may be
// empty, in which case that role is never granted.
type Roles struct {
	User      string
	Admin     string
	Moderator string
}

// RoleConfig is satisfied by config.RolesConfig
type RoleConfig interface {
	GetRoleUserID() string
	GetRoleAdminID() string
	GetRoleModeratorID() string
}

func RolesFrom(cfg RoleConfig) Roles {
	return Roles{
		User:      cfg.GetRoleUserID(),
		Admin:     cfg.GetRoleAdminID(),
		Moderator: cfg.GetRoleModeratorID(),
	}
}
