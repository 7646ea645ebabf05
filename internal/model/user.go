package model

// Identity is the authenticated caller as supplied by the identity
// provider: an opaque user id and a role.
type Identity struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Roles.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:  2,
		RoleMember: 1,
	}
	return levels[role] >= levels[minimum] && levels[minimum] > 0
}

// IsAdmin is the single capability predicate for admin-only operations.
func (id Identity) IsAdmin() bool {
	return id.UserID != "" && RoleAtLeast(id.Role, RoleAdmin)
}

// Anonymous reports whether the identity carries no user.
func (id Identity) Anonymous() bool {
	return id.UserID == ""
}
