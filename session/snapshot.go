package session

import (
	"slices"

	"github.com/far7tna/portal/credentials"
)

// Snapshot is the session as derived from the credential store at one instant.
// Loading is true until the store has been read for the first time.
type Snapshot struct {
	User            *credentials.UserProfile
	IsAuthenticated bool
	Roles           []credentials.Role
	Loading         bool
}

func snapshotOf(user *credentials.UserProfile) Snapshot {
	if user == nil {
		return Snapshot{}
	}
	var roles []credentials.Role
	if user.Role.Valid() {
		roles = []credentials.Role{user.Role}
	}
	return Snapshot{
		User:            user,
		IsAuthenticated: true,
		Roles:           roles,
	}
}

// HasRole reports whether the user holds any of roles.
func (s Snapshot) HasRole(roles ...credentials.Role) bool {
	if !s.IsAuthenticated {
		return false
	}
	for _, r := range s.Roles {
		if slices.Contains(roles, r) {
			return true
		}
	}
	return false
}

// Role is the user's role, or "" when unauthenticated.
func (s Snapshot) Role() credentials.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// LandingPath is where a user lands after logging in.
func LandingPath(role credentials.Role) string {
	switch credentials.ParseRole(string(role)) {
	case credentials.RoleAdmin:
		return "/admin/dashboard"
	case credentials.RoleVendor:
		return "/vendor/dashboard"
	default:
		return "/customer/dashboard"
	}
}
