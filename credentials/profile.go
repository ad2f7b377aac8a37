package credentials

import (
	"strings"
)

// Role is the single marketplace role a user holds.
type Role string

const (
	RoleCustomer Role = "Customer"
	RoleVendor   Role = "Vendor"
	RoleAdmin    Role = "Admin"
)

// Roles lists every known role.
var Roles = []Role{RoleCustomer, RoleVendor, RoleAdmin}

// ParseRole matches case-insensitively. Unknown values return the empty role.
func ParseRole(s string) Role {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r
		}
	}
	return ""
}

func (r Role) Valid() bool {
	return ParseRole(string(r)) != ""
}

func (r Role) String() string {
	return string(r)
}

// UnmarshalText normalises the casing the API sends.
func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}

type UserProfile struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Credentials is the persisted result of a login or a token refresh.
type Credentials struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         UserProfile `json:"user"`
}

// Complete reports whether both tokens and the user are present.
func (c Credentials) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != "" && c.User.ID != ""
}
