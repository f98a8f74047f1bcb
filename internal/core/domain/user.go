package domain

import "time"

// Role is the closed set of account roles. Anything outside the three
// constants is unknown and denied by the access policy.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleStandard Role = "standard"
	RoleChild    Role = "child"
)

// ParseRole maps a raw string onto a Role. The second return value is false
// for anything outside the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOwner, RoleStandard, RoleChild:
		return Role(s), true
	}
	return "", false
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// User models an account holder. Email is stored lowercased and is unique
// across accounts. PasswordHash and the reset-token fields never leave the
// server. Deleting a user is a soft delete: the document stays in place with
// IsDeleted set, and reads filter it out.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Role             Role      `json:"role"`
	Profiles         []string  `json:"profiles"`
	ResetTokenHash   string    `json:"-"`
	ResetTokenExpiry time.Time `json:"-"`
	IsDeleted        bool      `json:"-"`
	DeletedAt        time.Time `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
