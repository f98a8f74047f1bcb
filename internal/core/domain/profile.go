package domain

import "time"

// ProfileType classifies a viewing profile.
type ProfileType string

const (
	ProfileAdult ProfileType = "adult"
	ProfileTeen  ProfileType = "teen"
	ProfileChild ProfileType = "child"
)

// ParseProfileType maps a raw string onto a ProfileType.
func ParseProfileType(s string) (ProfileType, bool) {
	switch ProfileType(s) {
	case ProfileAdult, ProfileTeen, ProfileChild:
		return ProfileType(s), true
	}
	return "", false
}

// ProfileAgeCeilings is the fixed enumeration of per-profile age ceilings:
// 0 = all audiences, 13 = teen, 18 = adult.
var ProfileAgeCeilings = []int{0, 13, 18}

// ValidProfileAgeCeiling reports whether n is one of the allowed ceilings.
func ValidProfileAgeCeiling(n int) bool {
	for _, c := range ProfileAgeCeilings {
		if n == c {
			return true
		}
	}
	return false
}

// DefaultAvatar is assigned when a profile is created without one.
const DefaultAvatar = "/avatars/avatar.jpg"

// Profile is a viewing identity owned by a single user.
//
// Watchlist holds movie IDs as weak references: removing a movie from the
// catalog does not touch watchlists, so entries may dangle. Callers resolving
// watchlist entries must tolerate missing movies.
type Profile struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Type           ProfileType `json:"type"`
	AgeRestriction int         `json:"age_restriction"`
	Avatar         string      `json:"avatar"`
	Watchlist      []string    `json:"watchlist"`
	OwnerID        string      `json:"owner_id"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
