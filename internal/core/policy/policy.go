// Package policy holds the pure access-control decisions. It has no I/O:
// handlers and services call into it with data they already hold.
package policy

import "github.com/cineapp/catalog-api/internal/core/domain"

// Authorize decides whether a caller may perform an operation.
//
// The caller is allowed when its role is in the required set. For
// self-scoped resources (targetOwnerID non-empty), the caller is also
// allowed when it owns the target, regardless of the role list. A role
// outside the closed set is always denied.
func Authorize(callerRole domain.Role, callerID, targetOwnerID string, required ...domain.Role) bool {
	if !callerRole.Valid() {
		return false
	}
	if targetOwnerID != "" && callerID == targetOwnerID {
		return true
	}
	for _, r := range required {
		if callerRole == r {
			return true
		}
	}
	return false
}

// ChildRestricted reports whether catalog results for the profile must be
// constrained to child-safe movies.
func ChildRestricted(p *domain.Profile) bool {
	return p != nil && p.Type == domain.ProfileChild
}

// VisibleToProfile reports whether a single movie may be shown through the
// given profile. Non-child profiles see everything.
func VisibleToProfile(m *domain.Movie, p *domain.Profile) bool {
	if !ChildRestricted(p) {
		return true
	}
	return m.Classification == domain.ClassATP || m.AgeRestriction <= domain.ChildAgeCeiling
}
