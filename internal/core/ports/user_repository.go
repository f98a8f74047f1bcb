package ports

import (
	"context"
	"time"

	"github.com/cineapp/catalog-api/internal/core/domain"
)

// ListUsersFilter carries the query parameters for the owner-only user list.
type ListUsersFilter struct {
	Search string      // optional: partial match on username or email
	Role   domain.Role // optional: exact role filter
	Page   int         // 1-based
	Limit  int
}

// UserUpdate holds the mutable user fields. Nil pointers leave the stored
// value untouched.
type UserUpdate struct {
	Username *string
	Email    *string
	Role     *domain.Role
}

// UserRepository defines persistence for user accounts. All reads exclude
// soft-deleted users.
type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrEmailTaken when the
	// email already exists (case-insensitive).
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// List returns a page of users matching the filter and the total count.
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
	// SoftDelete flags the user as deleted without removing the document.
	SoftDelete(ctx context.Context, id string) error

	// AddProfile / RemoveProfile maintain the user's profile reference list
	// with set semantics ($addToSet / $pull).
	AddProfile(ctx context.Context, userID, profileID string) error
	RemoveProfile(ctx context.Context, userID, profileID string) error

	// SetResetToken stores the one-way hash of a password-reset token with
	// its expiry.
	SetResetToken(ctx context.Context, userID, tokenHash string, expiry time.Time) error
	// ConsumeResetToken atomically matches a live reset token hash, swaps in
	// the new password hash, and clears the token fields. A second call with
	// the same hash finds nothing and returns domain.ErrResetTokenInvalid.
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, newPasswordHash string) (*domain.User, error)
}
