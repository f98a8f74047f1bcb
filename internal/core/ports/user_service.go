package ports

import (
	"context"

	"github.com/cineapp/catalog-api/internal/core/domain"
)

// UpdateUserInput holds the user fields a caller may change. Role changes
// are applied only when the caller is an owner.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Role     *string
}

// ListUsersInput carries the parameters for the owner-only user list.
type ListUsersInput struct {
	Search string
	Role   string
	Page   int
	Limit  int
}

// UserPage is one page of users plus pagination metadata.
type UserPage struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService defines account management use cases. Reads and updates are
// allowed for owners or the account holder; list and delete are owner-only.
type UserService interface {
	Get(ctx context.Context, caller Caller, id string) (*domain.User, error)
	Update(ctx context.Context, caller Caller, id string, input UpdateUserInput) (*domain.User, error)
	// Delete soft-deletes the account.
	Delete(ctx context.Context, caller Caller, id string) error
	List(ctx context.Context, caller Caller, input ListUsersInput) (*UserPage, error)
}
