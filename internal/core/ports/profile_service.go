package ports

import (
	"context"

	"github.com/cineapp/catalog-api/internal/core/domain"
)

// CreateProfileInput carries the data for a new viewing profile. The caller
// becomes the owner.
type CreateProfileInput struct {
	Name           string
	Type           string
	AgeRestriction int
	Avatar         string
}

// UpdateProfileInput mirrors ProfileUpdate at the use-case boundary.
type UpdateProfileInput struct {
	Name           *string
	Type           *string
	AgeRestriction *int
	Avatar         *string
}

// Watchlist toggle outcomes.
const (
	WatchlistAdded   = "added"
	WatchlistRemoved = "removed"
)

// WatchlistResult reports which way a toggle went and the resulting list.
type WatchlistResult struct {
	Action    string
	Watchlist []string
}

// ProfileService defines profile management use cases.
type ProfileService interface {
	Create(ctx context.Context, caller Caller, input CreateProfileInput) (*domain.Profile, error)
	ListOwn(ctx context.Context, caller Caller) ([]*domain.Profile, error)
	Get(ctx context.Context, caller Caller, id string) (*domain.Profile, error)
	Update(ctx context.Context, caller Caller, id string, input UpdateProfileInput) (*domain.Profile, error)
	// Delete removes the profile and drops the owning user's reference.
	Delete(ctx context.Context, caller Caller, id string) error
	// ToggleWatchlist flips membership of movieID in the profile watchlist.
	// The movie is not checked for existence: watchlist entries are weak
	// references by contract.
	ToggleWatchlist(ctx context.Context, caller Caller, profileID, movieID string) (*WatchlistResult, error)
}
