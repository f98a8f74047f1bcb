package ports

import (
	"context"

	"github.com/cineapp/catalog-api/internal/core/domain"
)

// ProfileUpdate holds the mutable profile fields. Nil pointers leave the
// stored value untouched.
type ProfileUpdate struct {
	Name           *string
	Type           *domain.ProfileType
	AgeRestriction *int
	Avatar         *string
}

// ProfileRepository defines persistence for viewing profiles.
//
// The watchlist operations are single-document conditional updates so that
// concurrent toggles cannot lose entries: membership is changed with
// $addToSet / $pull rather than read-modify-write.
type ProfileRepository interface {
	Create(ctx context.Context, p *domain.Profile) (*domain.Profile, error)
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*domain.Profile, error)
	Update(ctx context.Context, id string, upd ProfileUpdate) (*domain.Profile, error)
	// Delete removes the profile and returns it, so the caller can drop the
	// owning user's back-reference.
	Delete(ctx context.Context, id string) (*domain.Profile, error)

	// AddToWatchlist inserts movieID with set semantics. added is false when
	// the movie was already present.
	AddToWatchlist(ctx context.Context, profileID, movieID string) (added bool, err error)
	// RemoveFromWatchlist pulls movieID. removed is false when the movie was
	// not present.
	RemoveFromWatchlist(ctx context.Context, profileID, movieID string) (removed bool, err error)

	// WatchlistTotal sums watchlist sizes across every profile. Dangling
	// movie references still count; the report measures saves, not catalog
	// membership.
	WatchlistTotal(ctx context.Context) (int64, error)
}
