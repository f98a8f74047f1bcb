package ports

import (
	"context"

	"github.com/cineapp/catalog-api/internal/core/domain"
)

// CatalogFilter carries all criteria for listing movies. Zero values impose
// no constraint; provided criteria combine with AND semantics.
type CatalogFilter struct {
	Title          string                // partial match, case-insensitive
	Genre          string                // partial match, case-insensitive
	Year           int                   // exact release year
	Classification domain.Classification // exact match
	MinRating      *float64              // inclusive
	MaxRating      *float64              // inclusive
	FromYear       *int                  // inclusive
	ToYear         *int                  // inclusive
	AddedBy        string                // scope to a single user's movies
	// ChildSafe intersects the filter with the child visibility rule:
	// classification ATP or age restriction at most domain.ChildAgeCeiling.
	ChildSafe bool
	Page      int // 1-based
	Limit     int
}

// MovieUpdate holds the mutable movie fields. Nil pointers leave the stored
// value untouched. AgeRestriction is derived from Classification by the
// service and is never updatable on its own.
type MovieUpdate struct {
	Title              *string
	Genre              []string
	Director           *string
	Cast               []string
	ReleaseYear        *int
	Duration           *int
	Rating             *float64
	Classification     *domain.Classification
	Synopsis           *string
	PosterURL          *string
	TrailerURL         *string
	StreamURL          *string
	DownloadURL        *string
	Language           *string
	Subtitles          []string
	AvailableLanguages []string
}

// MovieRepository defines persistence for catalog entries. Movies are hard
// deleted; watchlist references are not cleaned up (weak references).
type MovieRepository interface {
	Create(ctx context.Context, m *domain.Movie) (*domain.Movie, error)
	FindByID(ctx context.Context, id string) (*domain.Movie, error)
	// List returns a page sorted by creation time descending plus the total
	// count of matches.
	List(ctx context.Context, filter CatalogFilter) ([]*domain.Movie, int64, error)
	Update(ctx context.Context, id string, upd MovieUpdate, ageRestriction *int) (*domain.Movie, error)
	Delete(ctx context.Context, id string) error
	DeleteByTitle(ctx context.Context, title string) error
	// SearchByField performs a case-insensitive substring match on a single
	// named field. The service layer enforces the field allow-list.
	SearchByField(ctx context.Context, field, value string) ([]*domain.Movie, error)
	// StatsByUser aggregates the caller's own movies for the dashboard.
	StatsByUser(ctx context.Context, userID string) (count int64, avgDuration, avgRating float64, err error)
	// UsageStats aggregates the whole catalog for the owner usage report:
	// total movie count plus per-genre counts sorted by count descending.
	UsageStats(ctx context.Context) (total int64, byGenre []GenreCount, err error)
}

// GenreCount is one row of the per-genre breakdown in the usage report.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int64  `json:"count"`
}
