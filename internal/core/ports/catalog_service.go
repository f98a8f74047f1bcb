package ports

import (
	"context"

	"github.com/cineapp/catalog-api/internal/core/domain"
)

// Default page sizes for catalog listings.
const (
	DefaultPageLimit   = 10
	DashboardPageLimit = 5
)

// ListMoviesInput carries caller-supplied catalog criteria. All fields are
// optional strings as they arrive from the query string; the service parses
// and validates them.
type ListMoviesInput struct {
	Title          string
	Genre          string
	Year           int
	Classification string
	MinRating      *float64
	MaxRating      *float64
	FromYear       *int
	ToYear         *int
	Page           int
	Limit          int
}

// MoviePage is one page of catalog results.
type MoviePage struct {
	Items      []*domain.Movie
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// DashboardTotals summarizes the caller's own catalog entries.
type DashboardTotals struct {
	TotalMovies int64
	AvgDuration float64
	AvgRating   float64
}

// DashboardResult is the paginated own-movies view plus summary figures.
type DashboardResult struct {
	MoviePage
	Totals DashboardTotals
}

// UsageReport is the owner-only service-wide summary: catalog size, how often
// movies are saved to watchlists, and the per-genre breakdown.
type UsageReport struct {
	TotalMovies      int64        `json:"total_movies"`
	TotalWatchlisted int64        `json:"total_watchlisted"`
	ByGenre          []GenreCount `json:"by_genre"`
}

// MovieInput carries the data for a new catalog entry. AgeRestriction is
// derived from Classification.
type MovieInput struct {
	Title              string
	Genre              []string
	Director           string
	Cast               []string
	ReleaseYear        int
	Duration           int
	Rating             float64
	Classification     string
	Synopsis           string
	PosterURL          string
	TrailerURL         string
	StreamURL          string
	DownloadURL        string
	Language           string
	Subtitles          []string
	AvailableLanguages []string
}

// CatalogService defines the catalog use cases: public listing and reads,
// profile-scoped listing with the child visibility rule, attribute search
// over an enumerated field set, the owner dashboard, and role-gated writes.
type CatalogService interface {
	List(ctx context.Context, input ListMoviesInput) (*MoviePage, error)
	Get(ctx context.Context, id string) (*domain.Movie, error)
	// ListForProfile intersects the caller's criteria with the profile's
	// visibility ceiling. It never widens the caller's filters.
	ListForProfile(ctx context.Context, profileID string, input ListMoviesInput) (*MoviePage, error)
	// Search matches value as a case-insensitive substring of one named
	// field. Fields outside the allow-list fail with
	// domain.ErrSearchFieldNotAllowed.
	Search(ctx context.Context, field, value string) ([]*domain.Movie, error)
	Dashboard(ctx context.Context, caller Caller, page, limit int) (*DashboardResult, error)
	// UsageReport is restricted to owners.
	UsageReport(ctx context.Context, caller Caller) (*UsageReport, error)
	Create(ctx context.Context, caller Caller, input MovieInput) (*domain.Movie, error)
	// Update and Delete are allowed for owners and for the user who added
	// the movie.
	Update(ctx context.Context, caller Caller, id string, upd MovieUpdate) (*domain.Movie, error)
	Delete(ctx context.Context, caller Caller, id string) error
	DeleteByTitle(ctx context.Context, caller Caller, title string) error
}
