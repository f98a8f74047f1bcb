package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cineapp/catalog-api/internal/api/metrics"
	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/policy"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

var (
	imageURLPattern = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|webp)$`)
	plainURLPattern = regexp.MustCompile(`(?i)^https?://.+`)
)

// searchableFields is the closed set of fields exposed by attribute search.
// Anything outside it is rejected, so internal field names never leak and
// arbitrary query shapes cannot be formed from the URL.
var searchableFields = map[string]struct{}{
	"title":          {},
	"genre":          {},
	"director":       {},
	"cast":           {},
	"language":       {},
	"synopsis":       {},
	"classification": {},
}

// CatalogService implements catalog queries and role-gated writes.
type CatalogService struct {
	movies   ports.MovieRepository
	profiles ports.ProfileRepository
	log      zerolog.Logger
}

func NewCatalogService(movies ports.MovieRepository, profiles ports.ProfileRepository, log zerolog.Logger) *CatalogService {
	return &CatalogService{movies: movies, profiles: profiles, log: log}
}

func (s *CatalogService) List(ctx context.Context, input ports.ListMoviesInput) (*ports.MoviePage, error) {
	filter, err := s.buildFilter(input, ports.DefaultPageLimit)
	if err != nil {
		return nil, err
	}
	metrics.CatalogQueriesTotal.WithLabelValues("public").Inc()
	return s.listPage(ctx, filter)
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Movie, error) {
	return s.movies.FindByID(ctx, id)
}

// ListForProfile intersects the caller's criteria with the profile's
// visibility rule: a child profile only ever narrows the result set.
func (s *CatalogService) ListForProfile(ctx context.Context, profileID string, input ports.ListMoviesInput) (*ports.MoviePage, error) {
	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	filter, err := s.buildFilter(input, ports.DefaultPageLimit)
	if err != nil {
		return nil, err
	}
	filter.ChildSafe = policy.ChildRestricted(profile)

	metrics.CatalogQueriesTotal.WithLabelValues("profile").Inc()
	return s.listPage(ctx, filter)
}

func (s *CatalogService) Search(ctx context.Context, field, value string) ([]*domain.Movie, error) {
	if _, ok := searchableFields[field]; !ok {
		return nil, domain.ErrSearchFieldNotAllowed
	}
	if strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("%w: search value is required", domain.ErrValidation)
	}
	metrics.CatalogQueriesTotal.WithLabelValues("search").Inc()
	return s.movies.SearchByField(ctx, field, value)
}

func (s *CatalogService) Dashboard(ctx context.Context, caller ports.Caller, page, limit int) (*ports.DashboardResult, error) {
	filter := ports.CatalogFilter{
		AddedBy: caller.ID,
		Page:    clampPage(page),
		Limit:   defaultLimit(limit, ports.DashboardPageLimit),
	}

	pageResult, err := s.listPage(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, avgDuration, avgRating, err := s.movies.StatsByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	metrics.CatalogQueriesTotal.WithLabelValues("dashboard").Inc()
	return &ports.DashboardResult{
		MoviePage: *pageResult,
		Totals: ports.DashboardTotals{
			TotalMovies: count,
			AvgDuration: avgDuration,
			AvgRating:   avgRating,
		},
	}, nil
}

// UsageReport summarizes the whole service for owners: catalog size, total
// watchlist saves across all profiles, and the per-genre breakdown.
func (s *CatalogService) UsageReport(ctx context.Context, caller ports.Caller) (*ports.UsageReport, error) {
	if !policy.Authorize(caller.Role, "", "", domain.RoleOwner) {
		return nil, domain.ErrForbidden
	}

	totalMovies, byGenre, err := s.movies.UsageStats(ctx)
	if err != nil {
		return nil, err
	}
	totalWatchlisted, err := s.profiles.WatchlistTotal(ctx)
	if err != nil {
		return nil, err
	}

	metrics.CatalogQueriesTotal.WithLabelValues("report").Inc()
	return &ports.UsageReport{
		TotalMovies:      totalMovies,
		TotalWatchlisted: totalWatchlisted,
		ByGenre:          byGenre,
	}, nil
}

func (s *CatalogService) Create(ctx context.Context, caller ports.Caller, input ports.MovieInput) (*domain.Movie, error) {
	if !policy.Authorize(caller.Role, "", "", domain.RoleOwner, domain.RoleStandard) {
		return nil, domain.ErrForbidden
	}

	classification, err := validateMovieInput(&input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	movie := &domain.Movie{
		Title:              strings.TrimSpace(input.Title),
		Genre:              input.Genre,
		Director:           strings.TrimSpace(input.Director),
		Cast:               input.Cast,
		ReleaseYear:        input.ReleaseYear,
		Duration:           input.Duration,
		Rating:             input.Rating,
		Classification:     classification,
		AgeRestriction:     classification.AgeRestriction(),
		Synopsis:           strings.TrimSpace(input.Synopsis),
		PosterURL:          input.PosterURL,
		TrailerURL:         input.TrailerURL,
		StreamURL:          input.StreamURL,
		DownloadURL:        input.DownloadURL,
		Language:           defaultString(input.Language, "Spanish"),
		Subtitles:          emptyIfNil(input.Subtitles),
		AvailableLanguages: emptyIfNil(input.AvailableLanguages),
		AddedBy:            caller.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := s.movies.Create(ctx, movie)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("movie_id", created.ID).Str("by", caller.ID).Msg("movie created")
	return created, nil
}

func (s *CatalogService) Update(ctx context.Context, caller ports.Caller, id string, upd ports.MovieUpdate) (*domain.Movie, error) {
	movie, err := s.movies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Owners may edit anything; otherwise only the user who added the movie.
	if !policy.Authorize(caller.Role, caller.ID, movie.AddedBy, domain.RoleOwner) {
		return nil, domain.ErrForbidden
	}

	if err := validateMovieUpdate(upd); err != nil {
		return nil, err
	}

	// Classification drives the numeric age restriction: they change together
	// or not at all.
	var age *int
	if upd.Classification != nil {
		a := upd.Classification.AgeRestriction()
		age = &a
	}

	updated, err := s.movies.Update(ctx, id, upd, age)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("movie_id", id).Str("by", caller.ID).Msg("movie updated")
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, caller ports.Caller, id string) error {
	movie, err := s.movies.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.Authorize(caller.Role, caller.ID, movie.AddedBy, domain.RoleOwner) {
		return domain.ErrForbidden
	}
	if err := s.movies.Delete(ctx, id); err != nil {
		return err
	}
	// Hard removal: watchlists referencing this movie keep their dangling
	// entry by contract.
	s.log.Info().Str("movie_id", id).Str("by", caller.ID).Msg("movie deleted")
	return nil
}

func (s *CatalogService) DeleteByTitle(ctx context.Context, caller ports.Caller, title string) error {
	if !policy.Authorize(caller.Role, "", "", domain.RoleOwner) {
		return domain.ErrForbidden
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	return s.movies.DeleteByTitle(ctx, title)
}

func (s *CatalogService) buildFilter(input ports.ListMoviesInput, defLimit int) (ports.CatalogFilter, error) {
	filter := ports.CatalogFilter{
		Title:     strings.TrimSpace(input.Title),
		Genre:     strings.TrimSpace(input.Genre),
		Year:      input.Year,
		MinRating: input.MinRating,
		MaxRating: input.MaxRating,
		FromYear:  input.FromYear,
		ToYear:    input.ToYear,
		Page:      clampPage(input.Page),
		Limit:     defaultLimit(input.Limit, defLimit),
	}
	if input.Classification != "" {
		c, ok := domain.ParseClassification(input.Classification)
		if !ok {
			return ports.CatalogFilter{}, fmt.Errorf("%w: unknown classification %q", domain.ErrValidation, input.Classification)
		}
		filter.Classification = c
	}
	return filter, nil
}

func (s *CatalogService) listPage(ctx context.Context, filter ports.CatalogFilter) (*ports.MoviePage, error) {
	items, total, err := s.movies.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.MoviePage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pageCount(total, filter.Limit),
	}, nil
}

// validateMovieInput checks a full movie payload and returns the parsed
// classification.
func validateMovieInput(input *ports.MovieInput) (domain.Classification, error) {
	title := strings.TrimSpace(input.Title)
	if len(title) < 1 || len(title) > 150 {
		return "", fmt.Errorf("%w: title must be between 1 and 150 characters", domain.ErrValidation)
	}
	if len(input.Genre) == 0 {
		return "", fmt.Errorf("%w: at least one genre is required", domain.ErrValidation)
	}
	if err := validateYear(input.ReleaseYear); err != nil {
		return "", err
	}
	if err := validateDuration(input.Duration); err != nil {
		return "", err
	}
	if err := validateRating(input.Rating); err != nil {
		return "", err
	}
	classification, ok := domain.ParseClassification(input.Classification)
	if !ok {
		return "", fmt.Errorf("%w: unknown classification %q", domain.ErrValidation, input.Classification)
	}
	if err := validateURL("poster_url", input.PosterURL, imageURLPattern); err != nil {
		return "", err
	}
	for _, u := range []struct{ name, value string }{
		{"trailer_url", input.TrailerURL},
		{"stream_url", input.StreamURL},
		{"download_url", input.DownloadURL},
	} {
		if err := validateURL(u.name, u.value, plainURLPattern); err != nil {
			return "", err
		}
	}
	return classification, nil
}

func validateMovieUpdate(upd ports.MovieUpdate) error {
	if upd.Title != nil {
		if t := strings.TrimSpace(*upd.Title); len(t) < 1 || len(t) > 150 {
			return fmt.Errorf("%w: title must be between 1 and 150 characters", domain.ErrValidation)
		}
	}
	if upd.Genre != nil && len(upd.Genre) == 0 {
		return fmt.Errorf("%w: at least one genre is required", domain.ErrValidation)
	}
	if upd.ReleaseYear != nil {
		if err := validateYear(*upd.ReleaseYear); err != nil {
			return err
		}
	}
	if upd.Duration != nil {
		if err := validateDuration(*upd.Duration); err != nil {
			return err
		}
	}
	if upd.Rating != nil {
		if err := validateRating(*upd.Rating); err != nil {
			return err
		}
	}
	if upd.Classification != nil && !upd.Classification.Valid() {
		return fmt.Errorf("%w: unknown classification %q", domain.ErrValidation, *upd.Classification)
	}
	if upd.PosterURL != nil {
		if err := validateURL("poster_url", *upd.PosterURL, imageURLPattern); err != nil {
			return err
		}
	}
	for _, u := range []struct {
		name  string
		value *string
	}{
		{"trailer_url", upd.TrailerURL},
		{"stream_url", upd.StreamURL},
		{"download_url", upd.DownloadURL},
	} {
		if u.value != nil {
			if err := validateURL(u.name, *u.value, plainURLPattern); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateYear(year int) error {
	if year < 1000 || year > time.Now().Year() {
		return fmt.Errorf("%w: release year must be a 4-digit year no later than the current year", domain.ErrValidation)
	}
	return nil
}

func validateDuration(minutes int) error {
	// Zero means unknown (imports without runtime data).
	if minutes != 0 && (minutes < 60 || minutes > 240) {
		return fmt.Errorf("%w: duration must be between 60 and 240 minutes", domain.ErrValidation)
	}
	return nil
}

func validateRating(rating float64) error {
	if rating < 0 || rating > 10 {
		return fmt.Errorf("%w: rating must be between 0 and 10", domain.ErrValidation)
	}
	return nil
}

func validateURL(name, value string, pattern *regexp.Regexp) error {
	if value == "" {
		return nil
	}
	if !pattern.MatchString(value) {
		return fmt.Errorf("%w: %s is not a valid URL", domain.ErrValidation, name)
	}
	return nil
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
