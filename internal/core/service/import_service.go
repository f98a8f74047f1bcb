package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cineapp/catalog-api/internal/api/metrics"
	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

// notAvailable is the sentinel the external source uses for missing fields.
const notAvailable = "N/A"

// detailFetchLimit caps concurrent detail lookups when resolving a keyword
// search into a rated preview list.
const detailFetchLimit = 4

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// ImportService normalizes external movie metadata into catalog records.
type ImportService struct {
	source ports.MovieSource
	movies ports.MovieRepository
	log    zerolog.Logger
}

func NewImportService(source ports.MovieSource, movies ports.MovieRepository, log zerolog.Logger) *ImportService {
	return &ImportService{source: source, movies: movies, log: log}
}

// Import resolves the query with fixed precedence: external ID, then exact
// title, then keyword search. Single matches are normalized and persisted
// with the caller as the adder; keyword matches are resolved into a preview
// list sorted by rating descending and are never persisted.
func (s *ImportService) Import(ctx context.Context, caller ports.Caller, query ports.ImportQuery) (*ports.ImportResult, error) {
	switch {
	case query.ExternalID != "":
		detail, err := s.source.FindByID(ctx, query.ExternalID)
		if err != nil {
			return nil, err
		}
		return s.persistSingle(ctx, caller, detail)
	case query.Title != "":
		detail, err := s.source.FindByTitle(ctx, query.Title)
		if err != nil {
			return nil, err
		}
		return s.persistSingle(ctx, caller, detail)
	case query.Search != "":
		return s.preview(ctx, query.Search, query.Year)
	}
	return nil, fmt.Errorf("%w: provide a title, an external id, or a search term", domain.ErrValidation)
}

func (s *ImportService) persistSingle(ctx context.Context, caller ports.Caller, detail *ports.SourceMovie) (*ports.ImportResult, error) {
	movie := normalizeSource(detail, caller.ID)

	created, err := s.movies.Create(ctx, movie)
	if err != nil {
		return nil, err
	}

	metrics.ImportsTotal.WithLabelValues("single").Inc()
	s.log.Info().Str("movie_id", created.ID).Str("title", created.Title).Str("by", caller.ID).Msg("movie imported")
	return &ports.ImportResult{Movie: created}, nil
}

// preview fetches details for every search candidate concurrently and sorts
// the results by rating descending. Missing ratings sort as 0.
func (s *ImportService) preview(ctx context.Context, term, year string) (*ports.ImportResult, error) {
	refs, err := s.source.Search(ctx, term, year)
	if err != nil {
		return nil, err
	}

	previews := make([]ports.ImportPreview, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailFetchLimit)
	for i, ref := range refs {
		g.Go(func() error {
			detail, err := s.source.FindByID(gctx, ref.ID)
			if err != nil {
				return err
			}
			previews[i] = ports.ImportPreview{
				Title:  sourceValue(detail.Title, ref.Title),
				Year:   sourceValue(detail.Year, ref.Year),
				Rating: parseSourceRating(detail.Rating),
				Poster: sourceValue(detail.Poster, ""),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(previews, func(i, j int) bool {
		return previews[i].Rating > previews[j].Rating
	})

	metrics.ImportsTotal.WithLabelValues("preview").Inc()
	return &ports.ImportResult{Previews: previews}, nil
}

// normalizeSource turns a raw source record into a catalog entry, defaulting
// every field the source marks unavailable.
func normalizeSource(d *ports.SourceMovie, addedBy string) *domain.Movie {
	classification := classificationForRated(d.Rated)

	now := time.Now().UTC()
	return &domain.Movie{
		Title:              sourceValue(d.Title, "Unknown title"),
		Genre:              splitSourceList(d.Genre, []string{"Unspecified"}),
		Director:           sourceValue(d.Director, "Unknown"),
		Cast:               splitSourceList(d.Actors, []string{}),
		ReleaseYear:        parseSourceYear(d.Year),
		Duration:           parseSourceRuntime(d.Runtime),
		Rating:             parseSourceRating(d.Rating),
		Classification:     classification,
		AgeRestriction:     classification.AgeRestriction(),
		Synopsis:           sourceValue(d.Plot, "No synopsis available"),
		PosterURL:          sourceValue(d.Poster, ""),
		Language:           sourceValue(d.Language, "Spanish"),
		Subtitles:          []string{},
		AvailableLanguages: splitSourceList(d.Language, []string{}),
		AddedBy:            addedBy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// classificationForRated maps the source's content-rating labels onto the
// catalog's classification tiers. Unknown labels default to all audiences.
func classificationForRated(rated string) domain.Classification {
	switch rated {
	case "G":
		return domain.ClassATP
	case "PG", "PG-13":
		return domain.ClassPlus13
	case "R":
		return domain.ClassPlus16
	case "NC-17":
		return domain.ClassPlus18
	}
	return domain.ClassATP
}

func sourceValue(v, def string) string {
	if v == "" || v == notAvailable {
		return def
	}
	return v
}

func splitSourceList(v string, def []string) []string {
	if v == "" || v == notAvailable {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func parseSourceYear(v string) int {
	if yearPattern.MatchString(v) {
		year, _ := strconv.Atoi(v)
		return year
	}
	return time.Now().Year()
}

// parseSourceRuntime extracts minutes from strings like "142 min".
func parseSourceRuntime(v string) int {
	if v == "" || v == notAvailable {
		return 0
	}
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return 0
	}
	minutes, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return minutes
}

func parseSourceRating(v string) float64 {
	if v == "" || v == notAvailable {
		return 0
	}
	rating, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return rating
}
