package ports

import (
	"context"

	"github.com/cineapp/catalog-api/internal/core/domain"
)

// SourceMovie is one raw record from the external movie source. Field values
// keep the source's "N/A" sentinel; normalization happens in the import
// service.
type SourceMovie struct {
	ID       string
	Title    string
	Year     string
	Genre    string
	Director string
	Actors   string
	Runtime  string
	Rated    string
	Plot     string
	Poster   string
	Language string
	Rating   string
}

// SourceRef is a search hit that still needs a detail lookup.
type SourceRef struct {
	ID     string
	Title  string
	Year   string
	Poster string
}

// MovieSource is the client for the external movie-data API.
type MovieSource interface {
	FindByID(ctx context.Context, id string) (*SourceMovie, error)
	FindByTitle(ctx context.Context, title string) (*SourceMovie, error)
	Search(ctx context.Context, term, year string) ([]SourceRef, error)
}

// ImportQuery selects what to import. Precedence: ExternalID over Title over
// Search; Year only refines Search.
type ImportQuery struct {
	Title      string
	ExternalID string
	Search     string
	Year       string
}

// ImportPreview is a search candidate resolved with its rating, returned
// without being persisted.
type ImportPreview struct {
	Title  string  `json:"title"`
	Year   string  `json:"year"`
	Rating float64 `json:"rating"`
	Poster string  `json:"poster,omitempty"`
}

// ImportResult holds either a persisted movie (single match) or a preview
// list sorted by rating descending (keyword search).
type ImportResult struct {
	Movie    *domain.Movie
	Previews []ImportPreview
}

// ImportService fetches external movie metadata and normalizes it into
// catalog records.
type ImportService interface {
	Import(ctx context.Context, caller Caller, query ImportQuery) (*ImportResult, error)
}
