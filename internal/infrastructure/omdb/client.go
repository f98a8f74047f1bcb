package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

const requestTimeout = 10 * time.Second

// Client talks to the OMDb HTTP API and implements ports.MovieSource.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// detailResponse mirrors the OMDb detail payload. Response carries "True" or
// "False"; on "False" the Error field explains why.
type detailResponse struct {
	ImdbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Runtime    string `json:"Runtime"`
	Rated      string `json:"Rated"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	Language   string `json:"Language"`
	ImdbRating string `json:"imdbRating"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

type searchResponse struct {
	Search []struct {
		ImdbID string `json:"imdbID"`
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		Poster string `json:"Poster"`
	} `json:"Search"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func (c *Client) FindByID(ctx context.Context, id string) (*ports.SourceMovie, error) {
	return c.detail(ctx, url.Values{"i": {id}})
}

func (c *Client) FindByTitle(ctx context.Context, title string) (*ports.SourceMovie, error) {
	return c.detail(ctx, url.Values{"t": {title}})
}

func (c *Client) detail(ctx context.Context, params url.Values) (*ports.SourceMovie, error) {
	var payload detailResponse
	if err := c.get(ctx, params, &payload); err != nil {
		return nil, err
	}
	if payload.Response == "False" {
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, payload.Error)
	}

	return &ports.SourceMovie{
		ID:       payload.ImdbID,
		Title:    payload.Title,
		Year:     payload.Year,
		Genre:    payload.Genre,
		Director: payload.Director,
		Actors:   payload.Actors,
		Runtime:  payload.Runtime,
		Rated:    payload.Rated,
		Plot:     payload.Plot,
		Poster:   payload.Poster,
		Language: payload.Language,
		Rating:   payload.ImdbRating,
	}, nil
}

func (c *Client) Search(ctx context.Context, term, year string) ([]ports.SourceRef, error) {
	params := url.Values{"s": {term}}
	if year != "" {
		params.Set("y", year)
	}

	var payload searchResponse
	if err := c.get(ctx, params, &payload); err != nil {
		return nil, err
	}
	if payload.Response == "False" {
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, payload.Error)
	}

	refs := make([]ports.SourceRef, 0, len(payload.Search))
	for _, hit := range payload.Search {
		refs = append(refs, ports.SourceRef{
			ID:     hit.ImdbID,
			Title:  hit.Title,
			Year:   hit.Year,
			Poster: hit.Poster,
		})
	}
	return refs, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build omdb request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Msg("omdb returned non-200")
		return fmt.Errorf("%w: status %d", domain.ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}
	return nil
}
