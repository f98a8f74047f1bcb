package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

type MovieHandler struct {
	catalogService ports.CatalogService
}

func NewMovieHandler(catalogService ports.CatalogService) *MovieHandler {
	return &MovieHandler{catalogService: catalogService}
}

type createMovieRequest struct {
	Title              string   `json:"title" validate:"required,min=1,max=150"`
	Genre              []string `json:"genre" validate:"required,min=1"`
	Director           string   `json:"director,omitempty"`
	Cast               []string `json:"cast,omitempty"`
	ReleaseYear        int      `json:"release_year" validate:"required"`
	Duration           int      `json:"duration,omitempty"`
	Rating             float64  `json:"rating" validate:"gte=0,lte=10"`
	Classification     string   `json:"classification" validate:"required"`
	Synopsis           string   `json:"synopsis,omitempty"`
	PosterURL          string   `json:"poster_url,omitempty"`
	TrailerURL         string   `json:"trailer_url,omitempty"`
	StreamURL          string   `json:"stream_url,omitempty"`
	DownloadURL        string   `json:"download_url,omitempty"`
	Language           string   `json:"language,omitempty"`
	Subtitles          []string `json:"subtitles,omitempty"`
	AvailableLanguages []string `json:"available_languages,omitempty"`
}

type updateMovieRequest struct {
	Title              *string  `json:"title,omitempty" validate:"omitempty,min=1,max=150"`
	Genre              []string `json:"genre,omitempty"`
	Director           *string  `json:"director,omitempty"`
	Cast               []string `json:"cast,omitempty"`
	ReleaseYear        *int     `json:"release_year,omitempty"`
	Duration           *int     `json:"duration,omitempty"`
	Rating             *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=10"`
	Classification     *string  `json:"classification,omitempty"`
	Synopsis           *string  `json:"synopsis,omitempty"`
	PosterURL          *string  `json:"poster_url,omitempty"`
	TrailerURL         *string  `json:"trailer_url,omitempty"`
	StreamURL          *string  `json:"stream_url,omitempty"`
	DownloadURL        *string  `json:"download_url,omitempty"`
	Language           *string  `json:"language,omitempty"`
	Subtitles          []string `json:"subtitles,omitempty"`
	AvailableLanguages []string `json:"available_languages,omitempty"`
}

type moviePageResponse struct {
	Items      []*domain.Movie `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

type dashboardResponse struct {
	moviePageResponse
	TotalMovies int64   `json:"total_movies"`
	AvgDuration float64 `json:"avg_duration"`
	AvgRating   float64 `json:"avg_rating"`
}

// listInputFromQuery parses the shared catalog query parameters.
func listInputFromQuery(c echo.Context) ports.ListMoviesInput {
	input := ports.ListMoviesInput{
		Title:          c.QueryParam("title"),
		Genre:          c.QueryParam("genre"),
		Classification: c.QueryParam("classification"),
	}
	input.Year, _ = strconv.Atoi(c.QueryParam("year"))
	input.Page, _ = strconv.Atoi(c.QueryParam("page"))
	input.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	if v := c.QueryParam("min_rating"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			input.MinRating = &f
		}
	}
	if v := c.QueryParam("max_rating"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			input.MaxRating = &f
		}
	}
	if v := c.QueryParam("from_year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			input.FromYear = &n
		}
	}
	if v := c.QueryParam("to_year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			input.ToYear = &n
		}
	}
	return input
}

func toMoviePageResponse(p *ports.MoviePage) moviePageResponse {
	return moviePageResponse{
		Items:      p.Items,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

// List returns a page of the public catalog.
//
// @Summary      List movies
// @Tags         movies
// @Produce      json
// @Param        title           query     string  false  "Partial title match"
// @Param        genre           query     string  false  "Partial genre match"
// @Param        year            query     int     false  "Exact release year"
// @Param        classification  query     string  false  "Exact classification"
// @Param        min_rating      query     number  false  "Minimum rating"
// @Param        max_rating      query     number  false  "Maximum rating"
// @Param        from_year       query     int     false  "Earliest release year"
// @Param        to_year         query     int     false  "Latest release year"
// @Param        page            query     int     false  "Page number"
// @Param        limit           query     int     false  "Page size"
// @Success      200             {object}  moviePageResponse
// @Router       /movies [get]
func (h *MovieHandler) List(c echo.Context) error {
	page, err := h.catalogService.List(c.Request().Context(), listInputFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMoviePageResponse(page))
}

// Get returns a single movie.
//
// @Summary      Get a movie
// @Tags         movies
// @Produce      json
// @Param        id   path      string  true  "Movie ID"
// @Success      200  {object}  domain.Movie
// @Failure      404  {object}  map[string]string
// @Router       /movies/{id} [get]
func (h *MovieHandler) Get(c echo.Context) error {
	movie, err := h.catalogService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, movie)
}

// ListForProfile returns the catalog filtered to what the profile may see.
// Child profiles only see all-audience titles.
//
// @Summary      List movies visible to a profile
// @Tags         movies
// @Produce      json
// @Param        profileId  path      string  true   "Profile ID"
// @Param        page       query     int     false  "Page number"
// @Param        limit      query     int     false  "Page size"
// @Success      200        {object}  moviePageResponse
// @Failure      404        {object}  map[string]string
// @Security     BearerAuth
// @Router       /movies/catalog/{profileId} [get]
func (h *MovieHandler) ListForProfile(c echo.Context) error {
	page, err := h.catalogService.ListForProfile(c.Request().Context(), c.Param("profileId"), listInputFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMoviePageResponse(page))
}

// Search matches a value against one named movie field.
//
// @Summary      Search movies by attribute
// @Tags         movies
// @Produce      json
// @Param        field  path      string  true  "Field name"
// @Param        value  path      string  true  "Substring to match"
// @Success      200    {array}   domain.Movie
// @Failure      400    {object}  map[string]string
// @Security     BearerAuth
// @Router       /movies/search/{field}/{value} [get]
func (h *MovieHandler) Search(c echo.Context) error {
	movies, err := h.catalogService.Search(c.Request().Context(), c.Param("field"), c.Param("value"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, movies)
}

// Dashboard returns the caller's own movies plus summary totals.
//
// @Summary      Own-movies dashboard
// @Tags         movies
// @Produce      json
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  dashboardResponse
// @Security     BearerAuth
// @Router       /movies/dashboard [get]
func (h *MovieHandler) Dashboard(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.catalogService.Dashboard(c.Request().Context(), caller, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		moviePageResponse: toMoviePageResponse(&result.MoviePage),
		TotalMovies:       result.Totals.TotalMovies,
		AvgDuration:       result.Totals.AvgDuration,
		AvgRating:         result.Totals.AvgRating,
	})
}

// Report returns the service-wide usage summary. Owner-only at the route.
//
// @Summary      Usage report
// @Tags         movies
// @Produce      json
// @Success      200  {object}  ports.UsageReport
// @Failure      403  {object}  map[string]string
// @Security     BearerAuth
// @Router       /movies/report/usage [get]
func (h *MovieHandler) Report(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	report, err := h.catalogService.UsageReport(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// Create adds a catalog entry. Owner or standard callers only.
//
// @Summary      Create a movie
// @Tags         movies
// @Accept       json
// @Produce      json
// @Param        body  body      createMovieRequest  true  "Movie details"
// @Success      201   {object}  domain.Movie
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Security     BearerAuth
// @Router       /movies [post]
func (h *MovieHandler) Create(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	var req createMovieRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	movie, err := h.catalogService.Create(c.Request().Context(), caller, ports.MovieInput{
		Title:              req.Title,
		Genre:              req.Genre,
		Director:           req.Director,
		Cast:               req.Cast,
		ReleaseYear:        req.ReleaseYear,
		Duration:           req.Duration,
		Rating:             req.Rating,
		Classification:     req.Classification,
		Synopsis:           req.Synopsis,
		PosterURL:          req.PosterURL,
		TrailerURL:         req.TrailerURL,
		StreamURL:          req.StreamURL,
		DownloadURL:        req.DownloadURL,
		Language:           req.Language,
		Subtitles:          req.Subtitles,
		AvailableLanguages: req.AvailableLanguages,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, movie)
}

// Update changes movie fields. Allowed for owners and the user who added it.
//
// @Summary      Update a movie
// @Tags         movies
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Movie ID"
// @Param        body  body      updateMovieRequest  true  "Fields to change"
// @Success      200   {object}  domain.Movie
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Security     BearerAuth
// @Router       /movies/{id} [patch]
func (h *MovieHandler) Update(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	var req updateMovieRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	upd := ports.MovieUpdate{
		Title:              req.Title,
		Genre:              req.Genre,
		Director:           req.Director,
		Cast:               req.Cast,
		ReleaseYear:        req.ReleaseYear,
		Duration:           req.Duration,
		Rating:             req.Rating,
		Synopsis:           req.Synopsis,
		PosterURL:          req.PosterURL,
		TrailerURL:         req.TrailerURL,
		StreamURL:          req.StreamURL,
		DownloadURL:        req.DownloadURL,
		Language:           req.Language,
		Subtitles:          req.Subtitles,
		AvailableLanguages: req.AvailableLanguages,
	}
	if req.Classification != nil {
		cl := domain.Classification(*req.Classification)
		upd.Classification = &cl
	}

	movie, err := h.catalogService.Update(c.Request().Context(), caller, c.Param("id"), upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, movie)
}

// Delete removes a movie by ID. Allowed for owners and the user who added it.
//
// @Summary      Delete a movie
// @Tags         movies
// @Produce      json
// @Param        id   path      string  true  "Movie ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /movies/{id} [delete]
func (h *MovieHandler) Delete(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	if err := h.catalogService.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "movie deleted"})
}

// DeleteByTitle removes the first movie with an exact title match. Owner
// only.
//
// @Summary      Delete a movie by title
// @Tags         movies
// @Produce      json
// @Param        title  path      string  true  "Exact title"
// @Success      200    {object}  messageResponse
// @Failure      403    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Security     BearerAuth
// @Router       /movies/title/{title} [delete]
func (h *MovieHandler) DeleteByTitle(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	if err := h.catalogService.DeleteByTitle(c.Request().Context(), caller, c.Param("title")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "movie deleted"})
}
