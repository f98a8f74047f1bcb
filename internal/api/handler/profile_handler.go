package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cineapp/catalog-api/internal/core/ports"
)

type ProfileHandler struct {
	profileService ports.ProfileService
}

func NewProfileHandler(profileService ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type createProfileRequest struct {
	Name           string `json:"name" validate:"required,min=3,max=50"`
	Type           string `json:"type" validate:"required,oneof=adult teen child"`
	AgeRestriction int    `json:"age_restriction" validate:"oneof=0 13 18"`
	Avatar         string `json:"avatar,omitempty"`
}

type updateProfileRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,min=3,max=50"`
	Type           *string `json:"type,omitempty" validate:"omitempty,oneof=adult teen child"`
	AgeRestriction *int    `json:"age_restriction,omitempty" validate:"omitempty,oneof=0 13 18"`
	Avatar         *string `json:"avatar,omitempty"`
}

type toggleWatchlistRequest struct {
	MovieID string `json:"movie_id" validate:"required"`
}

type watchlistResponse struct {
	Action    string   `json:"action"`
	Watchlist []string `json:"watchlist"`
}

// Create adds a viewing profile owned by the caller.
//
// @Summary      Create a profile
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        body  body      createProfileRequest  true  "Profile details"
// @Success      201   {object}  domain.Profile
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Security     BearerAuth
// @Router       /profiles [post]
func (h *ProfileHandler) Create(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	var req createProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	profile, err := h.profileService.Create(c.Request().Context(), caller, ports.CreateProfileInput{
		Name:           req.Name,
		Type:           req.Type,
		AgeRestriction: req.AgeRestriction,
		Avatar:         req.Avatar,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, profile)
}

// List returns the caller's own profiles.
//
// @Summary      List own profiles
// @Tags         profiles
// @Produce      json
// @Success      200  {array}  domain.Profile
// @Security     BearerAuth
// @Router       /profiles [get]
func (h *ProfileHandler) List(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	profiles, err := h.profileService.ListOwn(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profiles)
}

// Get returns a single profile. Owners can read anyone's; other callers only
// their own.
//
// @Summary      Get a profile
// @Tags         profiles
// @Produce      json
// @Param        id   path      string  true  "Profile ID"
// @Success      200  {object}  domain.Profile
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /profiles/{id} [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	profile, err := h.profileService.Get(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Update changes profile fields.
//
// @Summary      Update a profile
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Profile ID"
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  domain.Profile
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Security     BearerAuth
// @Router       /profiles/{id} [patch]
func (h *ProfileHandler) Update(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	profile, err := h.profileService.Update(c.Request().Context(), caller, c.Param("id"), ports.UpdateProfileInput{
		Name:           req.Name,
		Type:           req.Type,
		AgeRestriction: req.AgeRestriction,
		Avatar:         req.Avatar,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Delete removes a profile and the owning user's reference to it.
//
// @Summary      Delete a profile
// @Tags         profiles
// @Produce      json
// @Param        id   path      string  true  "Profile ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /profiles/{id} [delete]
func (h *ProfileHandler) Delete(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	if err := h.profileService.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "profile deleted"})
}

// ToggleWatchlist flips a movie's membership in the profile watchlist: absent
// movies are added, present ones removed.
//
// @Summary      Toggle a movie in the watchlist
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "Profile ID"
// @Param        body  body      toggleWatchlistRequest  true  "Movie reference"
// @Success      200   {object}  watchlistResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Security     BearerAuth
// @Router       /profiles/{id}/watchlist [patch]
func (h *ProfileHandler) ToggleWatchlist(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	var req toggleWatchlistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.profileService.ToggleWatchlist(c.Request().Context(), caller, c.Param("id"), req.MovieID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, watchlistResponse{
		Action:    result.Action,
		Watchlist: result.Watchlist,
	})
}
