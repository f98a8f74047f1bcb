package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

type ImportHandler struct {
	importService ports.ImportService
}

func NewImportHandler(importService ports.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

type importResponse struct {
	Movie    *domain.Movie         `json:"movie,omitempty"`
	Previews []ports.ImportPreview `json:"previews,omitempty"`
}

// Import fetches movie metadata from the external source. An external ID or
// exact title imports one movie into the catalog; a search term returns a
// preview list without persisting anything.
//
// @Summary      Import movie metadata
// @Tags         movies
// @Produce      json
// @Param        id      query     string  false  "External movie ID"
// @Param        title   query     string  false  "Exact title"
// @Param        search  query     string  false  "Keyword search term"
// @Param        year    query     string  false  "Release year, refines search"
// @Success      200     {object}  importResponse
// @Failure      400     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Security     BearerAuth
// @Router       /movies/import [post]
func (h *ImportHandler) Import(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	result, err := h.importService.Import(c.Request().Context(), caller, ports.ImportQuery{
		ExternalID: c.QueryParam("id"),
		Title:      c.QueryParam("title"),
		Search:     c.QueryParam("search"),
		Year:       c.QueryParam("year"),
	})
	if err != nil {
		return err
	}

	status := http.StatusOK
	if result.Movie != nil {
		status = http.StatusCreated
	}
	return c.JSON(status, importResponse{
		Movie:    result.Movie,
		Previews: result.Previews,
	})
}
