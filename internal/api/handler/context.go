package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/cineapp/catalog-api/internal/api/middleware"
	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

// callerFromContext extracts the caller injected by the Auth middleware.
// Absence means the middleware did not run or the route is misconfigured;
// fail closed.
func callerFromContext(c echo.Context) (ports.Caller, error) {
	caller, ok := c.Get(middleware.CallerContextKey).(ports.Caller)
	if !ok {
		return ports.Caller{}, domain.ErrMissingToken
	}
	return caller, nil
}

// optionalCallerFromContext extracts the caller when present. Used on routes
// behind OptionalAuth, where anonymous requests are legitimate.
func optionalCallerFromContext(c echo.Context) (ports.Caller, bool) {
	caller, ok := c.Get(middleware.CallerContextKey).(ports.Caller)
	return caller, ok
}
