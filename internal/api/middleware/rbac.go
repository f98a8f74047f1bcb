package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

// RequireRoles enforces role-based access control. Must run after Auth, as
// it reads the caller from context; a missing caller is denied.
func RequireRoles(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := c.Get(CallerContextKey).(ports.Caller)
			if !ok {
				return domain.ErrForbidden
			}
			if _, ok := allowed[caller.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
