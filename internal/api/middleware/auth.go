package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

// CallerContextKey is where the authenticated caller is stored on the echo
// context.
const CallerContextKey = "caller"

// tokenCookieName is the session cookie set at login. The Authorization
// header takes precedence when both are present.
const tokenCookieName = "token"

// Auth validates the session token and injects the caller into context.
// Requests without a token are rejected.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := extractToken(c)
			if !ok {
				return domain.ErrMissingToken
			}

			caller, err := auth.ValidateToken(raw)
			if err != nil {
				return err
			}

			c.Set(CallerContextKey, *caller)
			return next(c)
		}
	}
}

// OptionalAuth injects the caller when a valid token is present and lets the
// request through anonymously otherwise. An invalid or expired token is
// still rejected: presenting bad credentials is an error, omitting them is
// not.
func OptionalAuth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := extractToken(c)
			if !ok {
				return next(c)
			}

			caller, err := auth.ValidateToken(raw)
			if err != nil {
				return err
			}

			c.Set(CallerContextKey, *caller)
			return next(c)
		}
	}
}

// extractToken reads the raw token from the Authorization bearer header,
// falling back to the session cookie.
func extractToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
			return parts[1], true
		}
		return "", false
	}

	cookie, err := c.Cookie(tokenCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
