package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

// stubAuth validates exactly one token value.
type stubAuth struct {
	validToken string
	caller     ports.Caller
	err        error
}

func (s *stubAuth) Register(context.Context, ports.RegisterInput) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuth) Login(context.Context, string, string) (string, *domain.User, error) {
	return "", nil, errors.New("not implemented")
}

func (s *stubAuth) RequestPasswordReset(context.Context, string) error {
	return errors.New("not implemented")
}

func (s *stubAuth) CompletePasswordReset(context.Context, string, string) error {
	return errors.New("not implemented")
}

func (s *stubAuth) ValidateToken(token string) (*ports.Caller, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != s.validToken {
		return nil, domain.ErrTokenInvalid
	}
	c := s.caller
	return &c, nil
}

func runAuth(t *testing.T, mw echo.MiddlewareFunc, configure func(*http.Request)) (ports.Caller, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	configure(req)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var caller ports.Caller
	var ok bool
	err := mw(func(c echo.Context) error {
		caller, ok = c.Get(CallerContextKey).(ports.Caller)
		return nil
	})(c)
	return caller, ok, err
}

func TestAuth_BearerHeader(t *testing.T) {
	auth := &stubAuth{validToken: "tok", caller: ports.Caller{ID: "u1", Role: domain.RoleStandard}}

	caller, ok, err := runAuth(t, Auth(auth), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer tok")
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !ok || caller.ID != "u1" {
		t.Fatalf("caller not injected: %+v", caller)
	}
}

func TestAuth_CookieFallback(t *testing.T) {
	auth := &stubAuth{validToken: "tok", caller: ports.Caller{ID: "u1", Role: domain.RoleStandard}}

	_, ok, err := runAuth(t, Auth(auth), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "token", Value: "tok"})
	})
	if err != nil || !ok {
		t.Fatalf("expected cookie auth to succeed, err=%v ok=%v", err, ok)
	}
}

func TestAuth_HeaderTakesPrecedenceOverCookie(t *testing.T) {
	auth := &stubAuth{validToken: "header-tok", caller: ports.Caller{ID: "u1", Role: domain.RoleStandard}}

	_, ok, err := runAuth(t, Auth(auth), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer header-tok")
		r.AddCookie(&http.Cookie{Name: "token", Value: "cookie-tok"})
	})
	if err != nil || !ok {
		t.Fatalf("expected header token to win, err=%v ok=%v", err, ok)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	auth := &stubAuth{validToken: "tok"}

	_, _, err := runAuth(t, Auth(auth), func(*http.Request) {})
	if !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	auth := &stubAuth{validToken: "tok"}

	_, _, err := runAuth(t, Auth(auth), func(r *http.Request) {
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	})
	if !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken for non-bearer scheme, got %v", err)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	auth := &stubAuth{err: domain.ErrTokenExpired}

	_, _, err := runAuth(t, Auth(auth), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer old")
	})
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestOptionalAuth_AnonymousPasses(t *testing.T) {
	auth := &stubAuth{validToken: "tok"}

	_, ok, err := runAuth(t, OptionalAuth(auth), func(*http.Request) {})
	if err != nil {
		t.Fatalf("anonymous request must pass: %v", err)
	}
	if ok {
		t.Fatalf("no caller should be injected for anonymous request")
	}
}

func TestOptionalAuth_BadTokenStillRejected(t *testing.T) {
	auth := &stubAuth{validToken: "tok"}

	_, _, err := runAuth(t, OptionalAuth(auth), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer wrong")
	})
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
