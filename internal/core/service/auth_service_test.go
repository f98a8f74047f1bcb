package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

func newAuthService(repo *stubUserRepo, mailer *stubMailer, throttle ResetThrottle) *AuthService {
	return NewAuthService(repo, mailer, throttle, "secret", "http://localhost:5173", testLogger())
}

func TestAuthService_Register_HashesPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{}, nil)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "pass123",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %s", user.Email)
	}
}

func TestAuthService_Register_RoleForcedToStandard(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{}, nil)

	// Anonymous caller asking for owner still gets standard.
	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username:      "bob",
		Email:         "bob@example.com",
		Password:      "pass123",
		RequestedRole: "owner",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != domain.RoleStandard {
		t.Fatalf("expected standard role, got %s", user.Role)
	}

	// Standard caller asking for owner also gets standard.
	user, err = svc.Register(context.Background(), ports.RegisterInput{
		Username:      "carol",
		Email:         "carol@example.com",
		Password:      "pass123",
		RequestedRole: "owner",
		CallerRole:    domain.RoleStandard,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != domain.RoleStandard {
		t.Fatalf("expected standard role, got %s", user.Role)
	}
}

func TestAuthService_Register_OwnerCanAssignRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{}, nil)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username:      "dave",
		Email:         "dave@example.com",
		Password:      "pass123",
		RequestedRole: "child",
		CallerRole:    domain.RoleOwner,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != domain.RoleChild {
		t.Fatalf("expected child role, got %s", user.Role)
	}

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username:      "eve",
		Email:         "eve@example.com",
		Password:      "pass123",
		RequestedRole: "superuser",
		CallerRole:    domain.RoleOwner,
	}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{}, nil)

	cases := []ports.RegisterInput{
		{Username: "ab", Email: "a@b.com", Password: "pass123"},
		{Username: "valid", Email: "not-an-email", Password: "pass123"},
		{Username: "valid", Email: "a@b.com", Password: "short"},
	}
	for _, input := range cases {
		if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{}, nil)

	input := ports.RegisterInput{Username: "frank", Email: "frank@example.com", Password: "pass123"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Login_TokenRoundTrip(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{}, nil)

	created, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "grace", Email: "grace@example.com", Password: "s3cret1",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "grace@example.com", "s3cret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || user == nil {
		t.Fatalf("expected token and user")
	}

	caller, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if caller.ID != created.ID || caller.Role != domain.RoleStandard || caller.Email != "grace@example.com" {
		t.Fatalf("unexpected caller: %+v", caller)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{}, nil)

	_, _ = svc.Register(context.Background(), ports.RegisterInput{
		Username: "henry", Email: "henry@example.com", Password: "goodpass",
	})
	if _, _, err := svc.Login(context.Background(), "henry@example.com", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{}, nil)

	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "pass123"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_ValidateToken_Garbage(t *testing.T) {
	svc := newAuthService(newStubUserRepo(), &stubMailer{}, nil)

	if _, err := svc.ValidateToken("not.a.token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAuthService_PasswordReset_FullFlow(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc := newAuthService(repo, mailer, nil)

	_, _ = svc.Register(context.Background(), ports.RegisterInput{
		Username: "irene", Email: "irene@example.com", Password: "oldpass",
	})

	if err := svc.RequestPasswordReset(context.Background(), "irene@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one reset email, got %d", len(mailer.sent))
	}

	// The raw token is the last path segment of the mailed link.
	parts := strings.Split(mailer.sent[0], "/")
	raw := parts[len(parts)-1]

	if err := svc.CompletePasswordReset(context.Background(), raw, "newpass1"); err != nil {
		t.Fatalf("CompletePasswordReset failed: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "irene@example.com", "newpass1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "irene@example.com", "oldpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still works: %v", err)
	}

	// Second use of the same token must fail.
	if err := svc.CompletePasswordReset(context.Background(), raw, "another1"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected single-use token, got %v", err)
	}
}

func TestAuthService_PasswordReset_UnknownEmail(t *testing.T) {
	svc := newAuthService(newStubUserRepo(), &stubMailer{}, nil)

	if err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_PasswordReset_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	throttle := &stubThrottle{allow: false}
	svc := newAuthService(repo, mailer, throttle)

	_, _ = svc.Register(context.Background(), ports.RegisterInput{
		Username: "jane", Email: "jane@example.com", Password: "pass123",
	})

	// Throttled requests report success but send nothing.
	if err := svc.RequestPasswordReset(context.Background(), "jane@example.com"); err != nil {
		t.Fatalf("throttled request should not error: %v", err)
	}
	if throttle.calls != 1 {
		t.Fatalf("expected throttle to be consulted")
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expected no mail while throttled, got %d", len(mailer.sent))
	}
}
