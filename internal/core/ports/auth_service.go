package ports

import (
	"context"

	"github.com/cineapp/catalog-api/internal/core/domain"
)

// Caller is the authenticated identity derived from a session token.
type Caller struct {
	ID    string
	Role  domain.Role
	Email string
}

// RegisterInput carries everything needed to create an account. The
// requested role is honored only when the caller is an authenticated owner;
// for everyone else the role is forced to standard.
type RegisterInput struct {
	Username      string
	Email         string
	Password      string
	RequestedRole string
	CallerRole    domain.Role // zero value when the request is anonymous
}

// AuthService covers registration, login, token validation, and the
// password-reset flow.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// Login returns a signed session token valid for exactly one hour.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// ValidateToken parses and verifies a raw token and yields the caller.
	ValidateToken(token string) (*Caller, error)
	// RequestPasswordReset generates a reset token, stores only its hash,
	// and mails the raw token to the user. Unknown emails return
	// domain.ErrUserNotFound.
	RequestPasswordReset(ctx context.Context, email string) error
	// CompletePasswordReset consumes a raw reset token exactly once.
	CompletePasswordReset(ctx context.Context, rawToken, newPassword string) error
}

// Mailer delivers transactional mail. Implementations may deliver
// asynchronously; an error only means the message could not be accepted.
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, resetURL string) error
}
