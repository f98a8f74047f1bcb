package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cineapp/catalog-api/internal/api/metrics"
	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

// tokenTTL is the fixed session lifetime. There is no refresh mechanism;
// expiry requires a new login.
const tokenTTL = time.Hour

// resetTokenTTL bounds how long a password-reset link stays usable.
const resetTokenTTL = time.Hour

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ResetThrottle rate-limits password-reset requests per email (Redis).
type ResetThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// AuthService implements registration, login, token handling, and the
// password-reset flow.
type AuthService struct {
	repo        ports.UserRepository
	mailer      ports.Mailer
	throttle    ResetThrottle
	jwtSecret   string
	frontendURL string
	log         zerolog.Logger
}

func NewAuthService(
	repo ports.UserRepository,
	mailer ports.Mailer,
	throttle ResetThrottle,
	jwtSecret string,
	frontendURL string,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		mailer:      mailer,
		throttle:    throttle,
		jwtSecret:   jwtSecret,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		log:         log,
	}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if len(username) < 3 || len(username) > 50 {
		return nil, fmt.Errorf("%w: username must be between 3 and 50 characters", domain.ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: malformed email", domain.ErrValidation)
	}
	if len(input.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}

	// A requested role is honored only when an authenticated owner asks for
	// it; everyone else gets a standard account.
	role := domain.RoleStandard
	if input.CallerRole == domain.RoleOwner && input.RequestedRole != "" {
		parsed, ok := domain.ParseRole(input.RequestedRole)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, input.RequestedRole)
		}
		role = parsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Profiles:     []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(role)).Inc()
	s.log.Info().Str("user_id", created.ID).Str("role", string(role)).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return token, user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID,
		"role":  string(user.Role),
		"email": user.Email,
		"exp":   time.Now().Add(tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// ValidateToken verifies signature and expiry and yields the caller identity.
func (s *AuthService) ValidateToken(token string) (*ports.Caller, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !tkn.Valid {
		return nil, domain.ErrTokenInvalid
	}

	id, _ := claims["id"].(string)
	roleStr, _ := claims["role"].(string)
	email, _ := claims["email"].(string)

	role, ok := domain.ParseRole(roleStr)
	if id == "" || !ok {
		return nil, domain.ErrTokenInvalid
	}

	return &ports.Caller{ID: id, Role: role, Email: email}, nil
}

// RequestPasswordReset stores a one-way hash of a fresh token and mails the
// raw token embedded in a reset link. An unknown email surfaces as not found;
// the existence leak is a known tradeoff kept from the original contract.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("reset throttle check failed, continuing")
		} else if !allowed {
			// Pretend success so the throttle itself leaks nothing extra.
			s.log.Info().Str("email", email).Msg("reset request throttled")
			return nil
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	raw, hash, err := newResetToken()
	if err != nil {
		return err
	}

	if err := s.repo.SetResetToken(ctx, user.ID, hash, time.Now().UTC().Add(resetTokenTTL)); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, raw)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to send reset email")
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("requested").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("password reset requested")
	return nil
}

// CompletePasswordReset consumes a raw token exactly once: the repository
// swap is conditional on the stored hash still being present and unexpired.
func (s *AuthService) CompletePasswordReset(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" {
		return domain.ErrResetTokenInvalid
	}
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user, err := s.repo.ConsumeResetToken(ctx, hashResetToken(rawToken), time.Now().UTC(), string(hash))
	if err != nil {
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("completed").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("password reset completed")
	return nil
}

// newResetToken returns a random token and its sha256 hex digest. Only the
// digest is persisted.
func newResetToken() (raw, hash string, err error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	return raw, hashResetToken(raw), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
