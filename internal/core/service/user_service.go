package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/policy"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

// UserService implements account management: owner-or-self reads and
// updates, owner-only listing and soft delete.
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

func (s *UserService) Get(ctx context.Context, caller ports.Caller, id string) (*domain.User, error) {
	if !policy.Authorize(caller.Role, caller.ID, id, domain.RoleOwner) {
		return nil, domain.ErrForbidden
	}
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) Update(ctx context.Context, caller ports.Caller, id string, input ports.UpdateUserInput) (*domain.User, error) {
	if !policy.Authorize(caller.Role, caller.ID, id, domain.RoleOwner) {
		return nil, domain.ErrForbidden
	}

	upd := ports.UserUpdate{}
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if len(username) < 3 || len(username) > 50 {
			return nil, fmt.Errorf("%w: username must be between 3 and 50 characters", domain.ErrValidation)
		}
		upd.Username = &username
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if !emailPattern.MatchString(email) {
			return nil, fmt.Errorf("%w: malformed email", domain.ErrValidation)
		}
		upd.Email = &email
	}
	// Role changes are an owner privilege even on the caller's own account.
	if input.Role != nil {
		if caller.Role != domain.RoleOwner {
			return nil, domain.ErrForbidden
		}
		role, ok := domain.ParseRole(*input.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, *input.Role)
		}
		upd.Role = &role
	}

	user, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id).Str("by", caller.ID).Msg("user updated")
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, caller ports.Caller, id string) error {
	if !policy.Authorize(caller.Role, "", "", domain.RoleOwner) {
		return domain.ErrForbidden
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Str("by", caller.ID).Msg("user soft-deleted")
	return nil
}

func (s *UserService) List(ctx context.Context, caller ports.Caller, input ports.ListUsersInput) (*ports.UserPage, error) {
	if !policy.Authorize(caller.Role, "", "", domain.RoleOwner) {
		return nil, domain.ErrForbidden
	}

	filter := ports.ListUsersFilter{
		Search: strings.TrimSpace(input.Search),
		Page:   clampPage(input.Page),
		Limit:  defaultLimit(input.Limit, ports.DefaultPageLimit),
	}
	if input.Role != "" {
		role, ok := domain.ParseRole(input.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, input.Role)
		}
		filter.Role = role
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ports.UserPage{
		Items:      users,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pageCount(total, filter.Limit),
	}, nil
}
