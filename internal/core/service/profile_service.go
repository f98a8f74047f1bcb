package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cineapp/catalog-api/internal/api/metrics"
	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/policy"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

// ProfileService implements viewing-profile management and the watchlist
// toggle.
type ProfileService struct {
	profiles ports.ProfileRepository
	users    ports.UserRepository
	log      zerolog.Logger
}

func NewProfileService(profiles ports.ProfileRepository, users ports.UserRepository, log zerolog.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, users: users, log: log}
}

func (s *ProfileService) Create(ctx context.Context, caller ports.Caller, input ports.CreateProfileInput) (*domain.Profile, error) {
	if !policy.Authorize(caller.Role, "", "", domain.RoleOwner, domain.RoleStandard) {
		return nil, domain.ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	if len(name) < 3 || len(name) > 50 {
		return nil, fmt.Errorf("%w: profile name must be between 3 and 50 characters", domain.ErrValidation)
	}
	ptype, ok := domain.ParseProfileType(input.Type)
	if !ok {
		return nil, fmt.Errorf("%w: unknown profile type %q", domain.ErrValidation, input.Type)
	}
	if !domain.ValidProfileAgeCeiling(input.AgeRestriction) {
		return nil, fmt.Errorf("%w: age restriction must be one of %v", domain.ErrValidation, domain.ProfileAgeCeilings)
	}

	// The owning user must still exist before a profile gets linked to it.
	if _, err := s.users.FindByID(ctx, caller.ID); err != nil {
		return nil, err
	}

	avatar := input.Avatar
	if avatar == "" {
		avatar = domain.DefaultAvatar
	}

	now := time.Now().UTC()
	profile := &domain.Profile{
		Name:           name,
		Type:           ptype,
		AgeRestriction: input.AgeRestriction,
		Avatar:         avatar,
		Watchlist:      []string{},
		OwnerID:        caller.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.profiles.Create(ctx, profile)
	if err != nil {
		return nil, err
	}

	// Link the profile into the user's reference list. There is no
	// cross-document transaction: if this write fails the profile exists
	// unlinked, which is an accepted limitation.
	if err := s.users.AddProfile(ctx, caller.ID, created.ID); err != nil {
		s.log.Error().Err(err).Str("profile_id", created.ID).Str("user_id", caller.ID).
			Msg("profile created but user link failed")
		return nil, err
	}

	s.log.Info().Str("profile_id", created.ID).Str("user_id", caller.ID).Msg("profile created")
	return created, nil
}

func (s *ProfileService) ListOwn(ctx context.Context, caller ports.Caller) ([]*domain.Profile, error) {
	if !policy.Authorize(caller.Role, "", "", domain.RoleOwner, domain.RoleStandard) {
		return nil, domain.ErrForbidden
	}
	return s.profiles.FindByOwner(ctx, caller.ID)
}

func (s *ProfileService) Get(ctx context.Context, caller ports.Caller, id string) (*domain.Profile, error) {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Authorize(caller.Role, caller.ID, profile.OwnerID, domain.RoleOwner) {
		return nil, domain.ErrForbidden
	}
	return profile, nil
}

func (s *ProfileService) Update(ctx context.Context, caller ports.Caller, id string, input ports.UpdateProfileInput) (*domain.Profile, error) {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Authorize(caller.Role, caller.ID, profile.OwnerID, domain.RoleOwner) {
		return nil, domain.ErrForbidden
	}

	upd := ports.ProfileUpdate{Avatar: input.Avatar}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < 3 || len(name) > 50 {
			return nil, fmt.Errorf("%w: profile name must be between 3 and 50 characters", domain.ErrValidation)
		}
		upd.Name = &name
	}
	if input.Type != nil {
		ptype, ok := domain.ParseProfileType(*input.Type)
		if !ok {
			return nil, fmt.Errorf("%w: unknown profile type %q", domain.ErrValidation, *input.Type)
		}
		upd.Type = &ptype
	}
	if input.AgeRestriction != nil {
		if !domain.ValidProfileAgeCeiling(*input.AgeRestriction) {
			return nil, fmt.Errorf("%w: age restriction must be one of %v", domain.ErrValidation, domain.ProfileAgeCeilings)
		}
		upd.AgeRestriction = input.AgeRestriction
	}

	return s.profiles.Update(ctx, id, upd)
}

func (s *ProfileService) Delete(ctx context.Context, caller ports.Caller, id string) error {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.Authorize(caller.Role, caller.ID, profile.OwnerID, domain.RoleOwner) {
		return domain.ErrForbidden
	}

	deleted, err := s.profiles.Delete(ctx, id)
	if err != nil {
		return err
	}

	// Drop the back-reference from the owning user. Same non-transactional
	// caveat as Create: a failure here leaves a dangling reference.
	if err := s.users.RemoveProfile(ctx, deleted.OwnerID, deleted.ID); err != nil {
		s.log.Error().Err(err).Str("profile_id", id).Str("user_id", deleted.OwnerID).
			Msg("profile deleted but user unlink failed")
		return err
	}

	s.log.Info().Str("profile_id", id).Str("by", caller.ID).Msg("profile deleted")
	return nil
}

// ToggleWatchlist flips watchlist membership with two conditional updates:
// a $pull first, then a $addToSet when nothing was pulled. Each update is a
// single atomic document write, so concurrent toggles cannot corrupt the
// list. movieID is not resolved against the catalog; dangling references are
// tolerated by contract.
func (s *ProfileService) ToggleWatchlist(ctx context.Context, caller ports.Caller, profileID, movieID string) (*ports.WatchlistResult, error) {
	if movieID == "" {
		return nil, fmt.Errorf("%w: movie id is required", domain.ErrValidation)
	}

	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !policy.Authorize(caller.Role, caller.ID, profile.OwnerID, domain.RoleOwner) {
		return nil, domain.ErrForbidden
	}

	action := ports.WatchlistRemoved
	removed, err := s.profiles.RemoveFromWatchlist(ctx, profileID, movieID)
	if err != nil {
		return nil, err
	}
	if !removed {
		if _, err := s.profiles.AddToWatchlist(ctx, profileID, movieID); err != nil {
			return nil, err
		}
		action = ports.WatchlistAdded
	}

	updated, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	metrics.WatchlistTogglesTotal.WithLabelValues(action).Inc()
	s.log.Debug().Str("profile_id", profileID).Str("movie_id", movieID).Str("action", action).Msg("watchlist toggled")

	return &ports.WatchlistResult{Action: action, Watchlist: updated.Watchlist}, nil
}
