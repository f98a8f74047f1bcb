package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

func newProfileFixture(t *testing.T) (*ProfileService, *stubUserRepo, *stubProfileRepo, ports.Caller) {
	t.Helper()
	users := newStubUserRepo()
	profiles := newStubProfileRepo()
	svc := NewProfileService(profiles, users, testLogger())
	user := seedUser(t, users, "parent", domain.RoleStandard)
	return svc, users, profiles, ports.Caller{ID: user.ID, Role: domain.RoleStandard}
}

func TestProfileService_Create_LinksToUser(t *testing.T) {
	svc, users, _, caller := newProfileFixture(t)

	profile, err := svc.Create(context.Background(), caller, ports.CreateProfileInput{
		Name: "Kids", Type: "child", AgeRestriction: 0,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if profile.Avatar != domain.DefaultAvatar {
		t.Fatalf("expected default avatar, got %s", profile.Avatar)
	}
	if profile.OwnerID != caller.ID {
		t.Fatalf("expected owner %s, got %s", caller.ID, profile.OwnerID)
	}

	user, _ := users.FindByID(context.Background(), caller.ID)
	if len(user.Profiles) != 1 || user.Profiles[0] != profile.ID {
		t.Fatalf("expected profile linked on user, got %v", user.Profiles)
	}
}

func TestProfileService_Create_Validation(t *testing.T) {
	svc, _, _, caller := newProfileFixture(t)

	cases := []ports.CreateProfileInput{
		{Name: "ab", Type: "adult"},
		{Name: "Valid", Type: "toddler"},
		{Name: "Valid", Type: "adult", AgeRestriction: 12},
	}
	for _, input := range cases {
		if _, err := svc.Create(context.Background(), caller, input); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}
}

func TestProfileService_Create_ChildCallerForbidden(t *testing.T) {
	svc, _, _, _ := newProfileFixture(t)

	if _, err := svc.Create(context.Background(), ports.Caller{ID: "kid", Role: domain.RoleChild}, ports.CreateProfileInput{
		Name: "Mine", Type: "child",
	}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestProfileService_Get_OwnershipEnforced(t *testing.T) {
	svc, users, _, caller := newProfileFixture(t)

	profile, err := svc.Create(context.Background(), caller, ports.CreateProfileInput{
		Name: "Mine", Type: "adult", AgeRestriction: 18,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stranger := seedUser(t, users, "stranger", domain.RoleStandard)
	if _, err := svc.Get(context.Background(), ports.Caller{ID: stranger.ID, Role: domain.RoleStandard}, profile.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}

	admin := seedUser(t, users, "admin", domain.RoleOwner)
	if _, err := svc.Get(context.Background(), ports.Caller{ID: admin.ID, Role: domain.RoleOwner}, profile.ID); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
}

func TestProfileService_Delete_RemovesUserLink(t *testing.T) {
	svc, users, profiles, caller := newProfileFixture(t)

	profile, _ := svc.Create(context.Background(), caller, ports.CreateProfileInput{
		Name: "Temp", Type: "teen", AgeRestriction: 13,
	})

	if err := svc.Delete(context.Background(), caller, profile.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := profiles.FindByID(context.Background(), profile.ID); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected profile gone, got %v", err)
	}
	user, _ := users.FindByID(context.Background(), caller.ID)
	if len(user.Profiles) != 0 {
		t.Fatalf("expected user link removed, got %v", user.Profiles)
	}
}

func TestProfileService_ToggleWatchlist_AddThenRemove(t *testing.T) {
	svc, _, _, caller := newProfileFixture(t)

	profile, _ := svc.Create(context.Background(), caller, ports.CreateProfileInput{
		Name: "Watcher", Type: "adult", AgeRestriction: 18,
	})

	// First toggle adds.
	result, err := svc.ToggleWatchlist(context.Background(), caller, profile.ID, "movie-42")
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if result.Action != ports.WatchlistAdded || len(result.Watchlist) != 1 {
		t.Fatalf("expected add, got %+v", result)
	}

	// Second toggle removes and restores the original list.
	result, err = svc.ToggleWatchlist(context.Background(), caller, profile.ID, "movie-42")
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if result.Action != ports.WatchlistRemoved || len(result.Watchlist) != 0 {
		t.Fatalf("expected remove, got %+v", result)
	}
}

func TestProfileService_ToggleWatchlist_DanglingRefTolerated(t *testing.T) {
	svc, _, _, caller := newProfileFixture(t)

	profile, _ := svc.Create(context.Background(), caller, ports.CreateProfileInput{
		Name: "Watcher", Type: "adult", AgeRestriction: 18,
	})

	// The movie is never checked against the catalog.
	result, err := svc.ToggleWatchlist(context.Background(), caller, profile.ID, "no-such-movie")
	if err != nil {
		t.Fatalf("toggle of unknown movie failed: %v", err)
	}
	if result.Action != ports.WatchlistAdded {
		t.Fatalf("expected add, got %s", result.Action)
	}
}

func TestProfileService_ToggleWatchlist_StrangerForbidden(t *testing.T) {
	svc, users, _, caller := newProfileFixture(t)

	profile, _ := svc.Create(context.Background(), caller, ports.CreateProfileInput{
		Name: "Watcher", Type: "adult", AgeRestriction: 18,
	})

	stranger := seedUser(t, users, "stranger", domain.RoleStandard)
	if _, err := svc.ToggleWatchlist(context.Background(), ports.Caller{ID: stranger.ID, Role: domain.RoleStandard}, profile.ID, "movie-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
