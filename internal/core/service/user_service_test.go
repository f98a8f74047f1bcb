package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

func seedUser(t *testing.T, repo *stubUserRepo, username string, role domain.Role) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	user, err := repo.Create(context.Background(), &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestUserService_Get_SelfAndOwner(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, testLogger())

	owner := seedUser(t, repo, "owner", domain.RoleOwner)
	standard := seedUser(t, repo, "standard", domain.RoleStandard)
	other := seedUser(t, repo, "other", domain.RoleStandard)

	// Self read.
	if _, err := svc.Get(context.Background(), ports.Caller{ID: standard.ID, Role: domain.RoleStandard}, standard.ID); err != nil {
		t.Fatalf("self read failed: %v", err)
	}
	// Owner reads anyone.
	if _, err := svc.Get(context.Background(), ports.Caller{ID: owner.ID, Role: domain.RoleOwner}, standard.ID); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	// Standard cannot read someone else.
	if _, err := svc.Get(context.Background(), ports.Caller{ID: standard.ID, Role: domain.RoleStandard}, other.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserService_Update_RoleChangeOwnerOnly(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, testLogger())

	owner := seedUser(t, repo, "owner", domain.RoleOwner)
	standard := seedUser(t, repo, "standard", domain.RoleStandard)

	role := "owner"
	// A standard user cannot escalate their own role.
	if _, err := svc.Update(context.Background(), ports.Caller{ID: standard.ID, Role: domain.RoleStandard}, standard.ID, ports.UpdateUserInput{Role: &role}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// An owner can.
	updated, err := svc.Update(context.Background(), ports.Caller{ID: owner.ID, Role: domain.RoleOwner}, standard.ID, ports.UpdateUserInput{Role: &role})
	if err != nil {
		t.Fatalf("owner role change failed: %v", err)
	}
	if updated.Role != domain.RoleOwner {
		t.Fatalf("expected owner role, got %s", updated.Role)
	}
}

func TestUserService_Update_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, testLogger())
	user := seedUser(t, repo, "victor", domain.RoleStandard)
	caller := ports.Caller{ID: user.ID, Role: domain.RoleStandard}

	bad := "ab"
	if _, err := svc.Update(context.Background(), caller, user.ID, ports.UpdateUserInput{Username: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for short username, got %v", err)
	}
	badEmail := "nope"
	if _, err := svc.Update(context.Background(), caller, user.ID, ports.UpdateUserInput{Email: &badEmail}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for bad email, got %v", err)
	}
}

func TestUserService_Delete_OwnerOnlySoftDelete(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, testLogger())

	owner := seedUser(t, repo, "owner", domain.RoleOwner)
	victim := seedUser(t, repo, "victim", domain.RoleStandard)

	if err := svc.Delete(context.Background(), ports.Caller{ID: victim.ID, Role: domain.RoleStandard}, victim.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for self-delete by standard, got %v", err)
	}

	if err := svc.Delete(context.Background(), ports.Caller{ID: owner.ID, Role: domain.RoleOwner}, victim.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}

	// Soft-deleted users vanish from reads.
	if _, err := repo.FindByID(context.Background(), victim.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected deleted user to be hidden, got %v", err)
	}
}

func TestUserService_List_OwnerOnlyWithPagination(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, testLogger())

	owner := seedUser(t, repo, "owner", domain.RoleOwner)
	for _, name := range []string{"u1", "u2", "u3"} {
		seedUser(t, repo, name, domain.RoleStandard)
	}

	if _, err := svc.List(context.Background(), ports.Caller{ID: "x", Role: domain.RoleStandard}, ports.ListUsersInput{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner list, got %v", err)
	}

	page, err := svc.List(context.Background(), ports.Caller{ID: owner.ID, Role: domain.RoleOwner}, ports.ListUsersInput{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Total != 4 || len(page.Items) != 2 || page.TotalPages != 2 {
		t.Fatalf("unexpected page: total=%d items=%d pages=%d", page.Total, len(page.Items), page.TotalPages)
	}

	// A page past the end is empty, not an error.
	page, err = svc.List(context.Background(), ports.Caller{ID: owner.ID, Role: domain.RoleOwner}, ports.ListUsersInput{Page: 9, Limit: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("expected empty page, got %d items", len(page.Items))
	}
}
