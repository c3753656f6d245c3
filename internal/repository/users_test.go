package repository_test

import (
	"context"
	"testing"

	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/YasNanNan2/FutariNote/internal/repository"
	"github.com/YasNanNan2/FutariNote/internal/testutil"
)

func TestUserRepository_CreateAndFindByID(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.User{
		OIDCSubject: "sub-123",
		Email:       "yuki@example.com",
		Name:        "Yuki",
		Color:       models.MemberColors[0],
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected non-empty ID")
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("finding user: %v", err)
	}
	if found.Name != "Yuki" {
		t.Errorf("name = %q, want Yuki", found.Name)
	}
	if found.Color != models.MemberColors[0] {
		t.Errorf("color = %q, want %q", found.Color, models.MemberColors[0])
	}
	if found.GroupID != nil {
		t.Error("new user must not belong to a group")
	}
}

func TestUserRepository_FindByOIDCSubject(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	repo.Create(ctx, models.User{
		OIDCSubject: "unique-subject",
		Email:       "haru@example.com",
		Name:        "Haru",
	})

	found, err := repo.FindByOIDCSubject(ctx, "unique-subject")
	if err != nil {
		t.Fatalf("finding user by subject: %v", err)
	}
	if found.Email != "haru@example.com" {
		t.Errorf("email = %q", found.Email)
	}

	if _, err := repo.FindByOIDCSubject(ctx, "missing-subject"); err == nil {
		t.Error("expected error for unknown subject")
	}
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user, _ := repo.Create(ctx, models.User{
		OIDCSubject: "sub-1",
		Email:       "mio@example.com",
		Name:        "Mio",
		Color:       models.MemberColors[0],
	})

	if err := repo.UpdateProfile(ctx, user.ID, "みお", models.MemberColors[2]); err != nil {
		t.Fatalf("updating profile: %v", err)
	}

	found, _ := repo.FindByID(ctx, user.ID)
	if found.Name != "みお" || found.Color != models.MemberColors[2] {
		t.Errorf("profile update lost: %+v", found)
	}
	if found.Email != "mio@example.com" {
		t.Error("profile update must not touch the email")
	}
}

func TestUserRepository_SetGroupID(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user, _ := repo.Create(ctx, models.User{
		OIDCSubject: "sub-1",
		Email:       "ren@example.com",
		Name:        "Ren",
	})

	groupID := "group-1"
	if err := repo.SetGroupID(ctx, user.ID, &groupID); err != nil {
		t.Fatalf("setting group id: %v", err)
	}
	found, _ := repo.FindByID(ctx, user.ID)
	if found.GroupID == nil || *found.GroupID != groupID {
		t.Errorf("group id = %v, want %s", found.GroupID, groupID)
	}

	if err := repo.SetGroupID(ctx, user.ID, nil); err != nil {
		t.Fatalf("clearing group id: %v", err)
	}
	found, _ = repo.FindByID(ctx, user.ID)
	if found.GroupID != nil {
		t.Error("group id should be cleared")
	}
}

func TestUserRepository_DeleteAndCount(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	first, _ := repo.Create(ctx, models.User{OIDCSubject: "sub-1", Email: "a@example.com", Name: "A"})
	repo.Create(ctx, models.User{OIDCSubject: "sub-2", Email: "b@example.com", Name: "B"})

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("counting users: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("deleting user: %v", err)
	}
	count, _ = repo.Count(ctx)
	if count != 1 {
		t.Errorf("count after delete = %d, want 1", count)
	}
}
