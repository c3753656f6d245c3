package repository_test

import (
	"context"
	"testing"

	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/YasNanNan2/FutariNote/internal/repository"
	"github.com/YasNanNan2/FutariNote/internal/testutil"
)

func seedUser(t *testing.T, repo *repository.SQLiteUserRepository, name string) models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), models.User{
		OIDCSubject: "sub-" + name,
		Email:       name + "@example.com",
		Name:        name,
	})
	if err != nil {
		t.Fatalf("creating user %s: %v", name, err)
	}
	return user
}

func TestGroupRepository_CreateSeedsZeroTotals(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewGroupRepository(db)
	ctx := context.Background()

	group, err := repo.Create(ctx, "")
	if err != nil {
		t.Fatalf("creating group: %v", err)
	}
	if group.ID == "" {
		t.Fatal("expected non-empty ID")
	}

	totals, err := repo.StampTotals(ctx, group.ID)
	if err != nil {
		t.Fatalf("loading totals: %v", err)
	}
	if len(totals) != len(models.StampTypes) {
		t.Errorf("expected %d stamp type entries, got %d", len(models.StampTypes), len(totals))
	}
	for stampType, count := range totals {
		if count != 0 {
			t.Errorf("total for %s = %d, want 0", stampType, count)
		}
	}
}

func TestGroupRepository_CreateWithExplicitID(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewGroupRepository(db)
	ctx := context.Background()

	group, err := repo.Create(ctx, "group-1")
	if err != nil {
		t.Fatalf("creating group: %v", err)
	}
	if group.ID != "group-1" {
		t.Errorf("id = %s, want group-1", group.ID)
	}

	exists, err := repo.Exists(ctx, "group-1")
	if err != nil {
		t.Fatalf("checking existence: %v", err)
	}
	if !exists {
		t.Error("expected group to exist")
	}
}

func TestGroupRepository_AddMemberRejectsSecondGroup(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, userRepo, "Yuki")
	groupA, _ := groupRepo.Create(ctx, "")
	groupB, _ := groupRepo.Create(ctx, "")

	if err := groupRepo.AddMember(ctx, groupA.ID, user.ID); err != nil {
		t.Fatalf("first membership: %v", err)
	}
	if err := groupRepo.AddMember(ctx, groupB.ID, user.ID); err == nil {
		t.Error("a user must not be able to hold two memberships")
	}

	count, _ := groupRepo.MemberCount(ctx, groupA.ID)
	if count != 1 {
		t.Errorf("group A member count = %d, want 1", count)
	}
}

func TestGroupRepository_MembersOrderedByJoin(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	ctx := context.Background()

	first := seedUser(t, userRepo, "Yuki")
	second := seedUser(t, userRepo, "Haru")
	group, _ := groupRepo.Create(ctx, "")

	if err := groupRepo.AddMember(ctx, group.ID, first.ID); err != nil {
		t.Fatalf("adding first member: %v", err)
	}
	if err := groupRepo.AddMember(ctx, group.ID, second.ID); err != nil {
		t.Fatalf("adding second member: %v", err)
	}

	members, err := groupRepo.Members(ctx, group.ID)
	if err != nil {
		t.Fatalf("loading members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("member count = %d, want 2", len(members))
	}
	if members[0].UserID != first.ID || members[1].UserID != second.ID {
		t.Errorf("members out of join order: %s, %s", members[0].UserID, members[1].UserID)
	}
}

func TestGroupRepository_IncrementStampTotal(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewGroupRepository(db)
	ctx := context.Background()

	group, _ := repo.Create(ctx, "")

	for i := 0; i < 3; i++ {
		if err := repo.IncrementStampTotal(ctx, group.ID, models.StampThanks); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}
	if err := repo.IncrementStampTotal(ctx, group.ID, models.StampLove); err != nil {
		t.Fatalf("increment love: %v", err)
	}

	totals, err := repo.StampTotals(ctx, group.ID)
	if err != nil {
		t.Fatalf("loading totals: %v", err)
	}
	if totals[models.StampThanks] != 3 {
		t.Errorf("thanks total = %d, want 3", totals[models.StampThanks])
	}
	if totals[models.StampLove] != 1 {
		t.Errorf("love total = %d, want 1", totals[models.StampLove])
	}
}

func TestGroupRepository_DeleteAllData(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	ctx := context.Background()

	user := seedUser(t, userRepo, "Yuki")
	group, _ := groupRepo.Create(ctx, "")
	if err := groupRepo.AddMember(ctx, group.ID, user.ID); err != nil {
		t.Fatalf("adding member: %v", err)
	}
	if _, err := taskRepo.Create(ctx, models.Task{
		GroupID:   group.ID,
		Title:     "ごみ出し",
		Date:      "2026-09-01",
		Category:  models.CategoryOther,
		CreatedBy: user.ID,
	}); err != nil {
		t.Fatalf("creating task: %v", err)
	}

	deleted, err := groupRepo.DeleteAllData(ctx, group.ID)
	if err != nil {
		t.Fatalf("deleting group data: %v", err)
	}
	// task + stamp total rows + membership + group record
	want := 1 + len(models.StampTypes) + 1 + 1
	if deleted != want {
		t.Errorf("deleted rows = %d, want %d", deleted, want)
	}

	exists, _ := groupRepo.Exists(ctx, group.ID)
	if exists {
		t.Error("group should be gone")
	}
	tasks, _ := taskRepo.FindAll(ctx, group.ID, repository.TaskFilter{})
	if len(tasks) != 0 {
		t.Errorf("tasks remaining = %d, want 0", len(tasks))
	}
}
