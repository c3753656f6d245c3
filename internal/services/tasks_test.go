package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/YasNanNan2/FutariNote/internal/services"
)

func setupTaskPair(t *testing.T) (groupFixture, *services.TaskService, models.User, models.User) {
	t.Helper()
	fixture := setupGroupService(t)
	ctx := context.Background()
	users := createUsers(t, fixture.userRepo, 2)

	invite, err := fixture.inviteService.CreateInviteCode(ctx, users[0])
	if err != nil {
		t.Fatalf("creating invite: %v", err)
	}
	result, err := fixture.groupService.Join(ctx, users[1], invite.Code)
	if err != nil || result.Outcome != services.OutcomeJoined {
		t.Fatalf("forming group: %v %v", result.Outcome, err)
	}

	taskService := services.NewTaskService(fixture.taskRepo, fixture.groupRepo, fixture.timelineRepo)
	return fixture, taskService, reload(t, fixture.userRepo, users[0].ID), reload(t, fixture.userRepo, users[1].ID)
}

func seedTask(t *testing.T, fixture groupFixture, groupID string, owner models.User, assignee string) models.Task {
	t.Helper()
	task, err := fixture.taskRepo.Create(context.Background(), models.Task{
		GroupID:        groupID,
		Title:          "掃除機をかける",
		Date:           "2026-09-01",
		AssigneeUserID: assignee,
		Category:       models.CategoryCleaning,
		CreatedBy:      owner.ID,
	})
	if err != nil {
		t.Fatalf("seeding task: %v", err)
	}
	return task
}

func TestTaskCompleteAndUncomplete(t *testing.T) {
	fixture, taskService, owner, partner := setupTaskPair(t)
	ctx := context.Background()
	groupID := *owner.GroupID

	task := seedTask(t, fixture, groupID, owner, partner.ID)

	completed, err := taskService.Complete(ctx, groupID, task.ID, partner.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !completed.Completed || completed.CompletedAt == nil {
		t.Error("task should be marked completed with a timestamp")
	}

	entries, err := fixture.timelineRepo.FindAll(ctx, groupID, 10)
	if err != nil {
		t.Fatalf("loading timeline: %v", err)
	}
	foundCompletion := false
	for _, entry := range entries {
		if entry.EntryType == models.TimelineTaskCompleted && entry.RefID != nil && *entry.RefID == task.ID {
			foundCompletion = true
		}
	}
	if !foundCompletion {
		t.Error("completion should appear on the timeline")
	}

	if _, err := taskService.Complete(ctx, groupID, task.ID, partner.ID); !errors.Is(err, services.ErrTaskAlreadyComplete) {
		t.Errorf("double complete: err = %v, want ErrTaskAlreadyComplete", err)
	}

	reverted, err := taskService.Uncomplete(ctx, groupID, task.ID)
	if err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	if reverted.Completed || reverted.CompletedAt != nil {
		t.Error("task should no longer be completed")
	}

	entries, _ = fixture.timelineRepo.FindAll(ctx, groupID, 10)
	for _, entry := range entries {
		if entry.EntryType == models.TimelineTaskCompleted && entry.RefID != nil && *entry.RefID == task.ID {
			t.Error("completion entry should be removed after uncomplete")
		}
	}

	if _, err := taskService.Uncomplete(ctx, groupID, task.ID); !errors.Is(err, services.ErrTaskNotComplete) {
		t.Errorf("double uncomplete: err = %v, want ErrTaskNotComplete", err)
	}
}

func TestValidateAssignee(t *testing.T) {
	_, taskService, owner, partner := setupTaskPair(t)
	ctx := context.Background()
	groupID := *owner.GroupID

	if err := taskService.ValidateAssignee(ctx, groupID, partner.ID); err != nil {
		t.Errorf("member assignee rejected: %v", err)
	}
	if err := taskService.ValidateAssignee(ctx, groupID, "not-a-member"); !errors.Is(err, services.ErrAssigneeNotMember) {
		t.Errorf("err = %v, want ErrAssigneeNotMember", err)
	}
	// Display names are not identifiers.
	if err := taskService.ValidateAssignee(ctx, groupID, partner.Name); !errors.Is(err, services.ErrAssigneeNotMember) {
		t.Errorf("name as assignee: err = %v, want ErrAssigneeNotMember", err)
	}
}

func TestReconcileAssignees(t *testing.T) {
	fixture, taskService, owner, partner := setupTaskPair(t)
	ctx := context.Background()
	groupID := *owner.GroupID

	byName := seedTask(t, fixture, groupID, owner, partner.Name)
	byEmail := seedTask(t, fixture, groupID, owner, owner.Email)
	byID := seedTask(t, fixture, groupID, owner, partner.ID)
	orphan := seedTask(t, fixture, groupID, owner, "someone who left")

	updated, unmatched, err := taskService.ReconcileAssignees(ctx, groupID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}
	if len(unmatched) != 1 || unmatched[0] != orphan.ID {
		t.Errorf("unmatched = %v, want [%s]", unmatched, orphan.ID)
	}

	for _, tc := range []struct {
		taskID string
		want   string
	}{
		{byName.ID, partner.ID},
		{byEmail.ID, owner.ID},
		{byID.ID, partner.ID},
		{orphan.ID, "someone who left"},
	} {
		task, err := fixture.taskRepo.FindByID(ctx, groupID, tc.taskID)
		if err != nil {
			t.Fatalf("reloading task: %v", err)
		}
		if task.AssigneeUserID != tc.want {
			t.Errorf("task %s assignee = %q, want %q", tc.taskID, task.AssigneeUserID, tc.want)
		}
	}
}
