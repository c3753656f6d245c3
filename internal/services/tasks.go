package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/YasNanNan2/FutariNote/internal/repository"
)

var (
	ErrTaskAlreadyComplete = errors.New("task is already completed")
	ErrTaskNotComplete     = errors.New("task is not completed")
	ErrAssigneeNotMember   = errors.New("assignee is not a member of the group")
)

type TaskService struct {
	taskRepo     repository.TaskRepository
	groupRepo    repository.GroupRepository
	timelineRepo repository.TimelineRepository
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	groupRepo repository.GroupRepository,
	timelineRepo repository.TimelineRepository,
) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		groupRepo:    groupRepo,
		timelineRepo: timelineRepo,
	}
}

// ValidateAssignee enforces that task assignees are stable member IDs at the
// write boundary. Free-text names and emails are rejected, not coerced.
func (service *TaskService) ValidateAssignee(ctx context.Context, groupID string, assignee string) error {
	isMember, err := service.groupRepo.IsMember(ctx, groupID, assignee)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrAssigneeNotMember
	}
	return nil
}

// Complete marks the task done and writes the matching timeline entry.
func (service *TaskService) Complete(ctx context.Context, groupID string, taskID string, userID string) (models.Task, error) {
	task, err := service.taskRepo.FindByID(ctx, groupID, taskID)
	if err != nil {
		return models.Task{}, err
	}
	if task.Completed {
		return models.Task{}, ErrTaskAlreadyComplete
	}

	now := time.Now()
	if err := service.taskRepo.SetCompleted(ctx, groupID, taskID, &now); err != nil {
		return models.Task{}, err
	}
	task.Completed = true
	task.CompletedAt = &now

	if _, err := service.timelineRepo.Create(ctx, models.TimelineEntry{
		GroupID:     groupID,
		EntryType:   models.TimelineTaskCompleted,
		ActorUserID: userID,
		RefID:       &task.ID,
		Title:       task.Title,
	}); err != nil {
		slog.Warn("recording completion on timeline", "error", err)
	}

	return task, nil
}

// Uncomplete undoes a completion and removes the timeline entry that
// announced it.
func (service *TaskService) Uncomplete(ctx context.Context, groupID string, taskID string) (models.Task, error) {
	task, err := service.taskRepo.FindByID(ctx, groupID, taskID)
	if err != nil {
		return models.Task{}, err
	}
	if !task.Completed {
		return models.Task{}, ErrTaskNotComplete
	}

	if err := service.taskRepo.SetCompleted(ctx, groupID, taskID, nil); err != nil {
		return models.Task{}, err
	}
	task.Completed = false
	task.CompletedAt = nil

	if err := service.timelineRepo.DeleteByRef(ctx, groupID, models.TimelineTaskCompleted, task.ID); err != nil {
		slog.Warn("removing completion from timeline", "error", err)
	}

	return task, nil
}

// ReconcileAssignees is a one-shot migration pass for records written before
// assignees were stable IDs: any task whose assignee matches a member's name
// or email is rewritten to that member's ID. Unmatched values are left alone
// and reported, never silently coerced.
func (service *TaskService) ReconcileAssignees(ctx context.Context, groupID string) (updated int, unmatched []string, err error) {
	members, err := service.groupRepo.Members(ctx, groupID)
	if err != nil {
		return 0, nil, err
	}

	byID := make(map[string]bool, len(members))
	byNameOrEmail := make(map[string]string, len(members)*2)
	for _, member := range members {
		byID[member.UserID] = true
		if member.Name != "" {
			byNameOrEmail[strings.ToLower(member.Name)] = member.UserID
		}
		if member.Email != "" {
			byNameOrEmail[strings.ToLower(member.Email)] = member.UserID
		}
	}

	tasks, err := service.taskRepo.FindAll(ctx, groupID, repository.TaskFilter{})
	if err != nil {
		return 0, nil, err
	}

	for _, task := range tasks {
		if task.AssigneeUserID == "" || byID[task.AssigneeUserID] {
			continue
		}
		userID, ok := byNameOrEmail[strings.ToLower(task.AssigneeUserID)]
		if !ok {
			unmatched = append(unmatched, task.ID)
			continue
		}
		if err := service.taskRepo.SetAssignee(ctx, groupID, task.ID, userID); err != nil {
			return updated, unmatched, fmt.Errorf("rewriting assignee for task %s: %w", task.ID, err)
		}
		updated++
	}

	if updated > 0 || len(unmatched) > 0 {
		slog.Info("reconciled legacy assignees", "group_id", groupID, "updated", updated, "unmatched", len(unmatched))
	}
	return updated, unmatched, nil
}
