package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/YasNanNan2/FutariNote/internal/metrics"
	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/YasNanNan2/FutariNote/internal/services"
)

func setupStampPair(t *testing.T) (groupFixture, *services.StampService, models.User, models.User) {
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

	stampService := services.NewStampService(fixture.stampRepo, fixture.groupRepo, fixture.timelineRepo, metrics.Noop{})
	return fixture, stampService, reload(t, fixture.userRepo, users[0].ID), reload(t, fixture.userRepo, users[1].ID)
}

func TestStampSend(t *testing.T) {
	fixture, stampService, sender, recipient := setupStampPair(t)
	ctx := context.Background()

	stamp, err := stampService.Send(ctx, sender, recipient.ID, models.StampThanks, nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if stamp.ID == "" {
		t.Error("expected a stamp id")
	}

	totals, err := fixture.groupRepo.StampTotals(ctx, *sender.GroupID)
	if err != nil {
		t.Fatalf("loading totals: %v", err)
	}
	if totals[models.StampThanks] != 1 {
		t.Errorf("thanks total = %d, want 1", totals[models.StampThanks])
	}
	if totals[models.StampLove] != 0 {
		t.Errorf("love total = %d, want 0", totals[models.StampLove])
	}

	entries, err := fixture.timelineRepo.FindAll(ctx, *sender.GroupID, 10)
	if err != nil {
		t.Fatalf("loading timeline: %v", err)
	}
	found := false
	for _, entry := range entries {
		if entry.EntryType == models.TimelineStampSent && entry.RefID != nil && *entry.RefID == stamp.ID {
			found = true
		}
	}
	if !found {
		t.Error("stamp send should appear on the timeline")
	}
}

func TestStampSend_TotalsAccumulate(t *testing.T) {
	fixture, stampService, sender, recipient := setupStampPair(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := stampService.Send(ctx, sender, recipient.ID, models.StampLove, nil); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if _, err := stampService.Send(ctx, recipient, sender.ID, models.StampLove, nil); err != nil {
		t.Fatalf("reply send: %v", err)
	}

	totals, _ := fixture.groupRepo.StampTotals(ctx, *sender.GroupID)
	if totals[models.StampLove] != 4 {
		t.Errorf("love total = %d, want 4", totals[models.StampLove])
	}
}

func TestStampSend_Rejections(t *testing.T) {
	fixture, stampService, sender, recipient := setupStampPair(t)
	ctx := context.Background()

	if _, err := stampService.Send(ctx, sender, recipient.ID, "confetti", nil); !errors.Is(err, services.ErrInvalidStampType) {
		t.Errorf("unknown type: err = %v, want ErrInvalidStampType", err)
	}
	if _, err := stampService.Send(ctx, sender, sender.ID, models.StampThanks, nil); !errors.Is(err, services.ErrSelfStamp) {
		t.Errorf("self stamp: err = %v, want ErrSelfStamp", err)
	}

	outsider, err := fixture.userRepo.Create(ctx, models.User{
		OIDCSubject: "sub-outsider",
		Email:       "outsider@example.com",
		Name:        "Outsider",
	})
	if err != nil {
		t.Fatalf("creating outsider: %v", err)
	}
	if _, err := stampService.Send(ctx, sender, outsider.ID, models.StampThanks, nil); !errors.Is(err, services.ErrRecipientNotMember) {
		t.Errorf("outsider recipient: err = %v, want ErrRecipientNotMember", err)
	}
	if _, err := stampService.Send(ctx, outsider, sender.ID, models.StampThanks, nil); !errors.Is(err, services.ErrNotInGroup) {
		t.Errorf("ungrouped sender: err = %v, want ErrNotInGroup", err)
	}
}

func TestStampWeekly(t *testing.T) {
	_, stampService, sender, recipient := setupStampPair(t)
	ctx := context.Background()

	taskID := "task-1"
	if _, err := stampService.Send(ctx, sender, recipient.ID, models.StampThanks, &taskID); err != nil {
		t.Fatalf("send with task: %v", err)
	}
	if _, err := stampService.Send(ctx, sender, recipient.ID, models.StampStar, &taskID); err != nil {
		t.Fatalf("second send with task: %v", err)
	}
	if _, err := stampService.Send(ctx, recipient, sender.ID, models.StampThanks, nil); err != nil {
		t.Fatalf("send without task: %v", err)
	}

	stats, err := stampService.Weekly(ctx, *sender.GroupID)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.Counts[models.StampThanks] != 2 {
		t.Errorf("thanks count = %d, want 2", stats.Counts[models.StampThanks])
	}
	if stats.Counts[models.StampMuscle] != 0 {
		t.Errorf("muscle count = %d, want 0", stats.Counts[models.StampMuscle])
	}
	if len(stats.ThankedTaskID) != 1 || stats.ThankedTaskID[0] != taskID {
		t.Errorf("thanked tasks = %v, want [%s]", stats.ThankedTaskID, taskID)
	}
}
