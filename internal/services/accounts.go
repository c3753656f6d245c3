package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/YasNanNan2/FutariNote/internal/metrics"
	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/YasNanNan2/FutariNote/internal/repository"
)

type DeleteAccountResult struct {
	Success      bool `json:"success"`
	DeletedItems int  `json:"deletedItems"`
}

type AccountService struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	metrics   metrics.Recorder
}

func NewAccountService(groupRepo repository.GroupRepository, userRepo repository.UserRepository, recorder metrics.Recorder) *AccountService {
	return &AccountService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		metrics:   recorder,
	}
}

// DeleteAccount removes the user and, when they are the sole member of their
// group, every record the group owns. The identity record is deleted last so
// a failure mid-cleanup never leaves an identity that can log in but sees a
// half-deleted account.
func (service *AccountService) DeleteAccount(ctx context.Context, user models.User) (DeleteAccountResult, error) {
	deletedItems := 0

	if user.GroupID != nil {
		groupID := *user.GroupID

		memberCount, err := service.groupRepo.MemberCount(ctx, groupID)
		if err != nil {
			return DeleteAccountResult{}, err
		}

		if memberCount > 1 {
			if err := service.groupRepo.RemoveMember(ctx, groupID, user.ID); err != nil {
				return DeleteAccountResult{}, err
			}
			deletedItems = 1
		} else {
			deleted, err := service.groupRepo.DeleteAllData(ctx, groupID)
			if err != nil {
				return DeleteAccountResult{}, err
			}
			deletedItems = deleted
		}
	}

	if err := service.userRepo.Delete(ctx, user.ID); err != nil {
		return DeleteAccountResult{}, fmt.Errorf("deleting identity record: %w", err)
	}

	service.metrics.RecordAccountDeleted(deletedItems)
	slog.Info("account deleted", "user_id", user.ID, "deleted_items", deletedItems)
	return DeleteAccountResult{Success: true, DeletedItems: deletedItems}, nil
}
