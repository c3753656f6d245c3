package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/YasNanNan2/FutariNote/internal/metrics"
	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/YasNanNan2/FutariNote/internal/repository"
)

// JoinOutcome enumerates every way a join attempt can resolve. Business
// outcomes are values, not errors: the error channel is reserved for
// infrastructure failures.
type JoinOutcome string

const (
	OutcomeJoined                JoinOutcome = "joined"
	OutcomeAlreadyMember         JoinOutcome = "already_member"
	OutcomeAlreadyInAnotherGroup JoinOutcome = "already_in_another_group"
	OutcomeInvalidCode           JoinOutcome = "invalid_code"
	OutcomeExpiredCode           JoinOutcome = "expired_code"
	OutcomeSelfJoin              JoinOutcome = "self_join"
)

type JoinResult struct {
	Outcome   JoinOutcome `json:"outcome"`
	GroupID   string      `json:"groupId,omitempty"`
	CreatedAt time.Time   `json:"createdAt,omitempty"`
}

// ErrNotInGroup is returned by Leave when the user has no group to leave.
var ErrNotInGroup = errors.New("user does not belong to a group")

type GroupService struct {
	groupRepo  repository.GroupRepository
	userRepo   repository.UserRepository
	inviteRepo repository.InviteRepository
	metrics    metrics.Recorder
	now        func() time.Time
}

func NewGroupService(
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	inviteRepo repository.InviteRepository,
	recorder metrics.Recorder,
) *GroupService {
	return &GroupService{
		groupRepo:  groupRepo,
		userRepo:   userRepo,
		inviteRepo: inviteRepo,
		metrics:    recorder,
		now:        time.Now,
	}
}

// Join lets a user enter the group an invite code points at. The first
// successful join converts the issuer's solo state into a real group; later
// joins with the same unexpired code grow the group beyond two members, so
// the code is deliberately not deleted on use.
func (service *GroupService) Join(ctx context.Context, user models.User, code string) (JoinResult, error) {
	result, err := service.join(ctx, user, code)
	if err == nil {
		service.metrics.RecordJoin(string(result.Outcome))
	}
	return result, err
}

func (service *GroupService) join(ctx context.Context, user models.User, code string) (JoinResult, error) {
	invite, err := service.inviteRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return JoinResult{Outcome: OutcomeInvalidCode}, nil
		}
		return JoinResult{}, fmt.Errorf("looking up invite code: %w", err)
	}

	if invite.Expired(service.now()) {
		if err := service.inviteRepo.Delete(ctx, invite.Code); err != nil {
			slog.Warn("deleting expired invite code", "code", invite.Code, "error", err)
		}
		return JoinResult{Outcome: OutcomeExpiredCode}, nil
	}

	if invite.IssuerUserID == user.ID {
		return JoinResult{Outcome: OutcomeSelfJoin}, nil
	}

	issuer, err := service.userRepo.FindByID(ctx, invite.IssuerUserID)
	if err != nil {
		return JoinResult{}, fmt.Errorf("looking up issuer: %w", err)
	}

	// Resolve the target group: the code's bound group wins, then the
	// issuer's current group (a later joiner reusing a code minted before
	// the group existed), then a fresh one.
	groupID := ""
	switch {
	case invite.GroupID != nil:
		groupID = *invite.GroupID
	case issuer.GroupID != nil:
		groupID = *issuer.GroupID
	}

	if user.GroupID != nil && *user.GroupID != groupID {
		return JoinResult{Outcome: OutcomeAlreadyInAnotherGroup}, nil
	}

	groupExists := false
	if groupID != "" {
		groupExists, err = service.groupRepo.Exists(ctx, groupID)
		if err != nil {
			return JoinResult{}, err
		}
	}

	if groupExists {
		isMember, err := service.groupRepo.IsMember(ctx, groupID, user.ID)
		if err != nil {
			return JoinResult{}, err
		}
		if isMember {
			existing, err := service.groupRepo.FindByID(ctx, groupID)
			if err != nil {
				return JoinResult{}, err
			}
			return JoinResult{Outcome: OutcomeAlreadyMember, GroupID: existing.ID, CreatedAt: existing.CreatedAt}, nil
		}
	}

	// All reads are done; every row change commits in one transaction so a
	// failure partway through cannot leave a half-formed group behind.
	write := repository.JoinWrite{
		GroupID:     groupID,
		CreateGroup: !groupExists,
		IssuerID:    issuer.ID,
		BindIssuer:  issuer.GroupID == nil,
		JoinerID:    user.ID,
		TimelineEntry: models.TimelineEntry{
			EntryType:   models.TimelineMemberJoined,
			ActorUserID: user.ID,
			Title:       user.Name,
		},
	}
	if groupExists {
		issuerIsMember, err := service.groupRepo.IsMember(ctx, groupID, issuer.ID)
		if err != nil {
			return JoinResult{}, err
		}
		write.AddIssuer = !issuerIsMember
	} else {
		write.AddIssuer = true
	}

	group, err := service.groupRepo.ApplyJoin(ctx, write)
	if err != nil {
		return JoinResult{}, err
	}

	slog.Info("user joined group", "user_id", user.ID, "group_id", group.ID, "code", code)
	return JoinResult{Outcome: OutcomeJoined, GroupID: group.ID, CreatedAt: group.CreatedAt}, nil
}

// Leave removes the user from their group's membership list. Group data
// stays behind for the remaining members.
func (service *GroupService) Leave(ctx context.Context, user models.User) error {
	if user.GroupID == nil {
		return ErrNotInGroup
	}

	if err := service.groupRepo.RemoveMember(ctx, *user.GroupID, user.ID); err != nil {
		return err
	}
	if err := service.userRepo.SetGroupID(ctx, user.ID, nil); err != nil {
		return err
	}

	slog.Info("user left group", "user_id", user.ID, "group_id", *user.GroupID)
	return nil
}
