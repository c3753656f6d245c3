package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/YasNanNan2/FutariNote/internal/metrics"
	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/YasNanNan2/FutariNote/internal/repository"
)

var (
	ErrInvalidStampType   = errors.New("unknown stamp type")
	ErrSelfStamp          = errors.New("cannot send a stamp to yourself")
	ErrRecipientNotMember = errors.New("recipient is not a member of the group")
)

type StampService struct {
	stampRepo    repository.StampRepository
	groupRepo    repository.GroupRepository
	timelineRepo repository.TimelineRepository
	metrics      metrics.Recorder
	now          func() time.Time
}

func NewStampService(
	stampRepo repository.StampRepository,
	groupRepo repository.GroupRepository,
	timelineRepo repository.TimelineRepository,
	recorder metrics.Recorder,
) *StampService {
	return &StampService{
		stampRepo:    stampRepo,
		groupRepo:    groupRepo,
		timelineRepo: timelineRepo,
		metrics:      recorder,
		now:          time.Now,
	}
}

// Send persists an immutable stamp event, bumps the group's aggregate
// counter, and records the reaction on the timeline.
func (service *StampService) Send(ctx context.Context, sender models.User, to string, stampType models.StampType, taskID *string) (models.Stamp, error) {
	if !stampType.Valid() {
		return models.Stamp{}, ErrInvalidStampType
	}
	if to == sender.ID {
		return models.Stamp{}, ErrSelfStamp
	}
	if sender.GroupID == nil {
		return models.Stamp{}, ErrNotInGroup
	}

	isMember, err := service.groupRepo.IsMember(ctx, *sender.GroupID, to)
	if err != nil {
		return models.Stamp{}, err
	}
	if !isMember {
		return models.Stamp{}, ErrRecipientNotMember
	}

	stamp, err := service.stampRepo.Create(ctx, models.Stamp{
		GroupID:    *sender.GroupID,
		FromUserID: sender.ID,
		ToUserID:   to,
		StampType:  stampType,
		TaskID:     taskID,
		CreatedAt:  service.now(),
	})
	if err != nil {
		return models.Stamp{}, err
	}

	if err := service.groupRepo.IncrementStampTotal(ctx, stamp.GroupID, stampType); err != nil {
		return models.Stamp{}, err
	}

	if _, err := service.timelineRepo.Create(ctx, models.TimelineEntry{
		GroupID:     stamp.GroupID,
		EntryType:   models.TimelineStampSent,
		ActorUserID: sender.ID,
		RefID:       &stamp.ID,
		Title:       string(stampType),
	}); err != nil {
		slog.Warn("recording stamp on timeline", "error", err)
	}

	service.metrics.RecordStampSent(string(stampType))
	return stamp, nil
}

// WeeklyStats is re-derived from the raw stamp events rather than kept as a
// separate index; fine at the volumes of a household app.
type WeeklyStats struct {
	Counts        map[models.StampType]int `json:"counts"`
	Total         int                      `json:"total"`
	ThankedTaskID []string                 `json:"thankedTaskIds"`
}

func (service *StampService) Weekly(ctx context.Context, groupID string) (WeeklyStats, error) {
	since := service.now().Add(-7 * 24 * time.Hour)
	stamps, err := service.stampRepo.FindSince(ctx, groupID, since)
	if err != nil {
		return WeeklyStats{}, err
	}

	stats := WeeklyStats{Counts: make(map[models.StampType]int, len(models.StampTypes))}
	for _, stampType := range models.StampTypes {
		stats.Counts[stampType] = 0
	}

	thanked := make(map[string]bool)
	for _, stamp := range stamps {
		stats.Counts[stamp.StampType]++
		stats.Total++
		if stamp.TaskID != nil && !thanked[*stamp.TaskID] {
			thanked[*stamp.TaskID] = true
			stats.ThankedTaskID = append(stats.ThankedTaskID, *stamp.TaskID)
		}
	}
	return stats, nil
}
