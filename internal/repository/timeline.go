package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/google/uuid"
)

type TimelineRepository interface {
	Create(ctx context.Context, entry models.TimelineEntry) (models.TimelineEntry, error)
	FindAll(ctx context.Context, groupID string, limit int) ([]models.TimelineEntry, error)
	DeleteByRef(ctx context.Context, groupID string, entryType models.TimelineEntryType, refID string) error
}

type SQLiteTimelineRepository struct {
	database *sql.DB
}

func NewTimelineRepository(database *sql.DB) *SQLiteTimelineRepository {
	return &SQLiteTimelineRepository{database: database}
}

func (repository *SQLiteTimelineRepository) Create(ctx context.Context, entry models.TimelineEntry) (models.TimelineEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO timeline (id, group_id, entry_type, actor_user_id, ref_id, title, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		entry.ID, entry.GroupID, entry.EntryType, entry.ActorUserID, entry.RefID, entry.Title, entry.CreatedAt,
	)
	if err != nil {
		return models.TimelineEntry{}, fmt.Errorf("creating timeline entry: %w", err)
	}
	return entry, nil
}

func (repository *SQLiteTimelineRepository) FindAll(ctx context.Context, groupID string, limit int) ([]models.TimelineEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := repository.database.QueryContext(ctx,
		"SELECT id, group_id, entry_type, actor_user_id, ref_id, title, created_at FROM timeline WHERE group_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?",
		groupID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("finding timeline entries: %w", err)
	}
	defer rows.Close()

	var entries []models.TimelineEntry
	for rows.Next() {
		var entry models.TimelineEntry
		if err := rows.Scan(
			&entry.ID, &entry.GroupID, &entry.EntryType, &entry.ActorUserID,
			&entry.RefID, &entry.Title, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning timeline entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeleteByRef removes entries referencing another record, used when a task
// completion is undone.
func (repository *SQLiteTimelineRepository) DeleteByRef(ctx context.Context, groupID string, entryType models.TimelineEntryType, refID string) error {
	_, err := repository.database.ExecContext(ctx,
		"DELETE FROM timeline WHERE group_id = ? AND entry_type = ? AND ref_id = ?",
		groupID, entryType, refID,
	)
	if err != nil {
		return fmt.Errorf("deleting timeline entries: %w", err)
	}
	return nil
}
