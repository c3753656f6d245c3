package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/google/uuid"
)

type StampRepository interface {
	Create(ctx context.Context, stamp models.Stamp) (models.Stamp, error)
	FindAll(ctx context.Context, groupID string, limit int) ([]models.Stamp, error)
	FindSince(ctx context.Context, groupID string, since time.Time) ([]models.Stamp, error)
}

type SQLiteStampRepository struct {
	database *sql.DB
}

func NewStampRepository(database *sql.DB) *SQLiteStampRepository {
	return &SQLiteStampRepository{database: database}
}

const stampColumns = "id, group_id, from_user_id, to_user_id, stamp_type, task_id, created_at"

func (repository *SQLiteStampRepository) Create(ctx context.Context, stamp models.Stamp) (models.Stamp, error) {
	if stamp.ID == "" {
		stamp.ID = uuid.New().String()
	}
	if stamp.CreatedAt.IsZero() {
		stamp.CreatedAt = time.Now()
	}

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO stamps ("+stampColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		stamp.ID, stamp.GroupID, stamp.FromUserID, stamp.ToUserID, stamp.StampType, stamp.TaskID, stamp.CreatedAt,
	)
	if err != nil {
		return models.Stamp{}, fmt.Errorf("creating stamp: %w", err)
	}
	return stamp, nil
}

func (repository *SQLiteStampRepository) FindAll(ctx context.Context, groupID string, limit int) ([]models.Stamp, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+stampColumns+" FROM stamps WHERE group_id = ? ORDER BY created_at DESC LIMIT ?",
		groupID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("finding stamps: %w", err)
	}
	return scanStamps(rows)
}

func (repository *SQLiteStampRepository) FindSince(ctx context.Context, groupID string, since time.Time) ([]models.Stamp, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+stampColumns+" FROM stamps WHERE group_id = ? AND created_at >= ? ORDER BY created_at DESC",
		groupID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("finding stamps since: %w", err)
	}
	return scanStamps(rows)
}

func scanStamps(rows *sql.Rows) ([]models.Stamp, error) {
	defer rows.Close()

	var stamps []models.Stamp
	for rows.Next() {
		var stamp models.Stamp
		if err := rows.Scan(
			&stamp.ID, &stamp.GroupID, &stamp.FromUserID, &stamp.ToUserID,
			&stamp.StampType, &stamp.TaskID, &stamp.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning stamp: %w", err)
		}
		stamps = append(stamps, stamp)
	}
	return stamps, rows.Err()
}
