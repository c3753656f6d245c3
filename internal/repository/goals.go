package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/google/uuid"
)

type GoalRepository interface {
	FindByID(ctx context.Context, groupID string, id string) (models.Goal, error)
	FindAll(ctx context.Context, groupID string) ([]models.Goal, error)
	Create(ctx context.Context, goal models.Goal) (models.Goal, error)
	Update(ctx context.Context, goal models.Goal) error
	Delete(ctx context.Context, groupID string, id string) error
}

type SQLiteGoalRepository struct {
	database *sql.DB
}

func NewGoalRepository(database *sql.DB) *SQLiteGoalRepository {
	return &SQLiteGoalRepository{database: database}
}

const goalColumns = "id, group_id, title, deadline, icon, target_amount, current_amount, achieved, achieved_at, created_by, created_at"

func (repository *SQLiteGoalRepository) FindByID(ctx context.Context, groupID string, id string) (models.Goal, error) {
	var goal models.Goal
	err := repository.database.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE group_id = ? AND id = ?", groupID, id,
	).Scan(
		&goal.ID, &goal.GroupID, &goal.Title, &goal.Deadline, &goal.Icon,
		&goal.TargetAmount, &goal.CurrentAmount, &goal.Achieved, &goal.AchievedAt,
		&goal.CreatedBy, &goal.CreatedAt,
	)
	if err != nil {
		return models.Goal{}, fmt.Errorf("finding goal by id: %w", err)
	}
	return goal, nil
}

func (repository *SQLiteGoalRepository) FindAll(ctx context.Context, groupID string) ([]models.Goal, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE group_id = ? ORDER BY deadline, created_at", groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var goal models.Goal
		if err := rows.Scan(
			&goal.ID, &goal.GroupID, &goal.Title, &goal.Deadline, &goal.Icon,
			&goal.TargetAmount, &goal.CurrentAmount, &goal.Achieved, &goal.AchievedAt,
			&goal.CreatedBy, &goal.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

func (repository *SQLiteGoalRepository) Create(ctx context.Context, goal models.Goal) (models.Goal, error) {
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	goal.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO goals ("+goalColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		goal.ID, goal.GroupID, goal.Title, goal.Deadline, goal.Icon,
		goal.TargetAmount, goal.CurrentAmount, goal.Achieved, goal.AchievedAt,
		goal.CreatedBy, goal.CreatedAt,
	)
	if err != nil {
		return models.Goal{}, fmt.Errorf("creating goal: %w", err)
	}
	return goal, nil
}

func (repository *SQLiteGoalRepository) Update(ctx context.Context, goal models.Goal) error {
	_, err := repository.database.ExecContext(ctx,
		`UPDATE goals SET title = ?, deadline = ?, icon = ?, target_amount = ?,
			current_amount = ?, achieved = ?, achieved_at = ?
		WHERE group_id = ? AND id = ?`,
		goal.Title, goal.Deadline, goal.Icon, goal.TargetAmount,
		goal.CurrentAmount, goal.Achieved, goal.AchievedAt,
		goal.GroupID, goal.ID,
	)
	if err != nil {
		return fmt.Errorf("updating goal: %w", err)
	}
	return nil
}

func (repository *SQLiteGoalRepository) Delete(ctx context.Context, groupID string, id string) error {
	_, err := repository.database.ExecContext(ctx,
		"DELETE FROM goals WHERE group_id = ? AND id = ?", groupID, id,
	)
	if err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}
	return nil
}
