package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/google/uuid"
)

type TaskFilter struct {
	Month    *string // YYYY-MM
	Date     *string // YYYY-MM-DD
	Assignee *string
	Limit    int
}

type TaskRepository interface {
	FindByID(ctx context.Context, groupID string, id string) (models.Task, error)
	FindAll(ctx context.Context, groupID string, filter TaskFilter) ([]models.Task, error)
	Create(ctx context.Context, task models.Task) (models.Task, error)
	Update(ctx context.Context, task models.Task) error
	SetCompleted(ctx context.Context, groupID string, id string, completedAt *time.Time) error
	SetAssignee(ctx context.Context, groupID string, id string, assignee string) error
	Delete(ctx context.Context, groupID string, id string) error
}

type SQLiteTaskRepository struct {
	database *sql.DB
}

func NewTaskRepository(database *sql.DB) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{database: database}
}

const taskColumns = "id, group_id, title, date, assignee, category, completed, completed_at, created_by, created_at, updated_at"

func (repository *SQLiteTaskRepository) FindByID(ctx context.Context, groupID string, id string) (models.Task, error) {
	var task models.Task
	err := repository.database.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE group_id = ? AND id = ?", groupID, id,
	).Scan(
		&task.ID, &task.GroupID, &task.Title, &task.Date, &task.AssigneeUserID, &task.Category,
		&task.Completed, &task.CompletedAt, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return models.Task{}, fmt.Errorf("finding task by id: %w", err)
	}
	return task, nil
}

func (repository *SQLiteTaskRepository) FindAll(ctx context.Context, groupID string, filter TaskFilter) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE group_id = ?"
	args := []interface{}{groupID}

	if filter.Month != nil {
		query += " AND date LIKE ?"
		args = append(args, *filter.Month+"%")
	}
	if filter.Date != nil {
		query += " AND date = ?"
		args = append(args, *filter.Date)
	}
	if filter.Assignee != nil {
		query += " AND assignee = ?"
		args = append(args, *filter.Assignee)
	}

	query += " ORDER BY date, created_at"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(
			&task.ID, &task.GroupID, &task.Title, &task.Date, &task.AssigneeUserID, &task.Category,
			&task.Completed, &task.CompletedAt, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (repository *SQLiteTaskRepository) Create(ctx context.Context, task models.Task) (models.Task, error) {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		task.ID, task.GroupID, task.Title, task.Date, task.AssigneeUserID, task.Category,
		task.Completed, task.CompletedAt, task.CreatedBy, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return models.Task{}, fmt.Errorf("creating task: %w", err)
	}
	return task, nil
}

func (repository *SQLiteTaskRepository) Update(ctx context.Context, task models.Task) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE tasks SET title = ?, date = ?, assignee = ?, category = ?, updated_at = ? WHERE group_id = ? AND id = ?",
		task.Title, task.Date, task.AssigneeUserID, task.Category, time.Now(), task.GroupID, task.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

// SetCompleted marks or unmarks completion. A nil completedAt clears the
// completion state.
func (repository *SQLiteTaskRepository) SetCompleted(ctx context.Context, groupID string, id string, completedAt *time.Time) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE tasks SET completed = ?, completed_at = ?, updated_at = ? WHERE group_id = ? AND id = ?",
		completedAt != nil, completedAt, time.Now(), groupID, id,
	)
	if err != nil {
		return fmt.Errorf("setting task completion: %w", err)
	}
	return nil
}

func (repository *SQLiteTaskRepository) SetAssignee(ctx context.Context, groupID string, id string, assignee string) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE tasks SET assignee = ?, updated_at = ? WHERE group_id = ? AND id = ?",
		assignee, time.Now(), groupID, id,
	)
	if err != nil {
		return fmt.Errorf("setting task assignee: %w", err)
	}
	return nil
}

func (repository *SQLiteTaskRepository) Delete(ctx context.Context, groupID string, id string) error {
	_, err := repository.database.ExecContext(ctx,
		"DELETE FROM tasks WHERE group_id = ? AND id = ?", groupID, id,
	)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}
