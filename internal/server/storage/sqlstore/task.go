package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/storage"
)

type taskRow struct {
	ID          string        `db:"id"`
	UserID      string        `db:"user_id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	DueDate     sql.NullInt64 `db:"due_date"`
	Status      string        `db:"status"`
	Priority    string        `db:"priority"`
	Category    string        `db:"category"`
	CreatedAt   int64         `db:"created_at"`
	UpdatedAt   int64         `db:"updated_at"`
}

func (r taskRow) toModel() *models.Task {
	t := &models.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Status:      models.TaskStatus(r.Status),
		Priority:    models.TaskPriority(r.Priority),
		Category:    r.Category,
		CreatedAt:   time.UnixMilli(r.CreatedAt).UTC(),
		UpdatedAt:   time.UnixMilli(r.UpdatedAt).UTC(),
	}
	if r.DueDate.Valid {
		due := time.UnixMilli(r.DueDate.Int64).UTC()
		t.DueDate = &due
	}
	return t
}

func dueDateValue(due *time.Time) sql.NullInt64 {
	if due == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: due.UnixMilli(), Valid: true}
}

// CreateTask stores a new task
func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	query := s.db.Rebind(`
		INSERT INTO tasks (` + taskColumns + `, title_lower, category_lower)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		dueDateValue(task.DueDate),
		string(task.Status),
		string(task.Priority),
		task.Category,
		task.CreatedAt.UnixMilli(),
		task.UpdatedAt.UnixMilli(),
		foldCase(task.Title),
		foldCase(task.Category),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// GetTask retrieves owner's task by ID
func (s *Storage) GetTask(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	query := s.db.Rebind(`
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = ? AND user_id = ?
	`)

	var row taskRow
	if err := s.db.GetContext(ctx, &row, query, taskID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return row.toModel(), nil
}

// ListTasks retrieves owner's tasks matching filter
func (s *Storage) ListTasks(ctx context.Context, ownerID string, filter models.TaskFilter, sort models.TaskSort) ([]*models.Task, error) {
	query, args := buildListQuery(ownerID, filter, sort)

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*models.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toModel())
	}

	return tasks, nil
}

// UpdateTask replaces mutable fields of owner's task
func (s *Storage) UpdateTask(ctx context.Context, task *models.Task) error {
	query := s.db.Rebind(`
		UPDATE tasks
		SET title = ?, description = ?, due_date = ?, status = ?, priority = ?, category = ?, updated_at = ?,
			title_lower = ?, category_lower = ?
		WHERE id = ? AND user_id = ?
	`)

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		dueDateValue(task.DueDate),
		string(task.Status),
		string(task.Priority),
		task.Category,
		task.UpdatedAt.UnixMilli(),
		foldCase(task.Title),
		foldCase(task.Category),
		task.ID,
		task.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrTaskNotFound
	}

	return nil
}

// DeleteTask deletes owner's task by ID
func (s *Storage) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	query := s.db.Rebind(`DELETE FROM tasks WHERE id = ? AND user_id = ?`)

	result, err := s.db.ExecContext(ctx, query, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrTaskNotFound
	}

	return nil
}
