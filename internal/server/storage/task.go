package storage

import (
	"context"

	"github.com/iudanet/taskkeeper/internal/models"
)

// TaskStorage defines interface for task persistence.
// Every method except CreateTask is scoped to the owner: a task of another
// user behaves exactly like a missing one.
type TaskStorage interface {
	// CreateTask stores a new task
	CreateTask(ctx context.Context, task *models.Task) error

	// GetTask retrieves task by ID
	// Returns ErrTaskNotFound if task doesn't exist or belongs to another user
	GetTask(ctx context.Context, ownerID, taskID string) (*models.Task, error)

	// ListTasks retrieves owner's tasks matching filter in the given order
	// Returns empty slice if no tasks found
	ListTasks(ctx context.Context, ownerID string, filter models.TaskFilter, sort models.TaskSort) ([]*models.Task, error)

	// UpdateTask replaces mutable fields of the task identified by task.ID and task.UserID
	// Returns ErrTaskNotFound if no such task exists for the owner
	UpdateTask(ctx context.Context, task *models.Task) error

	// DeleteTask deletes task by ID
	// Returns ErrTaskNotFound if no such task exists for the owner
	DeleteTask(ctx context.Context, ownerID, taskID string) error
}
