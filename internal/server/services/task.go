package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/storage"
	"github.com/iudanet/taskkeeper/internal/validation"
)

const (
	msgTaskNotFound     = "Task not found."
	msgInvalidSortField = "Invalid sort field."
)

// TaskInput поля новой задачи в том виде, в котором их прислал клиент
type TaskInput struct {
	DueDate     *time.Time
	Title       string
	Description string
	Status      string
	Priority    string
	Category    string
}

// TaskPatch частичное обновление задачи. nil поле не меняется.
// DueDateSet отличает отсутствие dueDate от явного null (очистка срока).
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Category    *string
	DueDate     *time.Time
	DueDateSet  bool
}

// TaskService управляет задачами пользователя. Все операции ограничены владельцем.
type TaskService struct {
	tasks  storage.TaskStorage
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskService создает сервис задач
func NewTaskService(tasks storage.TaskStorage, logger *slog.Logger) *TaskService {
	return &TaskService{
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
}

// ParseSort разбирает параметры sortBy/order; неизвестное поле - ошибка валидации
func ParseSort(sortBy, order string) (models.TaskSort, error) {
	sort, err := models.ParseTaskSort(sortBy, order)
	if err != nil {
		return models.TaskSort{}, NewValidationError(msgInvalidSortField)
	}
	return sort, nil
}

// timestamp текущее время с точностью хранилища
func (s *TaskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func normalizeDueDate(due *time.Time) *time.Time {
	if due == nil {
		return nil
	}
	t := due.UTC().Truncate(time.Millisecond)
	return &t
}

func normalizeCategory(category string) string {
	if c := strings.TrimSpace(category); c != "" {
		return c
	}
	return models.DefaultCategory
}

// Create создает задачу от имени владельца.
// Неизвестные status/priority заменяются значениями по умолчанию.
func (s *TaskService) Create(ctx context.Context, ownerID string, in TaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if err := validation.ValidateTitle(title); err != nil {
		return nil, NewValidationError(err.Error())
	}

	now := s.timestamp()
	task := &models.Task{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Title:       title,
		Description: in.Description,
		DueDate:     normalizeDueDate(in.DueDate),
		Status:      models.NormalizeStatus(in.Status),
		Priority:    models.NormalizePriority(in.Priority),
		Category:    normalizeCategory(in.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.DebugContext(ctx, "task created", slog.String("task_id", task.ID), slog.String("user_id", ownerID))
	return task, nil
}

// Get возвращает задачу владельца
func (s *TaskService) Get(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	task, err := s.tasks.GetTask(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return nil, notFoundError(msgTaskNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// List возвращает задачи владельца по фильтру. Пустой результат - не ошибка.
func (s *TaskService) List(ctx context.Context, ownerID string, filter models.TaskFilter, sort models.TaskSort) ([]*models.Task, error) {
	tasks, err := s.tasks.ListTasks(ctx, ownerID, filter, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	return tasks, nil
}

func validatePatch(p TaskPatch) error {
	if p.Title != nil {
		if err := validation.ValidateTitle(strings.TrimSpace(*p.Title)); err != nil {
			return NewValidationError(err.Error())
		}
	}
	if p.Status != nil {
		if err := validation.ValidateStatus(*p.Status); err != nil {
			return NewValidationError(err.Error())
		}
	}
	if p.Priority != nil {
		if err := validation.ValidatePriority(*p.Priority); err != nil {
			return NewValidationError(err.Error())
		}
	}
	return nil
}

// Update частично обновляет задачу владельца.
// В отличие от Create, недопустимые status/priority отклоняются.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, patch TaskPatch) (*models.Task, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	task, err := s.Get(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.DueDateSet {
		task.DueDate = normalizeDueDate(patch.DueDate)
	}
	if patch.Status != nil {
		task.Status = models.TaskStatus(*patch.Status)
	}
	if patch.Priority != nil {
		task.Priority = models.TaskPriority(*patch.Priority)
	}
	if patch.Category != nil {
		task.Category = normalizeCategory(*patch.Category)
	}
	task.UpdatedAt = s.timestamp()

	if err := s.tasks.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			// задача удалена между чтением и записью
			return nil, notFoundError(msgTaskNotFound)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// UpdateStatus меняет только статус. Переходы между статусами не ограничены.
func (s *TaskService) UpdateStatus(ctx context.Context, ownerID, taskID, status string) (*models.Task, error) {
	return s.Update(ctx, ownerID, taskID, TaskPatch{Status: &status})
}

// Delete удаляет задачу владельца
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) error {
	if err := s.tasks.DeleteTask(ctx, ownerID, taskID); err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return notFoundError(msgTaskNotFound)
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.DebugContext(ctx, "task deleted", slog.String("task_id", taskID), slog.String("user_id", ownerID))
	return nil
}
