package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/services"
	"github.com/iudanet/taskkeeper/pkg/api"
)

// TaskManager операции над задачами владельца
type TaskManager interface {
	Create(ctx context.Context, ownerID string, in services.TaskInput) (*models.Task, error)
	Get(ctx context.Context, ownerID, taskID string) (*models.Task, error)
	List(ctx context.Context, ownerID string, filter models.TaskFilter, sort models.TaskSort) ([]*models.Task, error)
	Update(ctx context.Context, ownerID, taskID string, patch services.TaskPatch) (*models.Task, error)
	UpdateStatus(ctx context.Context, ownerID, taskID, status string) (*models.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) error
}

// TaskHandler обрабатывает CRUD запросы задач.
// Все маршруты за AuthMiddleware; владелец берется из контекста.
type TaskHandler struct {
	responder
	tasks TaskManager
}

// NewTaskHandler создает handler задач
func NewTaskHandler(logger *slog.Logger, tasks TaskManager, timeout time.Duration) *TaskHandler {
	return &TaskHandler{
		responder: responder{logger: logger, timeout: timeout},
		tasks:     tasks,
	}
}

// owner возвращает id пользователя из контекста или отвечает 401
func (h responder) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := GetIdentity(r.Context())
	if !ok || id.UserID == "" {
		h.sendError(w, "No token provided.", http.StatusUnauthorized)
		return "", false
	}
	return id.UserID, true
}

// filterFromQuery читает status, priority, category и search
func filterFromQuery(q url.Values) models.TaskFilter {
	return models.TaskFilter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
}

func toAPITask(t *models.Task) api.Task {
	return api.Task{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Category:    t.Category,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// List обрабатывает GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	sort, err := services.ParseSort(q.Get("sortBy"), q.Get("order"))
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "parse sort")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	tasks, err := h.tasks.List(ctx, ownerID, filterFromQuery(q), sort)
	if err != nil {
		h.writeServiceError(ctx, w, err, "list tasks")
		return
	}

	resp := make([]api.Task, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toAPITask(t))
	}
	h.sendJSON(w, resp, http.StatusOK)
}

// Create обрабатывает POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req api.TaskRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	task, err := h.tasks.Create(ctx, ownerID, services.TaskInput{
		Title:       deref(req.Title),
		Description: deref(req.Description),
		DueDate:     req.DueDate.Time,
		Status:      deref(req.Status),
		Priority:    deref(req.Priority),
		Category:    deref(req.Category),
	})
	if err != nil {
		h.writeServiceError(ctx, w, err, "create task")
		return
	}

	h.sendJSON(w, toAPITask(task), http.StatusCreated)
}

// Get обрабатывает GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	task, err := h.tasks.Get(ctx, ownerID, r.PathValue("id"))
	if err != nil {
		h.writeServiceError(ctx, w, err, "get task")
		return
	}

	h.sendJSON(w, toAPITask(task), http.StatusOK)
}

// Update обрабатывает PATCH и PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req api.TaskRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	task, err := h.tasks.Update(ctx, ownerID, r.PathValue("id"), services.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Category:    req.Category,
		DueDate:     req.DueDate.Time,
		DueDateSet:  req.DueDate.Set,
	})
	if err != nil {
		h.writeServiceError(ctx, w, err, "update task")
		return
	}

	h.sendJSON(w, toAPITask(task), http.StatusOK)
}

// UpdateStatus обрабатывает PUT /api/tasks/{id}/status
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req api.StatusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	task, err := h.tasks.UpdateStatus(ctx, ownerID, r.PathValue("id"), req.Status)
	if err != nil {
		h.writeServiceError(ctx, w, err, "update task status")
		return
	}

	h.sendJSON(w, toAPITask(task), http.StatusOK)
}

// Delete обрабатывает DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.tasks.Delete(ctx, ownerID, r.PathValue("id")); err != nil {
		h.writeServiceError(ctx, w, err, "delete task")
		return
	}

	h.sendJSON(w, api.MessageResponse{Message: "Task deleted successfully"}, http.StatusOK)
}
