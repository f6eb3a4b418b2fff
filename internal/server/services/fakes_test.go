package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryUsers in-memory реализация storage.UserStorage
type memoryUsers struct {
	byEmail map[string]*models.User
	err     error
	mu      sync.Mutex
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: make(map[string]*models.User)}
}

func (m *memoryUsers) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return storage.ErrUserAlreadyExists
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

// memoryTasks in-memory реализация storage.TaskStorage.
// Сортировка упрощена: только по due date (без срока - в конце) и createdAt.
type memoryTasks struct {
	tasks   map[string]*models.Task
	listErr error
	mu      sync.Mutex
}

func newMemoryTasks() *memoryTasks {
	return &memoryTasks{tasks: make(map[string]*models.Task)}
}

func (m *memoryTasks) CreateTask(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memoryTasks) GetTask(_ context.Context, ownerID, taskID string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return nil, storage.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memoryTasks) ListTasks(_ context.Context, ownerID string, f models.TaskFilter, s models.TaskSort) ([]*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*models.Task
	for _, t := range m.tasks {
		if t.UserID != ownerID {
			continue
		}
		if f.Status != "" && string(t.Status) != f.Status {
			continue
		}
		if f.Priority != "" && string(t.Priority) != f.Priority {
			continue
		}
		if f.Category != "" && !strings.Contains(strings.ToLower(t.Category), strings.ToLower(f.Category)) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if s.Field == models.SortByDueDate && (a.DueDate == nil) != (b.DueDate == nil) {
			return b.DueDate == nil
		}
		if s.Field == models.SortByDueDate && a.DueDate != nil && !a.DueDate.Equal(*b.DueDate) {
			return a.DueDate.Before(*b.DueDate) != s.Descending
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out, nil
}

func (m *memoryTasks) UpdateTask(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return storage.ErrTaskNotFound
	}
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memoryTasks) DeleteTask(_ context.Context, ownerID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return storage.ErrTaskNotFound
	}
	delete(m.tasks, taskID)
	return nil
}

// recordingRevoker запоминает отозванные токены
type recordingRevoker struct {
	revoked map[string]time.Time
	err     error
}

func newRecordingRevoker() *recordingRevoker {
	return &recordingRevoker{revoked: make(map[string]time.Time)}
}

func (r *recordingRevoker) Revoke(_ context.Context, raw string, exp time.Time) error {
	if r.err != nil {
		return r.err
	}
	r.revoked[raw] = exp
	return nil
}
