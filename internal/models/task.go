package models

import (
	"fmt"
	"time"
)

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

// TaskPriority is the importance of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// DefaultCategory is assigned to tasks created without a category.
const DefaultCategory = "General"

// Task представляет задачу пользователя
type Task struct {
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	DueDate     *time.Time   `json:"dueDate"`     // DueDate срок выполнения, nil если не задан
	ID          string       `json:"id"`          // ID уникальный идентификатор задачи (UUID)
	UserID      string       `json:"userId"`      // UserID владелец задачи
	Title       string       `json:"title"`       // Title обязательный заголовок
	Description string       `json:"description"` // Description опциональное описание
	Status      TaskStatus   `json:"status"`      // Status Pending, In Progress или Completed
	Priority    TaskPriority `json:"priority"`    // Priority Low, Medium или High
	Category    string       `json:"category"`    // Category произвольная категория, по умолчанию General
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// NormalizeStatus returns s when it is a known status and StatusPending otherwise.
func NormalizeStatus(s string) TaskStatus {
	if st := TaskStatus(s); st.Valid() {
		return st
	}
	return StatusPending
}

// NormalizePriority returns p when it is a known priority and PriorityLow otherwise.
func NormalizePriority(p string) TaskPriority {
	if pr := TaskPriority(p); pr.Valid() {
		return pr
	}
	return PriorityLow
}

// TaskFilter narrows a task listing. Empty fields do not filter.
// Status and Priority match exactly; Category and Search are
// case-insensitive substring matches on category and title.
type TaskFilter struct {
	Status   string
	Priority string
	Category string
	Search   string
}

// SortField is a task attribute that listings may be ordered by.
type SortField string

const (
	SortByDueDate   SortField = "dueDate"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByTitle     SortField = "title"
	SortByStatus    SortField = "status"
	SortByPriority  SortField = "priority"
	SortByCategory  SortField = "category"
)

var sortFields = map[SortField]struct{}{
	SortByDueDate:   {},
	SortByCreatedAt: {},
	SortByUpdatedAt: {},
	SortByTitle:     {},
	SortByStatus:    {},
	SortByPriority:  {},
	SortByCategory:  {},
}

// TaskSort describes the order of a task listing.
type TaskSort struct {
	Field      SortField
	Descending bool
}

// DefaultTaskSort orders tasks by due date, earliest first.
var DefaultTaskSort = TaskSort{Field: SortByDueDate}

// ParseTaskSort builds a TaskSort from the sortBy/order query values.
// An empty sortBy yields DefaultTaskSort; order "desc" sorts descending.
// Fields outside the fixed set are rejected.
func ParseTaskSort(sortBy, order string) (TaskSort, error) {
	if sortBy == "" {
		return DefaultTaskSort, nil
	}
	field := SortField(sortBy)
	if _, ok := sortFields[field]; !ok {
		return TaskSort{}, fmt.Errorf("unsupported sort field %q", sortBy)
	}
	return TaskSort{Field: field, Descending: order == "desc"}, nil
}
