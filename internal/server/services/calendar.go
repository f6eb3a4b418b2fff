package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/iudanet/taskkeeper/internal/models"
)

const (
	calendarProductID = "-//taskkeeper//Task Export//EN"
	// EventDuration номинальная длительность события задачи
	EventDuration = 30 * time.Minute

	msgNoTasksToExport = "No tasks found to export."
	msgNoDatedTasks    = "No tasks with a due date to export."
)

// TaskLister выборка задач владельца
type TaskLister interface {
	List(ctx context.Context, ownerID string, filter models.TaskFilter, sort models.TaskSort) ([]*models.Task, error)
}

// CalendarService экспортирует задачи в iCalendar
type CalendarService struct {
	tasks TaskLister
	now   func() time.Time
}

// NewCalendarService создает экспортер календаря
func NewCalendarService(tasks TaskLister) *CalendarService {
	return &CalendarService{tasks: tasks, now: time.Now}
}

// Export строит .ics файл из задач владельца, подходящих под фильтр.
// Задачи без срока пропускаются; если не осталось ни одной - ошибка валидации.
func (c *CalendarService) Export(ctx context.Context, ownerID string, filter models.TaskFilter) ([]byte, error) {
	tasks, err := c.tasks.List(ctx, ownerID, filter, models.DefaultTaskSort)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, NewValidationError(msgNoTasksToExport)
	}

	cal := ics.NewCalendar()
	cal.SetProductId(calendarProductID)
	cal.SetMethod(ics.MethodPublish)

	dated := 0
	for _, task := range tasks {
		if task.DueDate == nil {
			continue
		}
		addEvent(cal, task, c.now())
		dated++
	}
	if dated == 0 {
		return nil, NewValidationError(msgNoDatedTasks)
	}

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func addEvent(cal *ics.Calendar, task *models.Task, now time.Time) {
	start := task.DueDate.UTC()

	event := cal.AddEvent(task.ID + "@taskkeeper")
	event.SetDtStampTime(stampTime(task.UpdatedAt, now))
	event.SetCreatedTime(stampTime(task.CreatedAt, now))
	event.SetModifiedAt(stampTime(task.UpdatedAt, now))
	event.SetStartAt(start)
	event.SetEndAt(start.Add(EventDuration))
	event.SetSummary(task.Title)
	if desc := eventDescription(task); desc != "" {
		event.SetDescription(desc)
	}
	if task.Category != "" {
		event.AddProperty(ics.ComponentPropertyCategories, task.Category)
	}
}

func stampTime(t, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return t
}

// eventDescription собирает заполненные поля задачи через " | "
func eventDescription(task *models.Task) string {
	var parts []string
	if task.Status != "" {
		parts = append(parts, "Status: "+string(task.Status))
	}
	if task.Priority != "" {
		parts = append(parts, "Priority: "+string(task.Priority))
	}
	if task.Category != "" {
		parts = append(parts, "Category: "+task.Category)
	}
	return strings.Join(parts, " | ")
}
