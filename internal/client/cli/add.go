package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgapi "github.com/iudanet/taskkeeper/pkg/api"
)

// dueLayouts форматы --due; без зоны время считается локальным
var dueLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseDue(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q: use YYYY-MM-DD, \"YYYY-MM-DD HH:MM\" or RFC3339", s)
}

// optional возвращает nil для пустой строки, чтобы поле не отправлялось
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (c *Cli) runAdd(ctx context.Context, args []string) error {
	var title, desc, due, priority, category, status string

	fs := newFlagSet("add", c.io)
	fs.StringVar(&title, "title", "", "task title (prompted if empty)")
	fs.StringVar(&desc, "desc", "", "description")
	fs.StringVar(&due, "due", "", "due date: YYYY-MM-DD, \"YYYY-MM-DD HH:MM\" or RFC3339")
	fs.StringVar(&priority, "priority", "", "Low, Medium or High (default Low)")
	fs.StringVar(&category, "category", "", "category (default General)")
	fs.StringVar(&status, "status", "", "Pending, In Progress or Completed (default Pending)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	if strings.TrimSpace(title) == "" {
		var err error
		title, err = c.io.ReadInput("Title: ")
		if err != nil {
			return fmt.Errorf("failed to read title: %w", err)
		}
	}

	req := pkgapi.TaskRequest{
		Title:       &title,
		Description: optional(desc),
		Priority:    optional(priority),
		Category:    optional(category),
		Status:      optional(status),
	}
	if due != "" {
		t, err := parseDue(due, time.Local)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		req.DueDate = pkgapi.NewOptionalTime(&t)
	}

	var task *pkgapi.Task
	err := c.withToken(ctx, func(token string) error {
		var err error
		task, err = c.tasks.CreateTask(ctx, token, req)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	c.io.Println("✓ Task added!")
	return taskDetailsTmpl.Execute(c.io, task)
}
