package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	pkgapi "github.com/iudanet/taskkeeper/pkg/api"
)

// runEdit отправляет PATCH только с полями, флаги которых переданы.
// Пустое значение --desc очищает описание, --no-due снимает срок.
func (c *Cli) runEdit(ctx context.Context, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return fmt.Errorf("%w: taskkeeper edit <id> [flags]", ErrUsage)
	}
	taskID := args[0]

	var title, desc, due, priority, category, status string
	var noDue bool

	fs := newFlagSet("edit", c.io)
	fs.StringVar(&title, "title", "", "new title")
	fs.StringVar(&desc, "desc", "", "new description, empty clears it")
	fs.StringVar(&due, "due", "", "new due date: YYYY-MM-DD, \"YYYY-MM-DD HH:MM\" or RFC3339")
	fs.BoolVar(&noDue, "no-due", false, "remove the due date")
	fs.StringVar(&priority, "priority", "", "Low, Medium or High")
	fs.StringVar(&category, "category", "", "new category")
	fs.StringVar(&status, "status", "", "Pending, In Progress or Completed")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %q", ErrUsage, fs.Args())
	}

	req, err := editRequest(fs, title, desc, priority, category, status)
	if err != nil {
		return err
	}

	switch {
	case noDue && due != "":
		return fmt.Errorf("%w: --due and --no-due are mutually exclusive", ErrUsage)
	case noDue:
		req.DueDate = pkgapi.NewOptionalTime(nil)
	case due != "":
		t, err := parseDue(due, time.Local)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		req.DueDate = pkgapi.NewOptionalTime(&t)
	}

	if req == (pkgapi.TaskRequest{}) {
		return fmt.Errorf("%w: nothing to change, pass at least one flag", ErrUsage)
	}

	var task *pkgapi.Task
	err = c.withToken(ctx, func(token string) error {
		var err error
		task, err = c.tasks.UpdateTask(ctx, token, taskID, req)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", taskID, err)
	}

	c.io.Println("✓ Task updated!")
	return taskDetailsTmpl.Execute(c.io, task)
}

// editRequest переносит в запрос строковые флаги, явно заданные в командной строке
func editRequest(fs *flag.FlagSet, title, desc, priority, category, status string) (pkgapi.TaskRequest, error) {
	var req pkgapi.TaskRequest
	var err error

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			if strings.TrimSpace(title) == "" {
				err = fmt.Errorf("%w: --title cannot be empty", ErrUsage)
				return
			}
			req.Title = &title
		case "desc":
			req.Description = &desc
		case "priority":
			req.Priority = &priority
		case "category":
			req.Category = &category
		case "status":
			req.Status = &status
		}
	})

	return req, err
}
