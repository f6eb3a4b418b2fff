package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/iudanet/taskkeeper/internal/client/api"
	pkgapi "github.com/iudanet/taskkeeper/pkg/api"
)

// filterFlags регистрирует флаги фильтрации, общие для list и export
func filterFlags(fs *flag.FlagSet, opts *api.ListOptions) {
	fs.StringVar(&opts.Status, "status", "", "exact status: Pending, In Progress, Completed")
	fs.StringVar(&opts.Priority, "priority", "", "exact priority: Low, Medium, High")
	fs.StringVar(&opts.Category, "category", "", "category substring, case-insensitive")
	fs.StringVar(&opts.Search, "search", "", "title substring, case-insensitive")
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func (c *Cli) runList(ctx context.Context, args []string) error {
	var opts api.ListOptions
	var desc bool

	fs := newFlagSet("list", c.io)
	filterFlags(fs, &opts)
	fs.StringVar(&opts.SortBy, "sort", "", "sort field: dueDate, createdAt, updatedAt, title, status, priority, category")
	fs.BoolVar(&desc, "desc", false, "sort descending")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if desc {
		opts.Order = "desc"
	}

	var tasks []pkgapi.Task
	err := c.withToken(ctx, func(token string) error {
		var err error
		tasks, err = c.tasks.ListTasks(ctx, token, opts)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	c.io.Println("=== Tasks ===")
	if len(tasks) == 0 {
		c.io.Println()
		c.io.Println("No tasks found.")
		c.io.Println("Use 'taskkeeper add --title ...' to add your first task.")
		return nil
	}

	c.io.Printf("Found %d task(s):\n", len(tasks))
	return taskListTmpl.Execute(c.io, tasks)
}
