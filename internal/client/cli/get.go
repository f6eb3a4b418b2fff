package cli

import (
	"context"
	"fmt"

	pkgapi "github.com/iudanet/taskkeeper/pkg/api"
)

func (c *Cli) runGet(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: taskkeeper get <id>", ErrUsage)
	}
	taskID := args[0]

	var task *pkgapi.Task
	err := c.withToken(ctx, func(token string) error {
		var err error
		task, err = c.tasks.GetTask(ctx, token, taskID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to get task %s: %w", taskID, err)
	}

	return taskDetailsTmpl.Execute(c.io, task)
}
