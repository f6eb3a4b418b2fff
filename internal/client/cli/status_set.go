package cli

import (
	"context"
	"fmt"
	"strings"

	pkgapi "github.com/iudanet/taskkeeper/pkg/api"
)

func (c *Cli) runDone(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: taskkeeper done <id>", ErrUsage)
	}
	return c.setStatus(ctx, args[0], "Completed")
}

func (c *Cli) runStatusSet(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: taskkeeper status-set <id> <status>", ErrUsage)
	}
	// "In Progress" можно передать без кавычек
	return c.setStatus(ctx, args[0], strings.Join(args[1:], " "))
}

func (c *Cli) setStatus(ctx context.Context, id, status string) error {
	var task *pkgapi.Task
	err := c.withToken(ctx, func(token string) error {
		var err error
		task, err = c.tasks.SetStatus(ctx, token, id, status)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}

	c.io.Printf("✓ %s: %s\n", task.Title, task.Status)
	return nil
}
