package cli

import (
	"context"
	"fmt"
	"strings"
)

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	var yes bool

	fs := newFlagSet("delete", c.io)
	fs.BoolVar(&yes, "y", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: taskkeeper delete [-y] <id>", ErrUsage)
	}
	taskID := fs.Arg(0)

	if !yes {
		confirm, err := c.io.ReadInput(fmt.Sprintf("Delete task %s? (yes/no): ", taskID))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if confirm = strings.ToLower(confirm); confirm != "yes" && confirm != "y" {
			c.io.Println("Deletion cancelled.")
			return nil
		}
	}

	err := c.withToken(ctx, func(token string) error {
		return c.tasks.DeleteTask(ctx, token, taskID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	c.io.Println("✓ Task deleted successfully!")
	return nil
}
