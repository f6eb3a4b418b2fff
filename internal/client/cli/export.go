package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/iudanet/taskkeeper/internal/client/api"
)

func (c *Cli) runExport(ctx context.Context, args []string) error {
	var opts api.ListOptions
	var output string
	var link bool

	fs := newFlagSet("export", c.io)
	filterFlags(fs, &opts)
	fs.StringVar(&output, "o", "", "write calendar to file instead of stdout")
	fs.BoolVar(&link, "link", false, "publish calendar and print a temporary download link")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	if link {
		return c.publish(ctx, opts)
	}

	var data []byte
	err := c.withToken(ctx, func(token string) error {
		var err error
		data, err = c.tasks.ExportICS(ctx, token, opts)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to export tasks: %w", err)
	}

	if output == "" {
		_, err := c.io.Write(data)
		return err
	}

	if err := os.WriteFile(output, data, 0o600); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	c.io.Printf("✓ Calendar saved to %s (%d bytes)\n", output, len(data))
	return nil
}

func (c *Cli) publish(ctx context.Context, opts api.ListOptions) error {
	err := c.withToken(ctx, func(token string) error {
		resp, err := c.tasks.PublishICS(ctx, token, opts)
		if err != nil {
			return err
		}
		c.io.Println("✓ Calendar published")
		c.io.Printf("URL:     %s\n", resp.URL)
		c.io.Printf("Expires: %s\n", resp.ExpiresAt.Local().Format(time.RFC3339))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish calendar: %w", err)
	}
	return nil
}
