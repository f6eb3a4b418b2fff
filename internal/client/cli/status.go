package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/taskkeeper/internal/client/api"
	"github.com/iudanet/taskkeeper/internal/client/auth"
	pkgapi "github.com/iudanet/taskkeeper/pkg/api"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Session Status ===")
	c.io.Println()

	session, err := c.auth.Session(ctx)
	if errors.Is(err, auth.ErrNotAuthenticated) {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'taskkeeper login' to authenticate.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}

	remaining := time.Until(session.ExpiresAt)

	c.io.Println("Status: Authenticated")
	c.io.Printf("User:   %s <%s>\n", session.Name, session.Email)
	if session.Server != "" {
		c.io.Printf("Server: %s\n", session.Server)
	}
	c.io.Printf("Token expires: %s\n", session.ExpiresAt.Local().Format(time.RFC3339))

	if remaining <= 0 {
		c.io.Println("⚠️  Token has expired. Please login again.")
		return nil
	}
	c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))

	return c.checkServerSession(ctx)
}

// checkServerSession спрашивает у сервера, кому принадлежит токен.
// Отозванный токен удаляет локальную сессию, недоступный сервер только печатается.
func (c *Cli) checkServerSession(ctx context.Context) error {
	var user *pkgapi.User
	err := c.withToken(ctx, func(token string) error {
		var err error
		user, err = c.tasks.Me(ctx, token)
		return err
	})
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return fmt.Errorf("server rejected the session: %w", err)
	case err != nil:
		c.io.Printf("Server check: unavailable (%v)\n", err)
		return nil
	}

	c.io.Printf("Server check: ok, signed in as %s <%s>\n", user.Name, user.Email)
	return nil
}
