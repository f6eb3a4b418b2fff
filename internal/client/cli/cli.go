// Package cli команды CLI клиента задач.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/iudanet/taskkeeper/internal/client/api"
	"github.com/iudanet/taskkeeper/internal/client/iocli"
	"github.com/iudanet/taskkeeper/internal/client/storage"
	pkgapi "github.com/iudanet/taskkeeper/pkg/api"
)

// TaskClient запросы к API задач и профилю владельца токена
type TaskClient interface {
	Me(ctx context.Context, token string) (*pkgapi.User, error)
	ListTasks(ctx context.Context, token string, opts api.ListOptions) ([]pkgapi.Task, error)
	CreateTask(ctx context.Context, token string, req pkgapi.TaskRequest) (*pkgapi.Task, error)
	GetTask(ctx context.Context, token, id string) (*pkgapi.Task, error)
	UpdateTask(ctx context.Context, token, id string, req pkgapi.TaskRequest) (*pkgapi.Task, error)
	SetStatus(ctx context.Context, token, id, status string) (*pkgapi.Task, error)
	DeleteTask(ctx context.Context, token, id string) error
	ExportICS(ctx context.Context, token string, opts api.ListOptions) ([]byte, error)
	PublishICS(ctx context.Context, token string, opts api.ListOptions) (*pkgapi.CalendarLinkResponse, error)
}

// AuthService вход, выход и локальная сессия
type AuthService interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (*storage.Session, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*storage.Session, error)
	Token(ctx context.Context) (string, error)
	Forget(ctx context.Context) error
}

// ErrUsage неверные аргументы команды
var ErrUsage = errors.New("invalid usage")

type Cli struct {
	io    iocli.IO
	auth  AuthService
	tasks TaskClient
}

func New(io iocli.IO, authService AuthService, tasks TaskClient) *Cli {
	return &Cli{
		io:    io,
		auth:  authService,
		tasks: tasks,
	}
}

// Run выполняет команду. Неизвестная команда возвращает ErrUsage.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "list":
		return c.runList(ctx, args)
	case "add":
		return c.runAdd(ctx, args)
	case "get":
		return c.runGet(ctx, args)
	case "edit":
		return c.runEdit(ctx, args)
	case "done":
		return c.runDone(ctx, args)
	case "status-set":
		return c.runStatusSet(ctx, args)
	case "delete":
		return c.runDelete(ctx, args)
	case "export":
		return c.runExport(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, command)
	}
}

// withToken вызывает fn с токеном сессии. Если сервер отклонил токен
// (истек или отозван), локальная сессия удаляется.
func (c *Cli) withToken(ctx context.Context, fn func(token string) error) error {
	token, err := c.auth.Token(ctx)
	if err != nil {
		return err
	}

	err = fn(token)
	if errors.Is(err, api.ErrUnauthorized) {
		if forgetErr := c.auth.Forget(ctx); forgetErr != nil {
			return errors.Join(err, forgetErr)
		}
		return fmt.Errorf("%w\nlocal session removed, run 'taskkeeper login' again", err)
	}
	return err
}

func PrintUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `TaskKeeper Client

Usage:
  taskkeeper [OPTIONS] COMMAND [ARGS]

Options:
  --version          Show version information
  --server URL       Server URL (default: http://localhost:5000)
  --db PATH          Path to local session database (default: taskkeeper-client.db)

Commands:
  register                     Register new user
  login                        Login to server
  logout                       Logout and revoke the token
  status                       Show session status and check it on the server
  list [flags]                 List tasks (--status, --priority, --category, --search, --sort, --desc)
  add [flags]                  Add task (--title, --desc, --due, --priority, --category, --status)
  get <id>                     Show task details
  edit <id> [flags]            Change task fields (same flags as add, --no-due clears the due date)
  done <id>                    Mark task as Completed
  status-set <id> <status>     Set task status (Pending, "In Progress", Completed)
  delete [-y] <id>             Delete task
  export [-o file] [--link]    Export dated tasks as iCalendar

Examples:
  taskkeeper register
  taskkeeper login
  taskkeeper add --title "Dentist" --due "2025-06-10 15:00" --priority High --category Health
  taskkeeper list --status Pending --sort dueDate
  taskkeeper edit 7f9c... --priority Medium --no-due
  taskkeeper status-set 7f9c... "In Progress"
  taskkeeper export -o tasks.ics
  taskkeeper --server https://tasks.example.com login
`)
}
