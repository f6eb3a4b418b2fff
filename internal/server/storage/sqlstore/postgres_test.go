package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/storage"
)

func newPostgresWithMock(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewWithDB(sqlx.NewDb(db, "pgx"), DialectPostgres), mock
}

var taskMockColumns = []string{
	"id", "user_id", "title", "description", "due_date",
	"status", "priority", "category", "created_at", "updated_at",
}

func TestPostgres_CreateUser_UniqueViolation(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	q := `(?s)^\s*INSERT\s+INTO\s+users\s*\(id,\s*name,\s*email,\s*password_hash,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`
	mock.ExpectExec(q).
		WithArgs("u1", "Alice", "alice@example.com", "hash", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err := s.CreateUser(context.Background(), &models.User{
		ID: "u1", Name: "Alice", Email: "alice@example.com", PasswordHash: "hash", CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateUser_DBError(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+users`).
		WillReturnError(errors.New("db down"))

	err := s.CreateUser(context.Background(), &models.User{ID: "u1", CreatedAt: time.Now()})
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrUserAlreadyExists)
	assert.Regexp(t, regexp.MustCompile(`failed to insert user: .*db down`), err.Error())
}

func TestPostgres_GetUserByEmail_NotFound(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	q := `(?s)SELECT\s+id,\s*name,\s*email,\s*password_hash,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1`
	mock.ExpectQuery(q).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	user, err := s.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListTasks_RebindsPlaceholders(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	due := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	q := `(?s)FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+status\s*=\s*\$2\s+AND\s+title_lower\s+LIKE\s+\$3\s+ESCAPE\s+'\\'\s+ORDER\s+BY\s+\(due_date\s+IS\s+NULL\)\s+ASC,\s*due_date\s+ASC`
	rows := sqlmock.NewRows(taskMockColumns).
		AddRow("t1", "u1", "Plan sprint", "", due.UnixMilli(), "Pending", "Low", "Work", due.UnixMilli(), due.UnixMilli()).
		AddRow("t2", "u1", "Plan trip", "", nil, "Pending", "Low", "General", due.UnixMilli(), due.UnixMilli())
	mock.ExpectQuery(q).
		WithArgs("u1", "Pending", "%plan%").
		WillReturnRows(rows)

	tasks, err := s.ListTasks(context.Background(), "u1",
		models.TaskFilter{Status: "Pending", Search: "Plan"}, models.DefaultTaskSort)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.NotNil(t, tasks[0].DueDate)
	assert.True(t, due.Equal(*tasks[0].DueDate))
	assert.Nil(t, tasks[1].DueDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateTask_NoRows(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	q := `(?s)UPDATE\s+tasks\s+SET.*WHERE\s+id\s*=\s*\$10\s+AND\s+user_id\s*=\s*\$11`
	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateTask(context.Background(), &models.Task{ID: "t1", UserID: "u2", Title: "x", UpdatedAt: time.Now()})
	assert.ErrorIs(t, err, storage.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_IsTokenRevoked(t *testing.T) {
	s, mock := newPostgresWithMock(t)
	now := time.Now()

	q := `(?s)SELECT\s+1\s+FROM\s+revoked_tokens\s+WHERE\s+token_hash\s*=\s*\$1\s+AND\s+expires_at\s*>\s*\$2`
	mock.ExpectQuery(q).
		WithArgs("h1", now.UnixMilli()).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(q).
		WithArgs("h2", now.UnixMilli()).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q).
		WithArgs("h3", now.UnixMilli()).
		WillReturnError(errors.New("connection reset"))

	revoked, err := s.IsTokenRevoked(context.Background(), "h1", now)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsTokenRevoked(context.Background(), "h2", now)
	require.NoError(t, err)
	assert.False(t, revoked)

	_, err = s.IsTokenRevoked(context.Background(), "h3", now)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
