package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/taskkeeper/internal/server/config"
	"github.com/iudanet/taskkeeper/internal/server/publish"
	"github.com/iudanet/taskkeeper/internal/server/storage"
	"github.com/iudanet/taskkeeper/pkg/api"
)

func testConfig(dsn string) *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{Port: 0, RequestTimeout: 5 * time.Second, AllowedOrigins: []string{"*"}},
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
			URL:    dsn,
		},
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			TokenTTL:                2 * time.Hour,
			RevocationPruneInterval: time.Minute,
			RateLimit:               1000,
			RateWindow:              time.Minute,
		},
	}
}

type testEnv struct {
	t     *testing.T
	srv   *httptest.Server
	store storage.Storage
}

func newTestEnvWithStore(t *testing.T, cfg *config.Config, store storage.Storage, publisher *stubPublisher) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var (
		s   *Server
		err error
	)
	if publisher != nil {
		s, err = New(cfg, logger, store, publisher, "test")
	} else {
		s, err = New(cfg, logger, store, nil, "test")
	}
	require.NoError(t, err)
	t.Cleanup(s.limiter.Stop)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{t: t, srv: srv, store: store}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig(":memory:")
	store, err := OpenStorage(context.Background(), cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return newTestEnvWithStore(t, cfg, store, nil)
}

// do отправляет запрос и декодирует JSON ответ в out (если out != nil)
func (e *testEnv) do(method, path, token string, body any, out any) int {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	require.NoError(e.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.srv.Client().Do(req)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *testEnv) register(name, email, password string) int {
	e.t.Helper()
	return e.do(http.MethodPost, "/api/auth/register", "",
		api.RegisterRequest{Name: name, Email: email, Password: password}, nil)
}

func (e *testEnv) login(email, password string) string {
	e.t.Helper()
	var resp api.LoginResponse
	status := e.do(http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: email, Password: password}, &resp)
	require.Equal(e.t, http.StatusOK, status)
	require.NotEmpty(e.t, resp.Token)
	return resp.Token
}

func (e *testEnv) createTask(token string, req api.TaskRequest) api.Task {
	e.t.Helper()
	var task api.Task
	status := e.do(http.MethodPost, "/api/tasks", token, req, &task)
	require.Equal(e.t, http.StatusCreated, status)
	return task
}

func str(s string) *string { return &s }

func TestServer_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	var msg api.MessageResponse
	status := env.do(http.MethodPost, "/api/auth/register", "",
		api.RegisterRequest{Name: "Alice", Email: "Alice@Example.com ", Password: "secret"}, &msg)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Registration successful.", msg.Message)

	// тот же email после нормализации
	var errResp api.ErrorResponse
	status = env.do(http.MethodPost, "/api/auth/register", "",
		api.RegisterRequest{Name: "Alice 2", Email: "alice@example.com", Password: "other"}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Email already registered.", errResp.Error)

	var login api.LoginResponse
	status = env.do(http.MethodPost, "/api/auth/login", "",
		api.LoginRequest{Email: "alice@example.com", Password: "secret"}, &login)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, int64(7200), login.ExpiresIn)
	assert.Equal(t, "Alice", login.User.Name)
	assert.Equal(t, "alice@example.com", login.User.Email)

	var wrongPassword, unknownEmail api.ErrorResponse
	status = env.do(http.MethodPost, "/api/auth/login", "",
		api.LoginRequest{Email: "alice@example.com", Password: "nope"}, &wrongPassword)
	assert.Equal(t, http.StatusUnauthorized, status)
	status = env.do(http.MethodPost, "/api/auth/login", "",
		api.LoginRequest{Email: "bob@example.com", Password: "secret"}, &unknownEmail)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, wrongPassword, unknownEmail, "both failures must look the same")
	assert.Equal(t, "Invalid credentials.", unknownEmail.Error)

	var me api.MeResponse
	status = env.do(http.MethodGet, "/api/me", login.Token, nil, &me)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, login.User, me.User)
}

func TestServer_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	var errResp api.ErrorResponse
	status := env.do(http.MethodPost, "/api/auth/register", "",
		api.RegisterRequest{Email: "alice@example.com", Password: "secret"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Name, email and password are required.", errResp.Error)

	status = env.do(http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: "alice@example.com"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email and password required.", errResp.Error)

	status = env.do(http.MethodPost, "/api/auth/register", "",
		api.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: strings.Repeat("x", 80)}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Password must be at most 72 bytes.", errResp.Error)

	// пароль длиннее 72 байт не совпадает даже с тем же 72-байтным префиксом
	require.Equal(t, http.StatusCreated, env.register("Alice", "alice@example.com", strings.Repeat("x", 72)))
	status = env.do(http.MethodPost, "/api/auth/login", "",
		api.LoginRequest{Email: "alice@example.com", Password: strings.Repeat("x", 80)}, &errResp)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials.", errResp.Error)
}

func TestServer_OwnerScoping(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.register("Alice", "alice@example.com", "secret"))
	require.Equal(t, http.StatusCreated, env.register("Bob", "bob@example.com", "secret"))
	alice := env.login("alice@example.com", "secret")
	bob := env.login("bob@example.com", "secret")

	task := env.createTask(alice, api.TaskRequest{Title: str("Alice's task")})

	var errResp api.ErrorResponse
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/tasks/"+task.ID, bob, nil, &errResp))
	assert.Equal(t, "Task not found.", errResp.Error)
	assert.Equal(t, http.StatusNotFound,
		env.do(http.MethodPatch, "/api/tasks/"+task.ID, bob, api.TaskRequest{Title: str("mine now")}, nil))
	assert.Equal(t, http.StatusNotFound,
		env.do(http.MethodPut, "/api/tasks/"+task.ID+"/status", bob, api.StatusRequest{Status: "Completed"}, nil))
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/api/tasks/"+task.ID, bob, nil, nil))

	var bobTasks []api.Task
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/tasks", bob, nil, &bobTasks))
	assert.Empty(t, bobTasks)
	assert.NotNil(t, bobTasks, "empty list is [] not null")

	var got api.Task
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/tasks/"+task.ID, alice, nil, &got))
	assert.Equal(t, "Alice's task", got.Title)
	assert.Equal(t, "Pending", got.Status)
}

func TestServer_TaskLifecycle(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.register("Alice", "alice@example.com", "secret"))
	token := env.login("alice@example.com", "secret")

	due := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	created := env.createTask(token, api.TaskRequest{
		Title:       str("Write report"),
		Description: str("Q2 numbers"),
		DueDate:     api.NewOptionalTime(&due),
		Status:      str("In Progress"),
		Priority:    str("Urgent"),
	})
	assert.Equal(t, "Write report", created.Title)
	assert.Equal(t, "Q2 numbers", created.Description)
	assert.Equal(t, "In Progress", created.Status)
	assert.Equal(t, "Low", created.Priority, "unknown priority is stored as Low")
	assert.Equal(t, "General", created.Category)
	require.NotNil(t, created.DueDate)
	assert.True(t, due.Equal(*created.DueDate))

	var readBack api.Task
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/tasks/"+created.ID, token, nil, &readBack))
	assert.Equal(t, created.Title, readBack.Title)
	assert.Equal(t, created.Priority, readBack.Priority)
	assert.True(t, created.DueDate.Equal(*readBack.DueDate))

	// PATCH с явным null очищает срок
	var updated api.Task
	status := env.do(http.MethodPatch, "/api/tasks/"+created.ID, token,
		api.TaskRequest{Priority: str("High"), DueDate: api.NewOptionalTime(nil)}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "High", updated.Priority)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, "Write report", updated.Title)

	var errResp api.ErrorResponse
	status = env.do(http.MethodPut, "/api/tasks/"+created.ID, token, api.TaskRequest{Priority: str("Urgent")}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid priority", errResp.Error)

	status = env.do(http.MethodPut, "/api/tasks/"+created.ID+"/status", token, api.StatusRequest{Status: "Done"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid status", errResp.Error)

	status = env.do(http.MethodPut, "/api/tasks/"+created.ID+"/status", token, api.StatusRequest{Status: "Completed"}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Completed", updated.Status)

	var msg api.MessageResponse
	require.Equal(t, http.StatusOK, env.do(http.MethodDelete, "/api/tasks/"+created.ID, token, nil, &msg))
	assert.Equal(t, "Task deleted successfully", msg.Message)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/tasks/"+created.ID, token, nil, nil))

	status = env.do(http.MethodPost, "/api/tasks", token, api.TaskRequest{Description: str("no title")}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Title is required.", errResp.Error)
}

func TestServer_ListFiltersAndSort(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.register("Alice", "alice@example.com", "secret"))
	require.Equal(t, http.StatusCreated, env.register("Bob", "bob@example.com", "secret"))
	alice := env.login("alice@example.com", "secret")
	bob := env.login("bob@example.com", "secret")

	d1 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	env.createTask(alice, api.TaskRequest{Title: str("Buy milk"), Status: str("Pending"), Category: str("Home"), DueDate: api.NewOptionalTime(&d2)})
	env.createTask(alice, api.TaskRequest{Title: str("Pay rent"), Status: str("Completed"), Category: str("Home"), DueDate: api.NewOptionalTime(&d1)})
	env.createTask(alice, api.TaskRequest{Title: str("Ship release"), Status: str("Pending"), Category: str("Work")})
	env.createTask(bob, api.TaskRequest{Title: str("Bob's milk"), Status: str("Pending")})

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "default sort by due date, undated last", query: "", want: []string{"Pay rent", "Buy milk", "Ship release"}},
		{name: "status exact match", query: "?status=Pending", want: []string{"Buy milk", "Ship release"}},
		{name: "status is case sensitive", query: "?status=pending", want: []string{}},
		{name: "category substring", query: "?category=hom", want: []string{"Pay rent", "Buy milk"}},
		{name: "search in title", query: "?search=MILK", want: []string{"Buy milk"}},
		{name: "title descending", query: "?sortBy=title&order=desc", want: []string{"Ship release", "Pay rent", "Buy milk"}},
		{name: "combined", query: "?status=Pending&category=work", want: []string{"Ship release"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tasks []api.Task
			require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/tasks"+tt.query, alice, nil, &tasks))

			titles := make([]string, 0, len(tasks))
			for _, task := range tasks {
				titles = append(titles, task.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}

	var errResp api.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/tasks?sortBy=password", alice, nil, &errResp))
	assert.Equal(t, "Invalid sort field.", errResp.Error)
}

func TestServer_ListNonASCIISearch(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.register("Alice", "alice@example.com", "secret"))
	alice := env.login("alice@example.com", "secret")

	env.createTask(alice, api.TaskRequest{Title: str("Купить Молоко"), Category: str("Дом")})
	env.createTask(alice, api.TaskRequest{Title: str("Ärger Über")})

	tests := []struct {
		name  string
		key   string
		value string
		want  []string
	}{
		{name: "cyrillic lower case", key: "search", value: "молоко", want: []string{"Купить Молоко"}},
		{name: "cyrillic upper case", key: "search", value: "МОЛОКО", want: []string{"Купить Молоко"}},
		{name: "cyrillic category", key: "category", value: "дом", want: []string{"Купить Молоко"}},
		{name: "accented latin", key: "search", value: "über", want: []string{"Ärger Über"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := url.Values{tt.key: {tt.value}}.Encode()

			var tasks []api.Task
			require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/tasks?"+query, alice, nil, &tasks))

			titles := make([]string, 0, len(tasks))
			for _, task := range tasks {
				titles = append(titles, task.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestServer_Logout(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.register("Alice", "alice@example.com", "secret"))
	token := env.login("alice@example.com", "secret")

	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/tasks", token, nil, nil))

	var msg api.MessageResponse
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/auth/logout", token, nil, &msg))
	assert.Equal(t, "Logged out successfully.", msg.Message)

	var errResp api.ErrorResponse
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/tasks", token, nil, &errResp))
	assert.Equal(t, "Token invalidated (logged out).", errResp.Error)

	// повторный logout тем же токеном тоже подтверждается
	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/auth/logout", token, nil, nil))

	// новый вход дает рабочий токен
	fresh := env.login("alice@example.com", "secret")
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/tasks", fresh, nil, nil))

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/auth/logout", "", nil, &errResp))
	assert.Equal(t, "Authorization token required.", errResp.Error)

	// токен, не прошедший проверку, тоже попадает в реестр отзыва
	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/auth/logout", "not.a.token", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/tasks", "not.a.token", nil, &errResp))
	assert.Equal(t, "Token invalidated (logged out).", errResp.Error)
}

func TestServer_RevocationSurvivesRestart(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tasks.db")
	cfg := testConfig(dsn)

	store, err := OpenStorage(context.Background(), cfg.Database)
	require.NoError(t, err)
	env := newTestEnvWithStore(t, cfg, store, nil)

	require.Equal(t, http.StatusCreated, env.register("Alice", "alice@example.com", "secret"))
	token := env.login("alice@example.com", "secret")
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/auth/logout", token, nil, nil))

	env.srv.Close()
	require.NoError(t, store.Close())

	// новый процесс: пустой кеш, та же база
	reopened, err := OpenStorage(context.Background(), cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	env2 := newTestEnvWithStore(t, cfg, reopened, nil)

	var errResp api.ErrorResponse
	assert.Equal(t, http.StatusUnauthorized, env2.do(http.MethodGet, "/api/tasks", token, nil, &errResp))
	assert.Equal(t, "Token invalidated (logged out).", errResp.Error)
}

func TestServer_GuardMessages(t *testing.T) {
	env := newTestEnv(t)

	var errResp api.ErrorResponse
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/tasks", "", nil, &errResp))
	assert.Equal(t, "No token provided.", errResp.Error)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/tasks", "garbage", nil, &errResp))
	assert.Equal(t, "Invalid or expired token.", errResp.Error)
}

func TestServer_ExportICS(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.register("Alice", "alice@example.com", "secret"))
	token := env.login("alice@example.com", "secret")

	var errResp api.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/tasks/export/ics", token, nil, &errResp))
	assert.Equal(t, "No tasks found to export.", errResp.Error)

	env.createTask(token, api.TaskRequest{Title: str("Someday")})
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/tasks/export/ics", token, nil, &errResp))
	assert.Equal(t, "No tasks with a due date to export.", errResp.Error)

	due := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	task := env.createTask(token, api.TaskRequest{Title: str("Dentist"), DueDate: api.NewOptionalTime(&due)})

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/api/tasks/export/ics", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := env.srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/calendar; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="tasks.ics"`, resp.Header.Get("Content-Disposition"))
	assert.Contains(t, string(body), "UID:"+task.ID+"@taskkeeper")
	assert.Contains(t, string(body), "DTSTART:20250610T150000Z")
	assert.Contains(t, string(body), "DTEND:20250610T153000Z")
	assert.Equal(t, 1, strings.Count(string(body), "BEGIN:VEVENT"))

	// без S3 маршрут публикации не зарегистрирован
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/api/tasks/export/ics/link", token, nil, nil))
}

// stubPublisher запоминает опубликованный календарь
type stubPublisher struct {
	owner    string
	calendar []byte
}

func (p *stubPublisher) Publish(_ context.Context, ownerID string, calendar []byte) (*publish.Link, error) {
	p.owner = ownerID
	p.calendar = calendar
	return &publish.Link{
		URL:       "https://s3.example.com/calendars/" + ownerID + "/x.ics?X-Amz-Signature=abc",
		ExpiresAt: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
	}, nil
}

func TestServer_PublishICS(t *testing.T) {
	cfg := testConfig(":memory:")
	store, err := OpenStorage(context.Background(), cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	publisher := &stubPublisher{}
	env := newTestEnvWithStore(t, cfg, store, publisher)

	require.Equal(t, http.StatusCreated, env.register("Alice", "alice@example.com", "secret"))
	token := env.login("alice@example.com", "secret")
	due := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	env.createTask(token, api.TaskRequest{Title: str("Dentist"), DueDate: api.NewOptionalTime(&due)})

	var link api.CalendarLinkResponse
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/tasks/export/ics/link", token, nil, &link))
	assert.Contains(t, link.URL, "X-Amz-Signature")
	assert.Equal(t, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), link.ExpiresAt.UTC())
	assert.NotEmpty(t, publisher.owner)
	assert.Contains(t, string(publisher.calendar), "SUMMARY:Dentist")
}

func TestServer_HealthAndNotFound(t *testing.T) {
	env := newTestEnv(t)

	var health api.HealthResponse
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/health", "", nil, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test", health.Version)

	var errResp api.ErrorResponse
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/unknown", "", nil, &errResp))
	assert.Equal(t, "Not found.", errResp.Error)
}

func TestServer_RateLimitOnAuth(t *testing.T) {
	cfg := testConfig(":memory:")
	cfg.Auth.RateLimit = 2
	store, err := OpenStorage(context.Background(), cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	env := newTestEnvWithStore(t, cfg, store, nil)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/auth/login", "",
			api.LoginRequest{Email: "x@example.com", Password: "y"}, nil))
	}
	var errResp api.ErrorResponse
	assert.Equal(t, http.StatusTooManyRequests, env.do(http.MethodPost, "/api/auth/login", "",
		api.LoginRequest{Email: "x@example.com", Password: "y"}, &errResp))
	assert.NotEmpty(t, errResp.Error)

	// подставной X-Forwarded-For от недоверенного клиента не дает нового bucket
	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/api/auth/login",
		strings.NewReader(`{"email":"x@example.com","password":"y"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.77")
	resp, err := env.srv.Client().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// health не ограничивается
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/health", "", nil, nil))
}

func TestNew_InvalidTrustedProxies(t *testing.T) {
	cfg := testConfig(":memory:")
	cfg.HTTP.TrustedProxies = []string{"not-an-ip"}

	s, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil, "test")
	require.Error(t, err)
	assert.Nil(t, s)
}
