package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iudanet/taskkeeper/pkg/api"
)

// ErrUnauthorized сервер отклонил токен: истек, отозван или отсутствует
var ErrUnauthorized = errors.New("unauthorized")

// Error ошибка, которую вернул сервер в теле {"error": "..."}
type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Is позволяет проверять 401 через errors.Is(err, ErrUnauthorized)
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// ListOptions фильтры и сортировка GET /api/tasks и экспорта
type ListOptions struct {
	Status   string
	Priority string
	Category string
	Search   string
	SortBy   string
	Order    string
}

func (o ListOptions) query() string {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("status", o.Status)
	set("priority", o.Priority)
	set("category", o.Category)
	set("search", o.Search)
	set("sortBy", o.SortBy)
	set("order", o.Order)
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.MessageResponse, error) {
	var resp api.MessageResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	var resp api.LoginResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Logout отзывает токен на сервере
func (c *Client) Logout(ctx context.Context, token string) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Me возвращает пользователя, которому выдан токен
func (c *Client) Me(ctx context.Context, token string) (*api.User, error) {
	var resp api.MeResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/me", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	return &resp.User, nil
}

// ListTasks возвращает задачи пользователя
func (c *Client) ListTasks(ctx context.Context, token string, opts ListOptions) ([]api.Task, error) {
	var tasks []api.Task
	if err := c.doRequest(ctx, http.MethodGet, "/api/tasks"+opts.query(), token, nil, &tasks); err != nil {
		return nil, fmt.Errorf("list tasks request failed: %w", err)
	}
	return tasks, nil
}

// CreateTask создает задачу
func (c *Client) CreateTask(ctx context.Context, token string, req api.TaskRequest) (*api.Task, error) {
	var task api.Task
	if err := c.doRequest(ctx, http.MethodPost, "/api/tasks", token, req, &task); err != nil {
		return nil, fmt.Errorf("create task request failed: %w", err)
	}
	return &task, nil
}

// GetTask возвращает задачу по id
func (c *Client) GetTask(ctx context.Context, token, id string) (*api.Task, error) {
	var task api.Task
	if err := c.doRequest(ctx, http.MethodGet, taskPath(id), token, nil, &task); err != nil {
		return nil, fmt.Errorf("get task request failed: %w", err)
	}
	return &task, nil
}

// UpdateTask частично обновляет задачу
func (c *Client) UpdateTask(ctx context.Context, token, id string, req api.TaskRequest) (*api.Task, error) {
	var task api.Task
	if err := c.doRequest(ctx, http.MethodPatch, taskPath(id), token, req, &task); err != nil {
		return nil, fmt.Errorf("update task request failed: %w", err)
	}
	return &task, nil
}

// SetStatus меняет статус задачи
func (c *Client) SetStatus(ctx context.Context, token, id, status string) (*api.Task, error) {
	var task api.Task
	err := c.doRequest(ctx, http.MethodPut, taskPath(id)+"/status", token, api.StatusRequest{Status: status}, &task)
	if err != nil {
		return nil, fmt.Errorf("set status request failed: %w", err)
	}
	return &task, nil
}

// DeleteTask удаляет задачу
func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, taskPath(id), token, nil, nil); err != nil {
		return fmt.Errorf("delete task request failed: %w", err)
	}
	return nil
}

// ExportICS скачивает календарь с задачами, у которых есть срок
func (c *Client) ExportICS(ctx context.Context, token string, opts ListOptions) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, "/api/tasks/export/ics"+opts.query(), token, nil)
	if err != nil {
		return nil, fmt.Errorf("export request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar: %w", err)
	}
	if err := checkStatus(resp.StatusCode, body); err != nil {
		return nil, fmt.Errorf("export request failed: %w", err)
	}
	return body, nil
}

// PublishICS выкладывает календарь в S3 и возвращает временную ссылку
func (c *Client) PublishICS(ctx context.Context, token string, opts ListOptions) (*api.CalendarLinkResponse, error) {
	var resp api.CalendarLinkResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/tasks/export/ics/link"+opts.query(), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("publish request failed: %w", err)
	}
	return &resp, nil
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

// send отправляет запрос; тело ответа закрывает вызывающий
func (c *Client) send(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// doRequest выполняет HTTP запрос и декодирует JSON ответ в result
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result any) error {
	resp, err := c.send(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := checkStatus(resp.StatusCode, respBody); err != nil {
		return err
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// checkStatus превращает не-2xx ответ в *Error
func checkStatus(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &Error{StatusCode: code, Message: errResp.Error}
	}
	return &Error{StatusCode: code, Message: http.StatusText(code)}
}
