package api

import (
	"bytes"
	"encoding/json"
	"time"
)

// Task задача в том виде, в котором ее отдает сервер
type Task struct {
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DueDate     *time.Time `json:"dueDate"`
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category"`
}

// OptionalTime отличает отсутствующее поле от явного null.
// Set == true, если поле было в JSON; Time == nil для null.
type OptionalTime struct {
	Time *time.Time
	Set  bool
}

// NewOptionalTime заполненное значение; nil означает явный null
func NewOptionalTime(t *time.Time) OptionalTime {
	return OptionalTime{Time: t, Set: true}
}

// IsZero нужен для omitzero: незаданное поле не сериализуется
func (o OptionalTime) IsZero() bool {
	return !o.Set
}

func (o OptionalTime) MarshalJSON() ([]byte, error) {
	if o.Time == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Time)
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Time = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.Time = &t
	return nil
}

// TaskRequest тело POST /api/tasks и PATCH/PUT /api/tasks/{id}.
// При обновлении nil поля не меняются.
type TaskRequest struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Status      *string      `json:"status,omitempty"`
	Priority    *string      `json:"priority,omitempty"`
	Category    *string      `json:"category,omitempty"`
	DueDate     OptionalTime `json:"dueDate,omitzero"`
}

// StatusRequest тело PUT /api/tasks/{id}/status
type StatusRequest struct {
	Status string `json:"status"`
}

// CalendarLinkResponse подписанная ссылка на опубликованный календарь
type CalendarLinkResponse struct {
	ExpiresAt time.Time `json:"expiresAt"`
	URL       string    `json:"url"`
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
