package mongostore

import (
	"time"

	"github.com/iudanet/taskkeeper/internal/models"
)

type userDocument struct {
	CreatedAt    time.Time `bson:"createdAt"`
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
}

func newUserDocument(u *models.User) userDocument {
	return userDocument{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UTC(),
	}
}

func (d userDocument) toModel() *models.User {
	return &models.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// taskDocument хранит задачу. Undated дублирует отсутствие dueDate,
// чтобы задачи без срока сортировались последними в обоих направлениях.
type taskDocument struct {
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
	DueDate     *time.Time `bson:"dueDate"`
	ID          string     `bson:"_id"`
	UserID      string     `bson:"userId"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	Status      string     `bson:"status"`
	Priority    string     `bson:"priority"`
	Category    string     `bson:"category"`
	Undated     bool       `bson:"undated"`
}

func newTaskDocument(t *models.Task) taskDocument {
	d := taskDocument{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Category:    t.Category,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		Undated:     t.DueDate == nil,
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		d.DueDate = &due
	}
	return d
}

func (d taskDocument) toModel() *models.Task {
	t := &models.Task{
		ID:          d.ID,
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Status:      models.TaskStatus(d.Status),
		Priority:    models.TaskPriority(d.Priority),
		Category:    d.Category,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}
