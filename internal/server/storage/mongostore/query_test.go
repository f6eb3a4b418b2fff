package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iudanet/taskkeeper/internal/models"
)

func TestBuildTaskFilter(t *testing.T) {
	tests := []struct {
		name     string
		filter   models.TaskFilter
		expected bson.D
	}{
		{
			name:     "owner only",
			expected: bson.D{{Key: "userId", Value: "u1"}},
		},
		{
			name:   "equality filters",
			filter: models.TaskFilter{Status: "Pending", Priority: "High"},
			expected: bson.D{
				{Key: "userId", Value: "u1"},
				{Key: "status", Value: "Pending"},
				{Key: "priority", Value: "High"},
			},
		},
		{
			name:   "substring filters are quoted and case-insensitive",
			filter: models.TaskFilter{Category: "a.b", Search: "(urgent)*"},
			expected: bson.D{
				{Key: "userId", Value: "u1"},
				{Key: "category", Value: primitive.Regex{Pattern: `a\.b`, Options: "i"}},
				{Key: "title", Value: primitive.Regex{Pattern: `\(urgent\)\*`, Options: "i"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildTaskFilter("u1", tt.filter))
		})
	}
}

func TestBuildTaskSort(t *testing.T) {
	tests := []struct {
		name     string
		sort     models.TaskSort
		expected bson.D
	}{
		{
			name: "default due date puts undated last",
			sort: models.DefaultTaskSort,
			expected: bson.D{
				{Key: "undated", Value: 1},
				{Key: "dueDate", Value: 1},
				{Key: "createdAt", Value: 1},
				{Key: "_id", Value: 1},
			},
		},
		{
			name: "due date descending",
			sort: models.TaskSort{Field: models.SortByDueDate, Descending: true},
			expected: bson.D{
				{Key: "undated", Value: 1},
				{Key: "dueDate", Value: -1},
				{Key: "createdAt", Value: 1},
				{Key: "_id", Value: 1},
			},
		},
		{
			name: "created at",
			sort: models.TaskSort{Field: models.SortByCreatedAt, Descending: true},
			expected: bson.D{
				{Key: "createdAt", Value: -1},
				{Key: "_id", Value: 1},
			},
		},
		{
			name: "unknown field falls back to due date",
			sort: models.TaskSort{Field: "$where"},
			expected: bson.D{
				{Key: "undated", Value: 1},
				{Key: "dueDate", Value: 1},
				{Key: "createdAt", Value: 1},
				{Key: "_id", Value: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildTaskSort(tt.sort))
		})
	}
}

func TestTaskDocument_RoundTrip(t *testing.T) {
	due := time.Date(2025, 6, 1, 9, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	task := &models.Task{
		ID:        "t1",
		UserID:    "u1",
		Title:     "Call",
		DueDate:   &due,
		Status:    models.StatusPending,
		Priority:  models.PriorityLow,
		Category:  models.DefaultCategory,
		CreatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	doc := newTaskDocument(task)
	assert.False(t, doc.Undated)
	assert.Equal(t, time.UTC, doc.DueDate.Location())

	back := doc.toModel()
	assert.True(t, due.Equal(*back.DueDate))

	task.DueDate = nil
	assert.True(t, newTaskDocument(task).Undated)
	assert.Nil(t, newTaskDocument(task).toModel().DueDate)
}
