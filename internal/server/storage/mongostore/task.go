package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/storage"
)

func ownedBy(ownerID, taskID string) bson.D {
	return bson.D{{Key: "_id", Value: taskID}, {Key: "userId", Value: ownerID}}
}

// CreateTask stores a new task
func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	if _, err := s.tasks.InsertOne(ctx, newTaskDocument(task)); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// GetTask retrieves owner's task by ID
func (s *Storage) GetTask(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	var doc taskDocument
	if err := s.tasks.FindOne(ctx, ownedBy(ownerID, taskID)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return doc.toModel(), nil
}

// ListTasks retrieves owner's tasks matching filter
func (s *Storage) ListTasks(ctx context.Context, ownerID string, filter models.TaskFilter, sort models.TaskSort) ([]*models.Task, error) {
	opts := options.Find().SetSort(buildTaskSort(sort))

	cursor, err := s.tasks.Find(ctx, buildTaskFilter(ownerID, filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]*models.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toModel())
	}
	return tasks, nil
}

// UpdateTask replaces mutable fields of owner's task
func (s *Storage) UpdateTask(ctx context.Context, task *models.Task) error {
	doc := newTaskDocument(task)
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: doc.Title},
		{Key: "description", Value: doc.Description},
		{Key: "dueDate", Value: doc.DueDate},
		{Key: "undated", Value: doc.Undated},
		{Key: "status", Value: doc.Status},
		{Key: "priority", Value: doc.Priority},
		{Key: "category", Value: doc.Category},
		{Key: "updatedAt", Value: doc.UpdatedAt},
	}}}

	result, err := s.tasks.UpdateOne(ctx, ownedBy(task.UserID, task.ID), update)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.MatchedCount == 0 {
		return storage.ErrTaskNotFound
	}
	return nil
}

// DeleteTask deletes owner's task by ID
func (s *Storage) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	result, err := s.tasks.DeleteOne(ctx, ownedBy(ownerID, taskID))
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return storage.ErrTaskNotFound
	}
	return nil
}
