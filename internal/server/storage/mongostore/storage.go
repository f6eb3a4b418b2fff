package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/iudanet/taskkeeper/internal/server/storage"
)

const (
	usersCollection   = "users"
	tasksCollection   = "tasks"
	revokedCollection = "revoked_tokens"
)

var _ storage.Storage = (*Storage)(nil)

// Storage represents MongoDB storage implementation
type Storage struct {
	client  *mongo.Client
	users   *mongo.Collection
	tasks   *mongo.Collection
	revoked *mongo.Collection
}

// New connects to MongoDB and prepares collections and indexes
func New(ctx context.Context, uri, database string) (*Storage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Storage{
		client:  client,
		users:   db.Collection(usersCollection),
		tasks:   db.Collection(tasksCollection),
		revoked: db.Collection(revokedCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

// ensureIndexes создает индексы. Повторный вызов для существующих индексов безопасен.
func (s *Storage) ensureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	}); err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	if _, err := s.tasks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "undated", Value: 1}, {Key: "dueDate", Value: 1}},
			Options: options.Index().SetName("user_due"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("user_status"),
		},
	}); err != nil {
		return fmt.Errorf("failed to create tasks indexes: %w", err)
	}

	// TTL индекс: MongoDB сама удаляет записи после expiresAt
	if _, err := s.revoked.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at"),
	}); err != nil {
		return fmt.Errorf("failed to create revoked tokens index: %w", err)
	}

	return nil
}

// Ping проверяет доступность базы данных
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB
func (s *Storage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
