package storage

import "context"

// Storage объединяет все хранилища сервера поверх одной базы данных
type Storage interface {
	UserStorage
	TaskStorage
	RevocationStorage

	// Ping проверяет доступность базы данных
	Ping(ctx context.Context) error

	// Close closes the database connection
	Close() error
}
