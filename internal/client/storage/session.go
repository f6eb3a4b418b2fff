// Package storage описывает локальное хранилище CLI клиента.
package storage

import (
	"context"
	"time"
)

// SessionStorage хранит сессию текущего пользователя между запусками CLI
type SessionStorage interface {
	// SaveSession заменяет сохраненную сессию
	SaveSession(ctx context.Context, session *Session) error

	// GetSession возвращает ErrSessionNotFound, если вход не выполнялся
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession удаляет сессию (logout)
	DeleteSession(ctx context.Context) error
}

// Session токен и данные пользователя, полученные при входе
type Session struct {
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Server    string    `json:"server"`
}

// Expired сообщает, истек ли токен к моменту now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
