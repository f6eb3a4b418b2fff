// Package auth управляет входом CLI клиента и локальной сессией.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iudanet/taskkeeper/internal/client/storage"
	"github.com/iudanet/taskkeeper/internal/validation"
	"github.com/iudanet/taskkeeper/pkg/api"
)

var (
	// ErrNotAuthenticated вход не выполнен
	ErrNotAuthenticated = errors.New("not authenticated, run 'taskkeeper login' first")
	// ErrSessionExpired сохраненный токен истек
	ErrSessionExpired = errors.New("session expired, run 'taskkeeper login' again")
)

// Client запросы авторизации к серверу
type Client interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.MessageResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	Logout(ctx context.Context, token string) error
}

// Service предоставляет функции авторизации
type Service struct {
	client   Client
	sessions storage.SessionStorage
	logger   *slog.Logger
	now      func() time.Time
	server   string
}

// NewService создает новый сервис авторизации.
// server сохраняется в сессии, чтобы status показывал, куда выполнен вход.
func NewService(client Client, sessions storage.SessionStorage, server string, logger *slog.Logger) *Service {
	return &Service{
		client:   client,
		sessions: sessions,
		server:   server,
		logger:   logger,
		now:      time.Now,
	}
}

// Register регистрирует нового пользователя. Сессия не создается.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	if err := validation.ValidateRegistration(name, email, password); err != nil {
		return err
	}

	req := api.RegisterRequest{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if _, err := s.client.Register(ctx, req); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

// Login выполняет вход и сохраняет сессию
func (s *Service) Login(ctx context.Context, email, password string) (*storage.Session, error) {
	if err := validation.ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	resp, err := s.client.Login(ctx, api.LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	session := &storage.Session{
		Token:     resp.Token,
		UserID:    resp.User.ID,
		Name:      resp.User.Name,
		Email:     resp.User.Email,
		Server:    s.server,
		ExpiresAt: s.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

// Logout отзывает токен на сервере и удаляет локальную сессию.
// Локальная сессия удаляется, даже если сервер недоступен.
func (s *Service) Logout(ctx context.Context) error {
	session, err := s.sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return ErrNotAuthenticated
		}
		return fmt.Errorf("failed to get session: %w", err)
	}

	// истекший токен сервер и так не примет
	if !session.Expired(s.now()) {
		if err := s.client.Logout(ctx, session.Token); err != nil {
			s.logger.WarnContext(ctx, "failed to logout on server", slog.Any("error", err))
		}
	}

	if err := s.sessions.DeleteSession(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Session возвращает сохраненную сессию, даже истекшую
func (s *Service) Session(ctx context.Context) (*storage.Session, error) {
	session, err := s.sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// Token возвращает действующий токен для запросов к API
func (s *Service) Token(ctx context.Context) (string, error) {
	session, err := s.Session(ctx)
	if err != nil {
		return "", err
	}
	if session.Expired(s.now()) {
		return "", ErrSessionExpired
	}
	return session.Token, nil
}

// Forget удаляет локальную сессию без обращения к серверу.
// Нужен, когда сервер уже отклонил токен.
func (s *Service) Forget(ctx context.Context) error {
	err := s.sessions.DeleteSession(ctx)
	if err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
