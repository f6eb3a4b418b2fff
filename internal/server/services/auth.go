package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/taskkeeper/internal/crypto"
	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/jwt"
	"github.com/iudanet/taskkeeper/internal/server/storage"
	"github.com/iudanet/taskkeeper/internal/validation"
)

const (
	msgEmailTaken         = "Email already registered."
	msgInvalidCredentials = "Invalid credentials."
	msgTokenRequired      = "Authorization token required."
	msgUserGone           = "User no longer exists."
)

// TokenRevoker отзывает сессионные токены
type TokenRevoker interface {
	Revoke(ctx context.Context, rawToken string, expiresAt time.Time) error
}

// LoginResult результат успешного входа
type LoginResult struct {
	ExpiresAt time.Time
	User      *models.User
	Token     string
	ExpiresIn int64 // секунды
}

// AuthService регистрирует пользователей, выдает и отзывает сессионные токены
type AuthService struct {
	users   storage.UserStorage
	tokens  *jwt.Service
	revoker TokenRevoker
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuthService создает сервис авторизации
func NewAuthService(users storage.UserStorage, tokens *jwt.Service, revoker TokenRevoker, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoker: revoker,
		logger:  logger,
		now:     time.Now,
	}
}

// Register создает пользователя. Автоматического входа нет.
func (s *AuthService) Register(ctx context.Context, name, email, password string) error {
	if err := validation.ValidateRegistration(name, email, password); err != nil {
		return NewValidationError(err.Error())
	}

	email = models.NormalizeEmail(email)

	// Проверяем заранее, уникальный индекс в хранилище закрывает гонку
	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return conflictError(msgEmailTaken)
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return conflictError(msgEmailTaken)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered successfully", slog.String("user_id", user.ID))
	return nil
}

// Login проверяет учетные данные и выдает сессионный токен.
// Неизвестный email и неверный пароль неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := validation.ValidateCredentials(email, password); err != nil {
		return nil, NewValidationError(err.Error())
	}

	user, err := s.users.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Тратим столько же времени, сколько на проверку настоящего пароля
			_ = crypto.VerifyPassword(password, dummyHash())
			s.logger.WarnContext(ctx, "login failed: user not found")
			return nil, unauthorizedError(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := crypto.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			s.logger.WarnContext(ctx, "login failed: invalid password", slog.String("user_id", user.ID))
			return nil, unauthorizedError(msgInvalidCredentials)
		}
		return nil, err
	}

	token, expiresAt, err := s.tokens.Generate(models.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in successfully", slog.String("user_id", user.ID))

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      user,
	}, nil
}

// Logout отзывает токен до его естественного истечения.
// Токен, не прошедший проверку, тоже записывается: срок берется из его exp,
// но не дальше TTL от текущего момента.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return NewValidationError(msgTokenRequired)
	}

	userID := ""
	var expiresAt time.Time
	claims, err := s.tokens.Validate(rawToken)
	if err == nil {
		userID = claims.UserID
		expiresAt = claims.ExpiresAt.Time
	} else {
		s.logger.DebugContext(ctx, "logout with invalid token", slog.Any("error", err))
		expiresAt = s.unverifiedExpiry(rawToken)
	}

	if err := s.revoker.Revoke(ctx, rawToken, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out successfully", slog.String("user_id", userID))
	return nil
}

// unverifiedExpiry срок хранения отзыва для токена с неверной подписью или истекшего
func (s *AuthService) unverifiedExpiry(rawToken string) time.Time {
	limit := s.now().Add(s.tokens.TTL())
	exp, ok := s.tokens.UnverifiedExpiry(rawToken)
	if !ok || exp.After(limit) {
		return limit
	}
	return exp
}

// Profile возвращает актуальные данные владельца токена.
// Пользователь, удаленный после выдачи токена, получает ошибку авторизации.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.logger.WarnContext(ctx, "token of unknown user", slog.String("user_id", userID))
			return nil, unauthorizedError(msgUserGone)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

var (
	dummyOnce sync.Once
	dummy     string
)

// dummyHash bcrypt хеш случайной строки для выравнивания времени ответа
func dummyHash() string {
	dummyOnce.Do(func() {
		dummy, _ = crypto.HashPassword(uuid.NewString())
	})
	return dummy
}
