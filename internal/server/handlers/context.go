package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/iudanet/taskkeeper/internal/models"
)

type contextKey string

// identityKey ключ для хранения данных пользователя в контексте
const identityKey contextKey = "identity"

// Ошибки разбора заголовка Authorization
var (
	ErrNoToken        = errors.New("authorization header is missing")
	ErrMalformedToken = errors.New("authorization header is malformed")
)

// WithIdentity добавляет данные аутентифицированного пользователя в контекст
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity извлекает данные пользователя из контекста
func GetIdentity(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}

// BearerToken извлекает токен из значения заголовка "Bearer <token>"
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMalformedToken
	}
	return token, nil
}
