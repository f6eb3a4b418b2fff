package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/taskkeeper/internal/server/handlers"
	"github.com/iudanet/taskkeeper/internal/server/jwt"
)

// Сообщения guard'а; клиенты показывают их пользователю как есть
const (
	msgNoToken      = "No token provided."
	msgMalformed    = "Malformed token."
	msgRevoked      = "Token invalidated (logged out)."
	msgInvalidToken = "Invalid or expired token."
	msgInternal     = "Internal server error."
)

// TokenVerifier проверяет подпись и срок действия токена
type TokenVerifier interface {
	Validate(token string) (*jwt.Claims, error)
}

// RevocationChecker сообщает, был ли токен отозван при logout
type RevocationChecker interface {
	IsRevoked(ctx context.Context, rawToken string) (bool, error)
}

// AuthMiddleware создает middleware для проверки bearer токена.
// Сначала проверяется отзыв, потом подпись; при успехе данные пользователя
// кладутся в контекст (handlers.GetIdentity).
func AuthMiddleware(logger *slog.Logger, verifier TokenVerifier, revocations RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, err := handlers.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				msg := msgMalformed
				if errors.Is(err, handlers.ErrNoToken) {
					msg = msgNoToken
				}
				logger.DebugContext(ctx, "rejected request without usable token", slog.Any("error", err))
				writeJSONError(w, msg, http.StatusUnauthorized)
				return
			}

			revoked, err := revocations.IsRevoked(ctx, token)
			if err != nil {
				logger.ErrorContext(ctx, "revocation lookup failed", slog.Any("error", err))
				writeJSONError(w, msgInternal, http.StatusInternalServerError)
				return
			}
			if revoked {
				logger.WarnContext(ctx, "revoked token used")
				writeJSONError(w, msgRevoked, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
				writeJSONError(w, msgInvalidToken, http.StatusUnauthorized)
				return
			}

			logger.DebugContext(ctx, "user authenticated", slog.String("user_id", claims.UserID))

			next.ServeHTTP(w, r.WithContext(handlers.WithIdentity(ctx, claims.Identity())))
		})
	}
}
