package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/services"
	"github.com/iudanet/taskkeeper/pkg/api"
)

// Authenticator операции авторизации, которые нужны handlers
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Profile(ctx context.Context, userID string) (*models.User, error)
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	responder
	auth Authenticator
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, auth Authenticator, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger, timeout: timeout},
		auth:      auth,
	}
}

// Register обрабатывает POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.auth.Register(ctx, req.Name, req.Email, req.Password); err != nil {
		h.writeServiceError(ctx, w, err, "register user")
		return
	}

	h.sendJSON(w, api.MessageResponse{Message: "Registration successful."}, http.StatusCreated)
}

// Login обрабатывает POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	res, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(ctx, w, err, "log in")
		return
	}

	h.sendJSON(w, api.LoginResponse{
		Token:     res.Token,
		ExpiresIn: res.ExpiresIn,
		User: api.User{
			ID:    res.User.ID,
			Name:  res.User.Name,
			Email: res.User.Email,
		},
	}, http.StatusOK)
}

// Logout обрабатывает POST /api/auth/logout.
// Токен берется из заголовка Authorization; guard здесь не нужен,
// чтобы выход с уже истекшим токеном тоже подтверждался.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	// неправильный заголовок равносилен отсутствию токена
	token, _ := BearerToken(r.Header.Get("Authorization"))

	if err := h.auth.Logout(ctx, token); err != nil {
		h.writeServiceError(ctx, w, err, "log out")
		return
	}

	h.sendJSON(w, api.MessageResponse{Message: "Logged out successfully."}, http.StatusOK)
}

// Me обрабатывает GET /api/me: профиль владельца токена из хранилища
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := GetIdentity(r.Context())
	if !ok {
		h.sendError(w, "No token provided.", http.StatusUnauthorized)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	user, err := h.auth.Profile(ctx, id.UserID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "get profile")
		return
	}

	h.sendJSON(w, api.MeResponse{User: api.User{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}}, http.StatusOK)
}
