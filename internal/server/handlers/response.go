package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/taskkeeper/internal/server/services"
	"github.com/iudanet/taskkeeper/pkg/api"
)

const (
	msgInvalidBody    = "Invalid request body."
	msgInternalError  = "Internal server error."
	maxRequestBodyLen = 1 << 20
)

// responder общие методы ответа для всех handlers
type responder struct {
	logger  *slog.Logger
	timeout time.Duration
}

// requestContext контекст запроса, ограниченный REQUEST_TIMEOUT
func (h responder) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

// sendJSON отправляет JSON ответ
func (h responder) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h responder) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, api.ErrorResponse{Error: message}, statusCode)
}

// decodeJSON читает тело запроса; пустое тело и лишние данные - ошибка
func (h responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyLen))
	if err := dec.Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request body", slog.Any("error", err))
		h.sendError(w, msgInvalidBody, http.StatusBadRequest)
		return false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		h.sendError(w, msgInvalidBody, http.StatusBadRequest)
		return false
	}
	return true
}

// writeServiceError сопоставляет ошибку сервиса HTTP статусу.
// Все, что не *services.Error, логируется и отдается как 500.
func (h responder) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, action string) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		h.sendError(w, svcErr.Message, statusFor(svcErr.Kind))
		return
	}

	h.logger.ErrorContext(ctx, "failed to "+action, slog.Any("error", err))
	h.sendError(w, msgInternalError, http.StatusInternalServerError)
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(kind, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(kind, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
