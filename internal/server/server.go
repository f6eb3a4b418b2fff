// Package server собирает HTTP API: сервисы, middleware и маршруты.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/taskkeeper/internal/server/config"
	"github.com/iudanet/taskkeeper/internal/server/handlers"
	"github.com/iudanet/taskkeeper/internal/server/jwt"
	"github.com/iudanet/taskkeeper/internal/server/middleware"
	"github.com/iudanet/taskkeeper/internal/server/revocation"
	"github.com/iudanet/taskkeeper/internal/server/services"
	"github.com/iudanet/taskkeeper/internal/server/storage"
	"github.com/iudanet/taskkeeper/pkg/api"
)

// ShutdownTimeout время на завершение активных запросов при остановке
const ShutdownTimeout = 10 * time.Second

// Server HTTP сервер API задач
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *revocation.Registry
	limiter    *middleware.RateLimiter
	handler    http.Handler
	httpServer *http.Server
}

// New собирает сервер. publisher может быть nil - тогда маршрут
// публикации календаря не регистрируется.
func New(cfg *config.Config, logger *slog.Logger, store storage.Storage, publisher handlers.CalendarPublisher, version string) (*Server, error) {
	proxies, err := cfg.HTTP.TrustedProxyPrefixes()
	if err != nil {
		return nil, err
	}

	tokens := jwt.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	registry := revocation.NewRegistry(store, logger)

	authService := services.NewAuthService(store, tokens, registry, logger)
	taskService := services.NewTaskService(store, logger)
	calendarService := services.NewCalendarService(taskService)

	timeout := cfg.HTTP.RequestTimeout
	authHandler := handlers.NewAuthHandler(logger, authService, timeout)
	taskHandler := handlers.NewTaskHandler(logger, taskService, timeout)
	exportHandler := handlers.NewExportHandler(logger, calendarService, publisher, timeout)
	healthHandler := handlers.NewHealthHandler(logger, store, version)

	limiter := middleware.NewRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateWindow, logger)
	guard := middleware.AuthMiddleware(logger, tokens, registry)
	limit := middleware.RateLimitMiddleware(limiter, middleware.NewClientIPResolver(proxies), logger)

	mux := http.NewServeMux()

	// Auth
	mux.Handle("POST /api/auth/register", limit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", limit(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/me", guard(http.HandlerFunc(authHandler.Me)))

	// Tasks
	mux.Handle("GET /api/tasks", guard(http.HandlerFunc(taskHandler.List)))
	mux.Handle("POST /api/tasks", guard(http.HandlerFunc(taskHandler.Create)))
	mux.Handle("GET /api/tasks/{id}", guard(http.HandlerFunc(taskHandler.Get)))
	mux.Handle("PATCH /api/tasks/{id}", guard(http.HandlerFunc(taskHandler.Update)))
	mux.Handle("PUT /api/tasks/{id}", guard(http.HandlerFunc(taskHandler.Update)))
	mux.Handle("PUT /api/tasks/{id}/status", guard(http.HandlerFunc(taskHandler.UpdateStatus)))
	mux.Handle("DELETE /api/tasks/{id}", guard(http.HandlerFunc(taskHandler.Delete)))

	// Export
	mux.Handle("GET /api/tasks/export/ics", guard(http.HandlerFunc(exportHandler.ICS)))
	if exportHandler.CanPublish() {
		mux.Handle("POST /api/tasks/export/ics/link", guard(http.HandlerFunc(exportHandler.PublishICS)))
	}

	mux.HandleFunc("GET /api/health", healthHandler.Health)
	mux.HandleFunc("/", notFound)

	// Recovery снаружи, чтобы ловить панику в любом middleware
	var handler http.Handler = mux
	handler = middleware.CORSMiddleware(cfg.HTTP.AllowedOrigins)(handler)
	handler = middleware.LoggingWithSkip(logger, []string{"/api/health"})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		limiter:  limiter,
		handler:  handler,
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       time.Minute,
		},
	}, nil
}

// Handler корневой http.Handler со всеми middleware
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run запускает HTTP сервер и фоновую очистку отозванных токенов.
// Блокируется до отмены ctx, после чего корректно завершает активные запросы.
func (s *Server) Run(ctx context.Context) error {
	defer s.limiter.Stop()

	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go s.registry.Run(pruneCtx, s.cfg.Auth.RevocationPruneInterval)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// notFound JSON ответ для неизвестных маршрутов
func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "Not found."})
}
