package revocation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/taskkeeper/internal/crypto"
	"github.com/iudanet/taskkeeper/internal/server/storage"
)

// Registry учитывает отозванные (logged out) сессионные токены.
//
// Источник истины - RevocationStorage, поэтому отзыв переживает рестарт и
// виден всем инстансам. Локальный кеш хранит только положительные ответы:
// отозванный токен остается отозванным до своего exp.
type Registry struct {
	store  storage.RevocationStorage
	logger *slog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	cached map[string]time.Time // token hash -> exp
}

// NewRegistry создает реестр поверх хранилища
func NewRegistry(store storage.RevocationStorage, logger *slog.Logger) *Registry {
	return &Registry{
		store:  store,
		logger: logger,
		now:    time.Now,
		cached: make(map[string]time.Time),
	}
}

// Revoke отзывает токен до момента expiresAt (exp самого токена)
func (r *Registry) Revoke(ctx context.Context, rawToken string, expiresAt time.Time) error {
	hash := crypto.HashToken(rawToken)
	if err := r.store.RevokeToken(ctx, hash, expiresAt); err != nil {
		return err
	}

	r.mu.Lock()
	r.cached[hash] = expiresAt
	r.mu.Unlock()
	return nil
}

// IsRevoked сообщает, отозван ли токен
func (r *Registry) IsRevoked(ctx context.Context, rawToken string) (bool, error) {
	hash := crypto.HashToken(rawToken)
	now := r.now()

	r.mu.RLock()
	exp, ok := r.cached[hash]
	r.mu.RUnlock()
	if ok && now.Before(exp) {
		return true, nil
	}

	return r.store.IsTokenRevoked(ctx, hash, now)
}

// Prune удаляет истекшие записи из хранилища и локального кеша
func (r *Registry) Prune(ctx context.Context) (int, error) {
	now := r.now()

	r.mu.Lock()
	for hash, exp := range r.cached {
		if !now.Before(exp) {
			delete(r.cached, hash)
		}
	}
	r.mu.Unlock()

	return r.store.DeleteExpiredRevocations(ctx, now)
}

// Run периодически вызывает Prune, пока не отменен ctx
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := r.Prune(ctx)
			if err != nil {
				if ctx.Err() == nil {
					r.logger.ErrorContext(ctx, "Failed to prune revoked tokens", slog.Any("error", err))
				}
				continue
			}
			if deleted > 0 {
				r.logger.DebugContext(ctx, "Pruned revoked tokens", slog.Int("deleted", deleted))
			}
		}
	}
}
