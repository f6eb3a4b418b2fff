package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RevokeToken marks token as revoked until expiresAt.
// Повторный отзыв того же токена ничего не меняет.
func (s *Storage) RevokeToken(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	query := s.db.Rebind(`
		INSERT INTO revoked_tokens (token_hash, expires_at, revoked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (token_hash) DO NOTHING
	`)

	_, err := s.db.ExecContext(ctx, query,
		tokenHash,
		expiresAt.UnixMilli(),
		time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsTokenRevoked reports whether an unexpired revocation exists for the token
func (s *Storage) IsTokenRevoked(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	query := s.db.Rebind(`
		SELECT 1
		FROM revoked_tokens
		WHERE token_hash = ? AND expires_at > ?
	`)

	var found int
	err := s.db.GetContext(ctx, &found, query, tokenHash, now.UnixMilli())
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}

	return true, nil
}

// DeleteExpiredRevocations removes revocations whose token has already expired
func (s *Storage) DeleteExpiredRevocations(ctx context.Context, now time.Time) (int, error) {
	query := s.db.Rebind(`DELETE FROM revoked_tokens WHERE expires_at <= ?`)

	result, err := s.db.ExecContext(ctx, query, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired revocations: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}
