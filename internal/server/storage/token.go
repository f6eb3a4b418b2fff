package storage

import (
	"context"
	"time"
)

// RevocationStorage defines interface for revoked session token persistence.
// Tokens are identified by the hex SHA256 of the raw token string.
type RevocationStorage interface {
	// RevokeToken marks token as revoked until expiresAt
	// Revoking an already revoked token is not an error
	RevokeToken(ctx context.Context, tokenHash string, expiresAt time.Time) error

	// IsTokenRevoked reports whether token is revoked at the given moment.
	// Entries whose expiry has passed are treated as absent.
	IsTokenRevoked(ctx context.Context, tokenHash string, now time.Time) (bool, error)

	// DeleteExpiredRevocations removes entries expired before now
	// Returns number of deleted entries
	DeleteExpiredRevocations(ctx context.Context, now time.Time) (int, error)
}
