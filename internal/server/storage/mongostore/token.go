package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RevokeToken marks token as revoked until expiresAt
func (s *Storage) RevokeToken(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	// _id берется из фильтра при upsert
	_, err := s.revoked.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: tokenHash}},
		bson.D{{Key: "$setOnInsert", Value: bson.D{
			{Key: "expiresAt", Value: expiresAt.UTC()},
			{Key: "revokedAt", Value: time.Now().UTC()},
		}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether an unexpired revocation exists for the token.
// TTL монитор MongoDB работает раз в минуту, поэтому срок проверяется и здесь.
func (s *Storage) IsTokenRevoked(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	filter := bson.D{
		{Key: "_id", Value: tokenHash},
		{Key: "expiresAt", Value: bson.D{{Key: "$gt", Value: now.UTC()}}},
	}

	n, err := s.revoked.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}

// DeleteExpiredRevocations removes revocations whose token has already expired
func (s *Storage) DeleteExpiredRevocations(ctx context.Context, now time.Time) (int, error) {
	result, err := s.revoked.DeleteMany(ctx, bson.D{
		{Key: "expiresAt", Value: bson.D{{Key: "$lte", Value: now.UTC()}}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired revocations: %w", err)
	}
	return int(result.DeletedCount), nil
}
