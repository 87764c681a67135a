package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker keeps revoked access token IDs in Redis until they expire.
// Key format: cms:revoked:<jti>
type TokenRevoker struct {
	client redis.Cmdable
}

func NewTokenRevoker(client redis.Cmdable) *TokenRevoker {
	return &TokenRevoker{client: client}
}

// Revoke records tokenID for ttl, the remaining lifetime of the token.
func (r *TokenRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been revoked.
func (r *TokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (r *TokenRevoker) key(tokenID string) string {
	return key("revoked", tokenID)
}
