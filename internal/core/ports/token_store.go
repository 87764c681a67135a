package ports

import (
	"context"
	"time"
)

// TokenRevoker remembers revoked access token IDs until they would expire anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
