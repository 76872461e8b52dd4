package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevocationStore keeps revoked token hashes in Redis. Entries carry the
// token's remaining TTL, so the list never outlives the tokens it blocks and
// needs no cleanup job.
type RedisRevocationStore struct {
	client *redis.Client
}

func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

// revokedKey generates the Redis key for a revoked token marker
func revokedKey(tokenHash string) string {
	return fmt.Sprintf("session:revoked:%s", tokenHash)
}

// Revoke marks a token hash as revoked until its natural expiry.
func (r *RedisRevocationStore) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("token expiration time is in the past")
	}

	if err := r.client.Set(ctx, revokedKey(tokenHash), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session token: %w", err)
	}

	return nil
}

// IsRevoked reports whether a token hash is on the revocation list.
func (r *RedisRevocationStore) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(tokenHash)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return n > 0, nil
}
