package token

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist records revoked refresh tokens by jti until they expire on
// their own.
type Blacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type redisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) Blacklist {
	return &redisBlacklist{client: client}
}

func (b *redisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, nothing to record.
		return nil
	}
	return b.client.Set(ctx, blacklistKey(jti), "1", ttl).Err()
}

func (b *redisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func blacklistKey(jti string) string {
	return "token:blacklist:" + jti
}
