package idalloc

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the set that holds claimed certificate numbers.
const DefaultRedisKey = "certify:ids"

// RedisRegistry claims identifiers with SADD on a shared set, so processes
// sharing the server never hand out the same identifier.
type RedisRegistry struct {
	client redis.Cmdable
	key    string
}

// NewRedisRegistry wraps an existing client.
func NewRedisRegistry(client redis.Cmdable, key string) *RedisRegistry {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisRegistry{client: client, key: key}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr, key string) (*RedisRegistry, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("连接 redis %s 失败: %w", addr, err)
	}
	return NewRedisRegistry(client, key), client, nil
}

func (r *RedisRegistry) Claim(ctx context.Context, id string) (bool, error) {
	n, err := r.client.SAdd(ctx, r.key, id).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Key returns the set name used for claims.
func (r *RedisRegistry) Key() string { return r.key }
