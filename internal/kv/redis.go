package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect initializes a Redis client from a redis:// URL or a host:port
// address and checks that it answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Redis implements Store on a Redis client. Every key is namespaced with prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// SetWithTTL stores value with an expiry; SET is atomic with its TTL.
func (r *Redis) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

// Get loads a value.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Delete removes a key.
func (r *Redis) Delete(ctx context.Context, key string) (int64, error) {
	return r.client.Del(ctx, r.prefix+key).Result()
}

var deleteIfValue = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// DeleteIfValue removes key if it holds value. GET and DEL run as one script.
func (r *Redis) DeleteIfValue(ctx context.Context, key, value string) (int64, error) {
	return deleteIfValue.Run(ctx, r.client, []string{r.prefix + key}, value).Int64()
}

// Ping checks that Redis answers.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
