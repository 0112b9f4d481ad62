package seen

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "newsdraft:seen:"

// redisClient is the subset of *redis.Client used by redisStore.
type redisClient interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// redisStore keeps URL hashes as expiring Redis keys, so several service
// instances can share one seen set.
type redisStore struct {
	client redisClient
	ttl    time.Duration
}

func newRedisStore(opts Options) *redisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})
	return &redisStore{client: client, ttl: opts.TTL}
}

func (r *redisStore) Seen(ctx context.Context, url string) (bool, error) {
	n, err := r.client.Exists(ctx, redisKeyPrefix+keyFor(url)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (r *redisStore) Mark(ctx context.Context, url string) error {
	if err := r.client.Set(ctx, redisKeyPrefix+keyFor(url), time.Now().Unix(), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *redisStore) Close() error {
	return r.client.Close()
}
