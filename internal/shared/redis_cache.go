package shared

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/ssherwood/locationservices/internal/config"
	"github.com/ssherwood/locationservices/internal/location"
	"log/slog"
	"time"
)

// InitializeRedis opens and pings the result cache. It returns nil, nil when
// no REDIS_ADDRESS is configured.
func InitializeRedis(ctx context.Context) (*redis.Client, error) {
	if config.RedisAddress == "" {
		slog.Info("Redis address not configured, result cache disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddress,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		slog.Error("Unable to reach redis", slog.String("addr", config.RedisAddress), config.ErrAttr(err))
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	slog.Debug("Connected to redis", slog.String("addr", config.RedisAddress), slog.Int("db", config.RedisDB))
	return client, nil
}

// RedisCache adapts a go-redis client to location.Cache. Keys are namespaced
// with prefix.
type RedisCache struct {
	client redis.Cmdable
	prefix string
}

var _ location.Cache = (*RedisCache)(nil)

func NewRedisCache(client redis.Cmdable, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, location.ErrCacheMiss
	}
	return value, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}
