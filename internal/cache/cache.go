// Package cache keeps committed idempotent responses close to the request
// adapter. Idempotency records never change once written, so a cached entry is
// always the committed response and the database stays the source of truth.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vysogota0399/gophermart_transfers/internal/config"
	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyPrefix = "transfers:idempotency:"

type IdempotencyCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, response string) error
}

type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type RedisCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewRedisCache(client RedisClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("cache: get idempotency response error %w", err)
	}

	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, response string) error {
	if err := c.client.Set(ctx, keyPrefix+key, response, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set idempotency response error %w", err)
	}

	return nil
}

// NoopCache is used when no Redis address is configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (NoopCache) Set(context.Context, string, string) error         { return nil }

func NewIdempotencyCache(lc fx.Lifecycle, cfg *config.Config, lg *logging.ZapLogger) IdempotencyCache {
	if cfg.RedisAddress == "" {
		lg.InfoCtx(context.Background(), "idempotency cache disabled")
		return NoopCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				// an unreachable cache only costs a database round trip
				if err := client.Ping(ctx).Err(); err != nil {
					lg.WarnCtx(ctx, "redis ping failed", zap.String("address", cfg.RedisAddress), zap.Error(err))
				}

				return nil
			},
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		},
	)

	return NewRedisCache(client, cfg.IdempotencyCacheTTLDuration())
}
