package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/adapter/cache"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/port"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/applog"
	"github.com/spf13/viper"
)

const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// InitBlockCache selects the block cache from cache.backend. It returns a nil
// cache for "none" and a cleanup func that is always safe to call.
func InitBlockCache(ctx context.Context, log applog.AppLogger, v *validator.Validate) (port.BlockCache, func(), error) {
	if v == nil {
		v = validator.New()
	}
	noop := func() {}

	switch backend := viper.GetString("cache.backend"); backend {
	case "", CacheBackendNone:
		return nil, noop, nil

	case CacheBackendMemory:
		c, err := cache.NewMemoryBlockCache(v, &cache.MemoryConfig{
			Size:       viper.GetInt("cache.size"),
			TTLSeconds: viper.GetInt("cache.ttl_seconds"),
		})
		if err != nil {
			return nil, noop, fmt.Errorf("infra: failed to init memory cache: %w", err)
		}
		return c, noop, nil

	case CacheBackendRedis:
		cfg := cache.RedisConfig{
			Host:               viper.GetString("redis.host"),
			Port:               viper.GetString("redis.port"),
			Password:           viper.GetString("redis.password"),
			DB:                 viper.GetInt("redis.db"),
			UseTLS:             viper.GetBool("redis.use_tls"),
			PoolSize:           viper.GetInt("redis.pool_size"),
			MaxRetries:         viper.GetInt("redis.max_retries"),
			DialTimeoutSeconds: viper.GetInt("redis.dial_timeout_seconds"),
			KeyPrefix:          viper.GetString("redis.key_prefix"),
			TTLSeconds:         viper.GetInt("cache.ttl_seconds"),
		}
		c, err := cache.NewRedisBlockCache(log, v, &cfg)
		if err != nil {
			return nil, noop, fmt.Errorf("infra: failed to init redis cache: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := c.Ping(pingCtx); err != nil {
			log.Warn("Redis cache unreachable at startup; lookups will fall back to the light client", "err", err)
		}
		return c, func() { _ = c.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("infra: unknown cache backend %q", backend)
	}
}
