package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/wire"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/apperr"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/applog"
	imetrics "github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

const backendRedis = "redis"

// RedisBlockCache stores hash-addressed blocks as their JSON wire object.
// Entries for the full and hash-only representations are kept apart.
//
// Concurrency: safe for concurrent use; it relies on the concurrency-safe
// go-redis client.
type RedisBlockCache struct {
	rdb *redis.Client
	log applog.AppLogger
	cfg RedisConfig
	ttl time.Duration
}

// NewRedisBlockCache validates cfg, optionally enables TLS and returns a cache
// backed by a new Redis client.
func NewRedisBlockCache(log applog.AppLogger, v *validator.Validate, cfg *RedisConfig) (*RedisBlockCache, error) {
	if err := v.Struct(cfg); err != nil {
		log.Error("invalid redis config", "err", err)
		return nil, apperr.NewInvalidArgErr("invalid redis cache config", err)
	}

	opts := &redis.Options{
		Addr:        net.JoinHostPort(cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeoutSeconds) * time.Second,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return &RedisBlockCache{
		rdb: redis.NewClient(opts),
		log: log,
		cfg: *cfg,
		ttl: time.Duration(cfg.TTLSeconds) * time.Second,
	}, nil
}

func (c *RedisBlockCache) key(hash common.Hash, fullTx bool) string {
	repr := "hashes"
	if fullTx {
		repr = "full"
	}
	return fmt.Sprintf("%s:%s:%s", c.cfg.KeyPrefix, hash.Hex(), repr)
}

// GetBlock reports a miss as (nil, false, nil).
func (c *RedisBlockCache) GetBlock(ctx context.Context, hash common.Hash, fullTx bool) (*entity.Block, bool, error) {
	payload, err := c.rdb.Get(ctx, c.key(hash, fullTx)).Bytes()
	if errors.Is(err, redis.Nil) {
		imetrics.Cache().LookupsTotal.WithLabelValues(backendRedis, "miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		imetrics.Cache().ErrorsTotal.WithLabelValues(backendRedis, "get").Inc()
		return nil, false, apperr.NewInternalErr("redis GET block failed", err)
	}

	b, err := wire.UnmarshalBlockJSON(payload, fullTx)
	if err != nil {
		imetrics.Cache().ErrorsTotal.WithLabelValues(backendRedis, "decode").Inc()
		c.log.Warn("Dropping undecodable cached block", "hash", hash.Hex(), "err", err)
		_ = c.rdb.Del(ctx, c.key(hash, fullTx)).Err()
		return nil, false, nil
	}
	imetrics.Cache().LookupsTotal.WithLabelValues(backendRedis, "hit").Inc()
	return b, true, nil
}

func (c *RedisBlockCache) PutBlock(ctx context.Context, block *entity.Block, fullTx bool) error {
	if block == nil {
		return apperr.NewInvalidArgErr("block is required", nil)
	}
	payload, err := wire.MarshalBlockJSON(block)
	if err != nil {
		return apperr.NewInternalErr("failed to marshal block payload", err)
	}
	if err := c.rdb.Set(ctx, c.key(block.Hash, fullTx), payload, c.ttl).Err(); err != nil {
		imetrics.Cache().ErrorsTotal.WithLabelValues(backendRedis, "put").Inc()
		return apperr.NewInternalErr("redis SET block failed", err)
	}
	c.log.Trace("Cached block", "hash", block.Hash.Hex(), "full", fullTx)
	return nil
}

// Ping checks connectivity to Redis.
func (c *RedisBlockCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *RedisBlockCache) Close() error {
	return c.rdb.Close()
}
