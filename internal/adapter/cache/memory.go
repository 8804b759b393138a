package cache

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/apperr"
	imetrics "github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/metrics"
)

const backendMemory = "memory"

type memoryKey struct {
	hash   common.Hash
	fullTx bool
}

// MemoryBlockCache is a size-bounded in-process LRU with optional expiry.
// Cached blocks are shared and must not be mutated by callers.
type MemoryBlockCache struct {
	lru *expirable.LRU[memoryKey, *entity.Block]
}

func NewMemoryBlockCache(v *validator.Validate, cfg *MemoryConfig) (*MemoryBlockCache, error) {
	if err := v.Struct(cfg); err != nil {
		return nil, apperr.NewInvalidArgErr("invalid memory cache config", err)
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	return &MemoryBlockCache{
		lru: expirable.NewLRU[memoryKey, *entity.Block](cfg.Size, nil, ttl),
	}, nil
}

func (c *MemoryBlockCache) GetBlock(_ context.Context, hash common.Hash, fullTx bool) (*entity.Block, bool, error) {
	b, ok := c.lru.Get(memoryKey{hash: hash, fullTx: fullTx})
	if !ok {
		imetrics.Cache().LookupsTotal.WithLabelValues(backendMemory, "miss").Inc()
		return nil, false, nil
	}
	imetrics.Cache().LookupsTotal.WithLabelValues(backendMemory, "hit").Inc()
	return b, true, nil
}

func (c *MemoryBlockCache) PutBlock(_ context.Context, block *entity.Block, fullTx bool) error {
	if block == nil {
		return apperr.NewInvalidArgErr("block is required", nil)
	}
	c.lru.Add(memoryKey{hash: block.Hash, fullTx: fullTx}, block)
	return nil
}

func (c *MemoryBlockCache) Len() int { return c.lru.Len() }
