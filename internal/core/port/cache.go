package port

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
)

// BlockCache stores blocks addressed by hash. Such blocks are immutable, so
// entries never need invalidation, only eviction.
type BlockCache interface {
	GetBlock(ctx context.Context, hash common.Hash, fullTx bool) (*entity.Block, bool, error)
	PutBlock(ctx context.Context, block *entity.Block, fullTx bool) error
}
