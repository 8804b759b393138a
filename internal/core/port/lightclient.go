package port

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
)

// ChainReader answers chain-level questions.
type ChainReader interface {
	ChainID(ctx context.Context) (uint64, error)
	BlockNumber(ctx context.Context) (uint64, error)
	Syncing(ctx context.Context) (*ethereum.SyncProgress, error)
	Coinbase(ctx context.Context) (common.Address, error)
}

// BlockReader resolves blocks. An absent block is reported either as a nil
// block with a nil error or as an error wrapping ethereum.NotFound.
type BlockReader interface {
	BlockByHash(ctx context.Context, hash common.Hash, fullTx bool) (*entity.Block, error)
	BlockByNumber(ctx context.Context, tag entity.BlockTag, fullTx bool) (*entity.Block, error)
	BlockTransactionCountByHash(ctx context.Context, hash common.Hash) (uint64, error)
	BlockTransactionCountByNumber(ctx context.Context, tag entity.BlockTag) (uint64, error)
}

// StateReader reads account state at a block.
type StateReader interface {
	Balance(ctx context.Context, account common.Address, tag entity.BlockTag) (*big.Int, error)
	Nonce(ctx context.Context, account common.Address, tag entity.BlockTag) (uint64, error)
	Code(ctx context.Context, account common.Address, tag entity.BlockTag) ([]byte, error)
}

// FeeOracle reports current fee levels in wei.
type FeeOracle interface {
	GasPrice(ctx context.Context) (*big.Int, error)
	PriorityFee(ctx context.Context) (*big.Int, error)
}

// Executor runs read-only message calls.
type Executor interface {
	Call(ctx context.Context, opts *entity.CallOptions, tag entity.BlockTag) ([]byte, error)
	EstimateGas(ctx context.Context, opts *entity.CallOptions) (uint64, error)
}

// TransactionSender broadcasts signed raw transactions.
type TransactionSender interface {
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
}

// EthereumClient is the full set of Ethereum light client operations the
// dispatcher consumes. Implementations must be safe for concurrent reads and
// serialize their own internal state mutation.
type EthereumClient interface {
	ChainReader
	BlockReader
	StateReader
	FeeOracle
	Executor
	TransactionSender
}

// StarknetClient is the Starknet light client capability set.
type StarknetClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
}
