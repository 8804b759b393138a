package usecase

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
)

var errNotStubbed = errors.New("not stubbed")

// fakeEthereumClient answers from the configured funcs and counts every
// backend call.
type fakeEthereumClient struct {
	calls atomic.Int64

	chainID       uint64
	blockNumber   uint64
	balance       *big.Int
	blockByHash   func(ctx context.Context, hash common.Hash, fullTx bool) (*entity.Block, error)
	blockByNumber func(ctx context.Context, tag entity.BlockTag, fullTx bool) (*entity.Block, error)
	countByHash   func(ctx context.Context, hash common.Hash) (uint64, error)
	sendRaw       func(ctx context.Context, raw []byte) (common.Hash, error)
	call          func(ctx context.Context, opts *entity.CallOptions, tag entity.BlockTag) ([]byte, error)
	syncing       *ethereum.SyncProgress
	code          []byte
}

func (f *fakeEthereumClient) ChainID(context.Context) (uint64, error) {
	f.calls.Add(1)
	return f.chainID, nil
}

func (f *fakeEthereumClient) BlockNumber(ctx context.Context) (uint64, error) {
	f.calls.Add(1)
	return f.blockNumber, ctx.Err()
}

func (f *fakeEthereumClient) Syncing(context.Context) (*ethereum.SyncProgress, error) {
	f.calls.Add(1)
	return f.syncing, nil
}

func (f *fakeEthereumClient) Coinbase(context.Context) (common.Address, error) {
	f.calls.Add(1)
	return common.HexToAddress("0x00000000000000000000000000000000000000aa"), nil
}

func (f *fakeEthereumClient) BlockByHash(ctx context.Context, hash common.Hash, fullTx bool) (*entity.Block, error) {
	f.calls.Add(1)
	if f.blockByHash == nil {
		return nil, errNotStubbed
	}
	return f.blockByHash(ctx, hash, fullTx)
}

func (f *fakeEthereumClient) BlockByNumber(ctx context.Context, tag entity.BlockTag, fullTx bool) (*entity.Block, error) {
	f.calls.Add(1)
	if f.blockByNumber == nil {
		return nil, errNotStubbed
	}
	return f.blockByNumber(ctx, tag, fullTx)
}

func (f *fakeEthereumClient) BlockTransactionCountByHash(ctx context.Context, hash common.Hash) (uint64, error) {
	f.calls.Add(1)
	if f.countByHash == nil {
		return 0, errNotStubbed
	}
	return f.countByHash(ctx, hash)
}

func (f *fakeEthereumClient) BlockTransactionCountByNumber(context.Context, entity.BlockTag) (uint64, error) {
	f.calls.Add(1)
	return 0, ethereum.NotFound
}

func (f *fakeEthereumClient) Balance(_ context.Context, _ common.Address, tag entity.BlockTag) (*big.Int, error) {
	f.calls.Add(1)
	if tag != entity.Latest {
		return nil, errors.New("balance must be read at latest")
	}
	return f.balance, nil
}

func (f *fakeEthereumClient) Nonce(context.Context, common.Address, entity.BlockTag) (uint64, error) {
	f.calls.Add(1)
	return 7, nil
}

func (f *fakeEthereumClient) Code(context.Context, common.Address, entity.BlockTag) ([]byte, error) {
	f.calls.Add(1)
	return f.code, nil
}

func (f *fakeEthereumClient) GasPrice(context.Context) (*big.Int, error) {
	f.calls.Add(1)
	return big.NewInt(30_000_000_000), nil
}

func (f *fakeEthereumClient) PriorityFee(context.Context) (*big.Int, error) {
	f.calls.Add(1)
	return big.NewInt(1_500_000_000), nil
}

func (f *fakeEthereumClient) Call(ctx context.Context, opts *entity.CallOptions, tag entity.BlockTag) ([]byte, error) {
	f.calls.Add(1)
	if f.call == nil {
		return nil, errNotStubbed
	}
	return f.call(ctx, opts, tag)
}

func (f *fakeEthereumClient) EstimateGas(context.Context, *entity.CallOptions) (uint64, error) {
	f.calls.Add(1)
	return 21000, nil
}

func (f *fakeEthereumClient) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	f.calls.Add(1)
	if f.sendRaw == nil {
		return common.Hash{}, errNotStubbed
	}
	return f.sendRaw(ctx, raw)
}

type fakeStarknetClient struct {
	chainID     *big.Int
	blockNumber uint64
}

func (f *fakeStarknetClient) ChainID(context.Context) (*big.Int, error) { return f.chainID, nil }

func (f *fakeStarknetClient) BlockNumber(context.Context) (uint64, error) { return f.blockNumber, nil }

type cacheKey struct {
	hash   common.Hash
	fullTx bool
}

type fakeBlockCache struct {
	mu     sync.Mutex
	blocks map[cacheKey]*entity.Block
	getErr error
}

func newFakeBlockCache() *fakeBlockCache {
	return &fakeBlockCache{blocks: make(map[cacheKey]*entity.Block)}
}

func (c *fakeBlockCache) GetBlock(_ context.Context, hash common.Hash, fullTx bool) (*entity.Block, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	b, ok := c.blocks[cacheKey{hash, fullTx}]
	return b, ok, nil
}

func (c *fakeBlockCache) PutBlock(_ context.Context, b *entity.Block, fullTx bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks[cacheKey{b.Hash, fullTx}] = b
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []*entity.SubmittedTransaction
	err       error
}

func (p *fakePublisher) PublishTransaction(_ context.Context, tx *entity.SubmittedTransaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, tx)
	return nil
}
