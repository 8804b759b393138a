package usecase

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/port"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/wire"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/apperr"
	imetrics "github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/metrics"
)

// RPC method names as served on the wire.
const (
	MethodEthChainID                           = "eth_chainId"
	MethodEthBlockNumber                       = "eth_blockNumber"
	MethodEthGasPrice                          = "eth_gasPrice"
	MethodEthMaxPriorityFeePerGas              = "eth_maxPriorityFeePerGas"
	MethodEthSyncing                           = "eth_syncing"
	MethodEthCoinbase                          = "eth_coinbase"
	MethodEthGetBlockByHash                    = "eth_getBlockByHash"
	MethodEthGetBlockByNumber                  = "eth_getBlockByNumber"
	MethodEthGetBlockTxCountByHash             = "eth_getBlockTransactionCountByHash"
	MethodEthGetBlockTxCountByNumber           = "eth_getBlockTransactionCountByNumber"
	MethodEthGetBalance                        = "eth_getBalance"
	MethodEthGetTransactionCount               = "eth_getTransactionCount"
	MethodEthGetCode                           = "eth_getCode"
	MethodEthSendRawTransaction                = "eth_sendRawTransaction"
	MethodEthCall                              = "eth_call"
	MethodEthEstimateGas                       = "eth_estimateGas"
	MethodEthGetTransactionByBlockHashAndIdx   = "eth_getTransactionByBlockHashAndIndex"
	MethodEthGetTransactionByBlockNumberAndIdx = "eth_getTransactionByBlockNumberAndIndex"
)

func (d *Dispatcher) ChainID(ctx context.Context) (id uint64, err error) {
	defer d.observe(MethodEthChainID, d.begin(), &err)
	return callEthereum(ctx, d, MethodEthChainID, func(ctx context.Context, c port.EthereumClient) (uint64, error) {
		return c.ChainID(ctx)
	})
}

func (d *Dispatcher) BlockNumber(ctx context.Context) (n uint64, err error) {
	defer d.observe(MethodEthBlockNumber, d.begin(), &err)
	return callEthereum(ctx, d, MethodEthBlockNumber, func(ctx context.Context, c port.EthereumClient) (uint64, error) {
		return c.BlockNumber(ctx)
	})
}

// GasPrice returns the gas price in wei as a decimal string.
func (d *Dispatcher) GasPrice(ctx context.Context) (price string, err error) {
	defer d.observe(MethodEthGasPrice, d.begin(), &err)
	p, err := callEthereum(ctx, d, MethodEthGasPrice, func(ctx context.Context, c port.EthereumClient) (*big.Int, error) {
		return c.GasPrice(ctx)
	})
	if err != nil {
		return "", err
	}
	return wire.FormatDecimal(p), nil
}

// MaxPriorityFeePerGas returns the suggested tip in wei as a decimal string.
func (d *Dispatcher) MaxPriorityFeePerGas(ctx context.Context) (fee string, err error) {
	defer d.observe(MethodEthMaxPriorityFeePerGas, d.begin(), &err)
	p, err := callEthereum(ctx, d, MethodEthMaxPriorityFeePerGas, func(ctx context.Context, c port.EthereumClient) (*big.Int, error) {
		return c.PriorityFee(ctx)
	})
	if err != nil {
		return "", err
	}
	return wire.FormatDecimal(p), nil
}

// Syncing reports whether the light client is still catching up.
func (d *Dispatcher) Syncing(ctx context.Context) (syncing bool, err error) {
	defer d.observe(MethodEthSyncing, d.begin(), &err)
	progress, err := callEthereum(ctx, d, MethodEthSyncing, func(ctx context.Context, c port.EthereumClient) (*ethereum.SyncProgress, error) {
		return c.Syncing(ctx)
	})
	if err != nil {
		return false, err
	}
	return progress != nil, nil
}

func (d *Dispatcher) Coinbase(ctx context.Context) (addr string, err error) {
	defer d.observe(MethodEthCoinbase, d.begin(), &err)
	a, err := callEthereum(ctx, d, MethodEthCoinbase, func(ctx context.Context, c port.EthereumClient) (common.Address, error) {
		return c.Coinbase(ctx)
	})
	if err != nil {
		return "", err
	}
	return a.Hex(), nil
}

// GetBlockByHash returns the block or nil when the light client has no such
// block.
func (d *Dispatcher) GetBlockByHash(ctx context.Context, hashParam, fullTxParam string) (block *wire.BlockJSON, err error) {
	defer d.observe(MethodEthGetBlockByHash, d.begin(), &err)
	hash, err := wire.DecodeHash(hashParam)
	if err != nil {
		return nil, err
	}
	fullTx, err := wire.DecodeBool(fullTxParam)
	if err != nil {
		return nil, err
	}
	b, err := d.blockByHash(ctx, MethodEthGetBlockByHash, hash, fullTx)
	if err != nil {
		return nil, err
	}
	return wire.EncodeBlock(b), nil
}

// GetBlockByNumber returns the block or nil when the light client has no such
// block.
func (d *Dispatcher) GetBlockByNumber(ctx context.Context, tagParam, fullTxParam string) (block *wire.BlockJSON, err error) {
	defer d.observe(MethodEthGetBlockByNumber, d.begin(), &err)
	tag, err := wire.DecodeBlockTag(tagParam)
	if err != nil {
		return nil, err
	}
	fullTx, err := wire.DecodeBool(fullTxParam)
	if err != nil {
		return nil, err
	}
	b, err := d.blockByNumber(ctx, MethodEthGetBlockByNumber, tag, fullTx)
	if err != nil {
		return nil, err
	}
	return wire.EncodeBlock(b), nil
}

// GetBlockTransactionCountByHash fails with NOT_FOUND for an absent block.
func (d *Dispatcher) GetBlockTransactionCountByHash(ctx context.Context, hashParam string) (count uint64, err error) {
	defer d.observe(MethodEthGetBlockTxCountByHash, d.begin(), &err)
	hash, err := wire.DecodeHash(hashParam)
	if err != nil {
		return 0, err
	}
	return callEthereum(ctx, d, MethodEthGetBlockTxCountByHash, func(ctx context.Context, c port.EthereumClient) (uint64, error) {
		return c.BlockTransactionCountByHash(ctx, hash)
	})
}

// GetBlockTransactionCountByNumber fails with NOT_FOUND for an absent block.
func (d *Dispatcher) GetBlockTransactionCountByNumber(ctx context.Context, tagParam string) (count uint64, err error) {
	defer d.observe(MethodEthGetBlockTxCountByNumber, d.begin(), &err)
	tag, err := wire.DecodeBlockTag(tagParam)
	if err != nil {
		return 0, err
	}
	return callEthereum(ctx, d, MethodEthGetBlockTxCountByNumber, func(ctx context.Context, c port.EthereumClient) (uint64, error) {
		return c.BlockTransactionCountByNumber(ctx, tag)
	})
}

// GetBalance returns the latest balance of the account in ether.
func (d *Dispatcher) GetBalance(ctx context.Context, addressParam string) (balance string, err error) {
	defer d.observe(MethodEthGetBalance, d.begin(), &err)
	addr, err := wire.DecodeAddress(addressParam)
	if err != nil {
		return "", err
	}
	wei, err := callEthereum(ctx, d, MethodEthGetBalance, func(ctx context.Context, c port.EthereumClient) (*big.Int, error) {
		return c.Balance(ctx, addr, entity.Latest)
	})
	if err != nil {
		return "", err
	}
	return wire.FormatEther(wei), nil
}

func (d *Dispatcher) GetTransactionCount(ctx context.Context, addressParam string) (nonce uint64, err error) {
	defer d.observe(MethodEthGetTransactionCount, d.begin(), &err)
	addr, err := wire.DecodeAddress(addressParam)
	if err != nil {
		return 0, err
	}
	return callEthereum(ctx, d, MethodEthGetTransactionCount, func(ctx context.Context, c port.EthereumClient) (uint64, error) {
		return c.Nonce(ctx, addr, entity.Latest)
	})
}

// GetCode returns the latest code of the account as a byte array.
func (d *Dispatcher) GetCode(ctx context.Context, addressParam string) (code wire.ByteArray, err error) {
	defer d.observe(MethodEthGetCode, d.begin(), &err)
	addr, err := wire.DecodeAddress(addressParam)
	if err != nil {
		return nil, err
	}
	b, err := callEthereum(ctx, d, MethodEthGetCode, func(ctx context.Context, c port.EthereumClient) ([]byte, error) {
		return c.Code(ctx, addr, entity.Latest)
	})
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = []byte{}
	}
	return wire.ByteArray(b), nil
}

// SendRawTransaction broadcasts a signed transaction and returns its hash.
// This is the only method with an effect outside the process.
func (d *Dispatcher) SendRawTransaction(ctx context.Context, rawParam string) (txHash string, err error) {
	defer d.observe(MethodEthSendRawTransaction, d.begin(), &err)
	raw, err := wire.DecodeBytes(rawParam)
	if err != nil {
		return "", err
	}
	hash, err := callEthereum(ctx, d, MethodEthSendRawTransaction, func(ctx context.Context, c port.EthereumClient) (common.Hash, error) {
		return c.SendRawTransaction(ctx, raw)
	})
	if err != nil {
		return "", err
	}
	d.publishSubmitted(ctx, hash, raw)
	return hash.Hex(), nil
}

// Call executes a read-only message call and returns its output as hex.
func (d *Dispatcher) Call(ctx context.Context, req wire.CallRequest, tagParam string) (output string, err error) {
	defer d.observe(MethodEthCall, d.begin(), &err)
	opts, err := wire.DecodeCallOptions(req)
	if err != nil {
		return "", err
	}
	tag, err := wire.DecodeBlockTag(tagParam)
	if err != nil {
		return "", err
	}
	out, err := callEthereum(ctx, d, MethodEthCall, func(ctx context.Context, c port.EthereumClient) ([]byte, error) {
		return c.Call(ctx, opts, tag)
	})
	if err != nil {
		return "", err
	}
	return wire.EncodeHex(out), nil
}

// EstimateGas returns the gas estimate as a decimal string.
func (d *Dispatcher) EstimateGas(ctx context.Context, req wire.CallRequest) (gas string, err error) {
	defer d.observe(MethodEthEstimateGas, d.begin(), &err)
	opts, err := wire.DecodeCallOptions(req)
	if err != nil {
		return "", err
	}
	g, err := callEthereum(ctx, d, MethodEthEstimateGas, func(ctx context.Context, c port.EthereumClient) (uint64, error) {
		return c.EstimateGas(ctx, opts)
	})
	if err != nil {
		return "", err
	}
	return wire.FormatUint(g), nil
}

// GetTransactionByBlockHashAndIndex always resolves the block with full
// transaction bodies. An absent block behaves like an empty one.
func (d *Dispatcher) GetTransactionByBlockHashAndIndex(ctx context.Context, hashParam, indexParam string) (tx *wire.TransactionJSON, err error) {
	defer d.observe(MethodEthGetTransactionByBlockHashAndIdx, d.begin(), &err)
	hash, err := wire.DecodeHash(hashParam)
	if err != nil {
		return nil, err
	}
	index, err := wire.DecodeIndex(indexParam)
	if err != nil {
		return nil, err
	}
	b, err := d.blockByHash(ctx, MethodEthGetTransactionByBlockHashAndIdx, hash, true)
	if err != nil {
		return nil, err
	}
	return selectTransaction(b, index)
}

// GetTransactionByBlockNumberAndIndex always resolves the block with full
// transaction bodies. An absent block behaves like an empty one.
func (d *Dispatcher) GetTransactionByBlockNumberAndIndex(ctx context.Context, tagParam, indexParam string) (tx *wire.TransactionJSON, err error) {
	defer d.observe(MethodEthGetTransactionByBlockNumberAndIdx, d.begin(), &err)
	tag, err := wire.DecodeBlockTag(tagParam)
	if err != nil {
		return nil, err
	}
	index, err := wire.DecodeIndex(indexParam)
	if err != nil {
		return nil, err
	}
	b, err := d.blockByNumber(ctx, MethodEthGetTransactionByBlockNumberAndIdx, tag, true)
	if err != nil {
		return nil, err
	}
	return selectTransaction(b, index)
}

// selectTransaction indexes into the block's bodies. A hash-only list has no
// bodies to select from and counts as empty.
func selectTransaction(b *entity.Block, index uint64) (*wire.TransactionJSON, error) {
	var bodies []entity.Transaction
	if b != nil && b.Transactions.IsFull() {
		bodies = b.Transactions.Bodies()
	}
	if index >= uint64(len(bodies)) {
		return nil, apperr.NewIndexOutOfRangeErr(index, len(bodies))
	}
	return wire.EncodeTransaction(&bodies[index]), nil
}

func (d *Dispatcher) blockByHash(ctx context.Context, method string, hash common.Hash, fullTx bool) (*entity.Block, error) {
	if d.cache != nil {
		b, ok, err := d.cache.GetBlock(ctx, hash, fullTx)
		switch {
		case err != nil:
			d.log.Warn("Block cache lookup failed", "hash", hash.Hex(), "err", err)
			imetrics.App().WarningsTotal.WithLabelValues(imetrics.ComponentCache, "get").Inc()
		case ok:
			return b, nil
		}
	}

	b, err := callEthereum(ctx, d, method, func(ctx context.Context, c port.EthereumClient) (*entity.Block, error) {
		return c.BlockByHash(ctx, hash, fullTx)
	})
	if absent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if b != nil && d.cache != nil {
		if err := d.cache.PutBlock(ctx, b, fullTx); err != nil {
			d.log.Warn("Block cache store failed", "hash", hash.Hex(), "err", err)
			imetrics.App().WarningsTotal.WithLabelValues(imetrics.ComponentCache, "put").Inc()
		}
	}
	return b, nil
}

func (d *Dispatcher) blockByNumber(ctx context.Context, method string, tag entity.BlockTag, fullTx bool) (*entity.Block, error) {
	b, err := callEthereum(ctx, d, method, func(ctx context.Context, c port.EthereumClient) (*entity.Block, error) {
		return c.BlockByNumber(ctx, tag, fullTx)
	})
	if absent(err) {
		return nil, nil
	}
	return b, err
}

func absent(err error) bool {
	var nf *apperr.NotFoundErr
	return errors.As(err, &nf)
}

func (d *Dispatcher) publishSubmitted(ctx context.Context, hash common.Hash, raw []byte) {
	if d.publisher == nil {
		return
	}
	ev := &entity.SubmittedTransaction{Hash: hash, Raw: raw, SubmittedAt: d.now().UTC()}
	if err := d.publisher.PublishTransaction(ctx, ev); err != nil {
		d.log.Warn("Failed to publish submitted transaction", "hash", hash.Hex(), "err", err)
		imetrics.App().WarningsTotal.WithLabelValues(imetrics.ComponentKafka, "publish").Inc()
	}
}
