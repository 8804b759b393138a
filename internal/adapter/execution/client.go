package execution

import (
	"context"
	"encoding/json"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/go-playground/validator/v10"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/wire"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/apperr"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/applog"
	imetrics "github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/metrics"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/pattern"
)

// Client implements port.EthereumClient against the JSON-RPC endpoint of an
// Ethereum light client. Typed calls go through ethclient; the block object,
// transaction counts, coinbase and raw submission go through the underlying
// rpc.Client so that absence and the transaction representation are kept.
//
// Use NewClient to construct an instance and Connect before issuing calls.
type Client struct {
	log           applog.AppLogger
	config        *Config
	newClient     func(context.Context) (*rpc.Client, error)
	dialRetryOpts []pattern.RetryOption

	mu  sync.RWMutex
	rpc rpcCaller
	eth ethereumClient
}

// NewClient validates cfg and returns an unconnected Client.
func NewClient(log applog.AppLogger, cfg *Config, v *validator.Validate) (*Client, error) {
	if err := v.Struct(cfg); err != nil {
		log.Error("invalid config", "err", err)
		return nil, apperr.NewInvalidArgErr("invalid ethereum client config", err)
	}

	c := &Client{
		log:    log,
		config: cfg,
	}
	c.newClient = func(ctx context.Context) (*rpc.Client, error) {
		return rpc.DialContext(ctx, cfg.URL)
	}
	c.dialRetryOpts = dialRetryOptionsFromConfig(cfg)
	return c, nil
}

// NewClientFromRPC wraps an already connected rpc.Client.
func NewClientFromRPC(log applog.AppLogger, rc *rpc.Client) *Client {
	c := &Client{log: log, config: &Config{}}
	c.attach(rc)
	return c
}

func dialRetryOptionsFromConfig(cfg *Config) []pattern.RetryOption {
	var opts []pattern.RetryOption
	if cfg.DialMaxRetryAttempts > 0 {
		opts = append(opts, pattern.WithMaxAttempts(cfg.DialMaxRetryAttempts))
	}
	if cfg.DialRetryInitialBackoffMS > 0 {
		opts = append(opts, pattern.WithInitialDelay(time.Duration(cfg.DialRetryInitialBackoffMS)*time.Millisecond))
	}
	if cfg.DialRetryMaxBackoffMS > 0 {
		opts = append(opts, pattern.WithMaxDelay(time.Duration(cfg.DialRetryMaxBackoffMS)*time.Millisecond))
	}
	if cfg.DialRetryJitter > 0 {
		opts = append(opts, pattern.WithJitter(cfg.DialRetryJitter))
	}
	return opts
}

// Connect dials the endpoint, retrying with backoff until it succeeds, the
// attempts are exhausted or ctx is done.
func (c *Client) Connect(ctx context.Context) error {
	opts := []pattern.RetryOption{
		pattern.WithInfiniteAttempts(),
		pattern.WithInitialDelay(500 * time.Millisecond),
		pattern.WithMaxDelay(10 * time.Second),
		pattern.WithMultiplier(2.0),
		pattern.WithJitter(0.2),
	}
	opts = append(opts, c.dialRetryOpts...)

	var rc *rpc.Client
	err := pattern.Retry(ctx, func(attempt int) error {
		if c.newClient == nil {
			return apperr.NewInternalErr("client factory not configured", nil)
		}
		dialed, err := c.newClient(ctx)
		if err != nil {
			c.log.Warn("Ethereum light client dial failed", "attempt", attempt, "err", err)
			imetrics.App().WarningsTotal.WithLabelValues(imetrics.ComponentEthereum, "dial").Inc()
			return err
		}
		rc = dialed
		return nil
	}, opts...)
	if err != nil {
		return apperr.NewBackendErr("failed to connect to ethereum light client", err)
	}

	c.attach(rc)
	c.log.Info("Connected to Ethereum light client", "url", c.config.URL)
	return nil
}

func (c *Client) attach(rc *rpc.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rpc = rc
	c.eth = ethclient.NewClient(rc)
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rpc != nil {
		c.rpc.Close()
		c.rpc, c.eth = nil, nil
	}
}

func (c *Client) clients() (rpcCaller, ethereumClient, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.rpc == nil {
		return nil, nil, apperr.NewBackendErr("ethereum light client is not connected", nil)
	}
	return c.rpc, c.eth, nil
}

func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	_, eth, err := c.clients()
	if err != nil {
		return 0, err
	}
	id, err := eth.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	_, eth, err := c.clients()
	if err != nil {
		return 0, err
	}
	return eth.BlockNumber(ctx)
}

func (c *Client) Syncing(ctx context.Context) (*ethereum.SyncProgress, error) {
	_, eth, err := c.clients()
	if err != nil {
		return nil, err
	}
	return eth.SyncProgress(ctx)
}

func (c *Client) Coinbase(ctx context.Context) (common.Address, error) {
	rc, _, err := c.clients()
	if err != nil {
		return common.Address{}, err
	}
	var addr common.Address
	err = rc.CallContext(ctx, &addr, "eth_coinbase")
	return addr, err
}

func (c *Client) BlockByHash(ctx context.Context, hash common.Hash, fullTx bool) (*entity.Block, error) {
	return c.getBlock(ctx, fullTx, "eth_getBlockByHash", hash, fullTx)
}

func (c *Client) BlockByNumber(ctx context.Context, tag entity.BlockTag, fullTx bool) (*entity.Block, error) {
	return c.getBlock(ctx, fullTx, "eth_getBlockByNumber", toBlockNumArg(tag), fullTx)
}

// getBlock returns nil for a null result.
func (c *Client) getBlock(ctx context.Context, fullTx bool, method string, args ...any) (*entity.Block, error) {
	rc, _, err := c.clients()
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := rc.CallContext(ctx, &raw, method, args...); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	b, err := wire.UnmarshalBlockJSON(raw, fullTx)
	if err != nil {
		return nil, apperr.NewBackendErr("malformed block object", err)
	}
	return b, nil
}

func (c *Client) BlockTransactionCountByHash(ctx context.Context, hash common.Hash) (uint64, error) {
	return c.getCount(ctx, "eth_getBlockTransactionCountByHash", hash)
}

func (c *Client) BlockTransactionCountByNumber(ctx context.Context, tag entity.BlockTag) (uint64, error) {
	return c.getCount(ctx, "eth_getBlockTransactionCountByNumber", toBlockNumArg(tag))
}

// getCount reports a null result as ethereum.NotFound.
func (c *Client) getCount(ctx context.Context, method string, arg any) (uint64, error) {
	rc, _, err := c.clients()
	if err != nil {
		return 0, err
	}
	var n *hexutil.Uint64
	if err := rc.CallContext(ctx, &n, method, arg); err != nil {
		return 0, err
	}
	if n == nil {
		return 0, ethereum.NotFound
	}
	return uint64(*n), nil
}

func (c *Client) Balance(ctx context.Context, account common.Address, tag entity.BlockTag) (*big.Int, error) {
	_, eth, err := c.clients()
	if err != nil {
		return nil, err
	}
	return eth.BalanceAt(ctx, account, toBlockNumber(tag))
}

func (c *Client) Nonce(ctx context.Context, account common.Address, tag entity.BlockTag) (uint64, error) {
	_, eth, err := c.clients()
	if err != nil {
		return 0, err
	}
	return eth.NonceAt(ctx, account, toBlockNumber(tag))
}

func (c *Client) Code(ctx context.Context, account common.Address, tag entity.BlockTag) ([]byte, error) {
	_, eth, err := c.clients()
	if err != nil {
		return nil, err
	}
	return eth.CodeAt(ctx, account, toBlockNumber(tag))
}

func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	_, eth, err := c.clients()
	if err != nil {
		return nil, err
	}
	return eth.SuggestGasPrice(ctx)
}

func (c *Client) PriorityFee(ctx context.Context) (*big.Int, error) {
	_, eth, err := c.clients()
	if err != nil {
		return nil, err
	}
	return eth.SuggestGasTipCap(ctx)
}

func (c *Client) Call(ctx context.Context, opts *entity.CallOptions, tag entity.BlockTag) ([]byte, error) {
	_, eth, err := c.clients()
	if err != nil {
		return nil, err
	}
	return eth.CallContract(ctx, toCallMsg(opts), toBlockNumber(tag))
}

func (c *Client) EstimateGas(ctx context.Context, opts *entity.CallOptions) (uint64, error) {
	_, eth, err := c.clients()
	if err != nil {
		return 0, err
	}
	return eth.EstimateGas(ctx, toCallMsg(opts))
}

func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	rc, _, err := c.clients()
	if err != nil {
		return common.Hash{}, err
	}
	var hash common.Hash
	err = rc.CallContext(ctx, &hash, "eth_sendRawTransaction", hexutil.Bytes(raw))
	return hash, err
}

type rpcCaller interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
	Close()
}

type ethereumClient interface {
	ChainID(context.Context) (*big.Int, error)
	BlockNumber(context.Context) (uint64, error)
	SyncProgress(context.Context) (*ethereum.SyncProgress, error)
	BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error)
	NonceAt(context.Context, common.Address, *big.Int) (uint64, error)
	CodeAt(context.Context, common.Address, *big.Int) ([]byte, error)
	SuggestGasPrice(context.Context) (*big.Int, error)
	SuggestGasTipCap(context.Context) (*big.Int, error)
	CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error)
	EstimateGas(context.Context, ethereum.CallMsg) (uint64, error)
}
