package jsonrpc

import (
	"context"

	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/usecase"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/wire"
)

// EthAPI exposes the Ethereum methods under the "eth" namespace. Every
// parameter arrives as a JSON string and is decoded by the dispatcher.
type EthAPI struct {
	d *usecase.Dispatcher
}

func NewEthAPI(d *usecase.Dispatcher) *EthAPI {
	return &EthAPI{d: d}
}

// ChainId is served as eth_chainId.
func (api *EthAPI) ChainId(ctx context.Context) (uint64, error) {
	return api.d.ChainID(ctx)
}

func (api *EthAPI) BlockNumber(ctx context.Context) (uint64, error) {
	return api.d.BlockNumber(ctx)
}

func (api *EthAPI) GasPrice(ctx context.Context) (string, error) {
	return api.d.GasPrice(ctx)
}

func (api *EthAPI) MaxPriorityFeePerGas(ctx context.Context) (string, error) {
	return api.d.MaxPriorityFeePerGas(ctx)
}

func (api *EthAPI) Syncing(ctx context.Context) (bool, error) {
	return api.d.Syncing(ctx)
}

func (api *EthAPI) Coinbase(ctx context.Context) (string, error) {
	return api.d.Coinbase(ctx)
}

func (api *EthAPI) GetBlockByHash(ctx context.Context, hash, fullTx string) (*wire.BlockJSON, error) {
	return api.d.GetBlockByHash(ctx, hash, fullTx)
}

func (api *EthAPI) GetBlockByNumber(ctx context.Context, tag, fullTx string) (*wire.BlockJSON, error) {
	return api.d.GetBlockByNumber(ctx, tag, fullTx)
}

func (api *EthAPI) GetBlockTransactionCountByHash(ctx context.Context, hash string) (uint64, error) {
	return api.d.GetBlockTransactionCountByHash(ctx, hash)
}

func (api *EthAPI) GetBlockTransactionCountByNumber(ctx context.Context, tag string) (uint64, error) {
	return api.d.GetBlockTransactionCountByNumber(ctx, tag)
}

func (api *EthAPI) GetBalance(ctx context.Context, address string) (string, error) {
	return api.d.GetBalance(ctx, address)
}

func (api *EthAPI) GetTransactionCount(ctx context.Context, address string) (uint64, error) {
	return api.d.GetTransactionCount(ctx, address)
}

func (api *EthAPI) GetCode(ctx context.Context, address string) (wire.ByteArray, error) {
	return api.d.GetCode(ctx, address)
}

func (api *EthAPI) SendRawTransaction(ctx context.Context, raw string) (string, error) {
	return api.d.SendRawTransaction(ctx, raw)
}

func (api *EthAPI) Call(ctx context.Context, req wire.CallRequest, tag string) (string, error) {
	return api.d.Call(ctx, req, tag)
}

func (api *EthAPI) EstimateGas(ctx context.Context, req wire.CallRequest) (string, error) {
	return api.d.EstimateGas(ctx, req)
}

func (api *EthAPI) GetTransactionByBlockHashAndIndex(ctx context.Context, hash, index string) (*wire.TransactionJSON, error) {
	return api.d.GetTransactionByBlockHashAndIndex(ctx, hash, index)
}

func (api *EthAPI) GetTransactionByBlockNumberAndIndex(ctx context.Context, tag, index string) (*wire.TransactionJSON, error) {
	return api.d.GetTransactionByBlockNumberAndIndex(ctx, tag, index)
}
