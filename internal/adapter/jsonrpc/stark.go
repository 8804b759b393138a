package jsonrpc

import (
	"context"

	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/usecase"
)

// StarkAPI exposes the Starknet methods under the "stark" namespace.
type StarkAPI struct {
	d *usecase.Dispatcher
}

func NewStarkAPI(d *usecase.Dispatcher) *StarkAPI {
	return &StarkAPI{d: d}
}

// ChainId is served as stark_chainId.
func (api *StarkAPI) ChainId(ctx context.Context) (string, error) {
	return api.d.StarkChainID(ctx)
}

func (api *StarkAPI) BlockNumber(ctx context.Context) (uint64, error) {
	return api.d.StarkBlockNumber(ctx)
}
