package usecase

import (
	"context"
	"math/big"

	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/port"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/apperr"
)

const (
	MethodStarkChainID     = "stark_chainId"
	MethodStarkBlockNumber = "stark_blockNumber"
)

// StarkChainID returns the Starknet chain id felt in decimal.
func (d *Dispatcher) StarkChainID(ctx context.Context) (id string, err error) {
	defer d.observe(MethodStarkChainID, d.begin(), &err)
	n, err := callStarknet(ctx, d, MethodStarkChainID, func(ctx context.Context, c port.StarknetClient) (*big.Int, error) {
		return c.ChainID(ctx)
	})
	if err != nil {
		return "", err
	}
	if n == nil {
		return "", apperr.NewBackendErr(MethodStarkChainID+": light client returned no chain id", nil)
	}
	return n.String(), nil
}

func (d *Dispatcher) StarkBlockNumber(ctx context.Context) (n uint64, err error) {
	defer d.observe(MethodStarkBlockNumber, d.begin(), &err)
	return callStarknet(ctx, d, MethodStarkBlockNumber, func(ctx context.Context, c port.StarknetClient) (uint64, error) {
		return c.BlockNumber(ctx)
	})
}
