package infra

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/pancudaniel7/lightclient-rpc-service/internal/adapter/execution"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/adapter/starknet"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/port"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/usecase"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/apperr"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/applog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

type closingEthereum struct {
	port.EthereumClient
	closed atomic.Bool
}

func (c *closingEthereum) Close() { c.closed.Store(true) }

type closingStarknet struct {
	port.StarknetClient
	closed atomic.Bool
}

func (c *closingStarknet) Close() { c.closed.Store(true) }

func currentClients(t *testing.T, handle *usecase.LightClientHandle) (port.EthereumClient, port.StarknetClient) {
	t.Helper()
	var eth port.EthereumClient
	var stark port.StarknetClient
	_ = handle.ReadEthereum(t.Context(), func(_ context.Context, c port.EthereumClient) error {
		eth = c
		return nil
	})
	_ = handle.ReadStarknet(t.Context(), func(_ context.Context, c port.StarknetClient) error {
		stark = c
		return nil
	})
	return eth, stark
}

func TestReconnectLightClients_SwapsAndClosesPrevious(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("ethereum.execution_rpc_url", "http://127.0.0.1:8545")
	viper.Set("starknet.rpc_url", "http://127.0.0.1:9545")

	oldEth, oldStark := &closingEthereum{}, &closingStarknet{}
	handle := usecase.NewLightClientHandle(oldEth, oldStark)

	require.NoError(t, ReconnectLightClients(t.Context(), applog.Nop{}, nil, handle))
	require.True(t, oldEth.closed.Load())
	require.True(t, oldStark.closed.Load())

	eth, stark := currentClients(t, handle)
	require.IsType(t, &execution.Client{}, eth)
	require.IsType(t, &starknet.Client{}, stark)

	CloseLightClients(handle)
	err := handle.ReadEthereum(t.Context(), func(context.Context, port.EthereumClient) error { return nil })
	var backend *apperr.BackendErr
	require.ErrorAs(t, err, &backend)
}

func TestReconnectLightClients_StarknetRemoved(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("ethereum.execution_rpc_url", "http://127.0.0.1:8545")

	oldStark := &closingStarknet{}
	handle := usecase.NewLightClientHandle(&closingEthereum{}, oldStark)
	t.Cleanup(func() { CloseLightClients(handle) })

	require.NoError(t, ReconnectLightClients(t.Context(), applog.Nop{}, nil, handle))
	require.True(t, oldStark.closed.Load())

	err := handle.ReadStarknet(t.Context(), func(context.Context, port.StarknetClient) error { return nil })
	var backend *apperr.BackendErr
	require.ErrorAs(t, err, &backend)
}

func TestReconnectLightClients_InvalidConfigKeepsClients(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	oldEth, oldStark := &closingEthereum{}, &closingStarknet{}
	handle := usecase.NewLightClientHandle(oldEth, oldStark)

	require.Error(t, ReconnectLightClients(t.Context(), applog.Nop{}, nil, handle))
	require.False(t, oldEth.closed.Load())
	require.False(t, oldStark.closed.Load())

	eth, stark := currentClients(t, handle)
	require.Same(t, oldEth, eth)
	require.Same(t, oldStark, stark)
}
