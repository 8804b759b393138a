package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/port"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/apperr"
	imetrics "github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/metrics"
)

// LightClientHandle is the process-wide reference to the Ethereum and
// Starknet light clients shared by every request.
//
// Concurrency: each client sits behind its own reader/writer lock. Request
// dispatch only ever takes read locks, so concurrent requests never wait on
// each other; the write side exists for the host process to swap a client
// (e.g. after re-dialing) once in-flight reads have drained. The handle
// references the clients, it does not own their lifecycle.
type LightClientHandle struct {
	ethMu   sync.RWMutex
	eth     port.EthereumClient
	starkMu sync.RWMutex
	stark   port.StarknetClient
}

func NewLightClientHandle(eth port.EthereumClient, stark port.StarknetClient) *LightClientHandle {
	return &LightClientHandle{eth: eth, stark: stark}
}

// ReadEthereum runs fn with the Ethereum client under the read lock. The lock
// is released when fn returns.
func (h *LightClientHandle) ReadEthereum(ctx context.Context, fn func(context.Context, port.EthereumClient) error) error {
	start := time.Now()
	h.ethMu.RLock()
	defer h.ethMu.RUnlock()
	imetrics.RPC().BackendLockWaitMS.WithLabelValues(imetrics.ComponentEthereum).Observe(msSince(start))

	if h.eth == nil {
		return apperr.NewBackendErr("ethereum light client is not configured", nil)
	}
	return fn(ctx, h.eth)
}

// ReadStarknet runs fn with the Starknet client under the read lock.
func (h *LightClientHandle) ReadStarknet(ctx context.Context, fn func(context.Context, port.StarknetClient) error) error {
	start := time.Now()
	h.starkMu.RLock()
	defer h.starkMu.RUnlock()
	imetrics.RPC().BackendLockWaitMS.WithLabelValues(imetrics.ComponentStarknet).Observe(msSince(start))

	if h.stark == nil {
		return apperr.NewBackendErr("starknet light client is not configured", nil)
	}
	return fn(ctx, h.stark)
}

// ReplaceEthereum swaps the Ethereum client under the write lock and returns
// the previous one.
func (h *LightClientHandle) ReplaceEthereum(c port.EthereumClient) port.EthereumClient {
	h.ethMu.Lock()
	defer h.ethMu.Unlock()
	prev := h.eth
	h.eth = c
	return prev
}

// ReplaceStarknet swaps the Starknet client under the write lock and returns
// the previous one.
func (h *LightClientHandle) ReplaceStarknet(c port.StarknetClient) port.StarknetClient {
	h.starkMu.Lock()
	defer h.starkMu.Unlock()
	prev := h.stark
	h.stark = c
	return prev
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
