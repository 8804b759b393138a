package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/port"
	"github.com/stretchr/testify/require"
)

func TestLightClientHandle_ReadersRunConcurrently(t *testing.T) {
	h := NewLightClientHandle(&fakeEthereumClient{}, nil)

	const readers = 4
	var inside atomic.Int32
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.ReadEthereum(context.Background(), func(context.Context, port.EthereumClient) error {
				inside.Add(1)
				<-release
				return nil
			})
		}()
	}

	require.Eventually(t, func() bool { return inside.Load() == readers }, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()
}

func TestLightClientHandle_ReplaceWaitsForReaders(t *testing.T) {
	first := &fakeEthereumClient{chainID: 1}
	second := &fakeEthereumClient{chainID: 2}
	h := NewLightClientHandle(first, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = h.ReadEthereum(context.Background(), func(context.Context, port.EthereumClient) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	replaced := make(chan port.EthereumClient, 1)
	go func() { replaced <- h.ReplaceEthereum(second) }()

	select {
	case <-replaced:
		t.Fatal("writer acquired the handle while a reader held it")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case prev := <-replaced:
		require.Same(t, first, prev)
	case <-time.After(time.Second):
		t.Fatal("writer never acquired the handle")
	}

	var seen uint64
	require.NoError(t, h.ReadEthereum(context.Background(), func(ctx context.Context, c port.EthereumClient) error {
		var err error
		seen, err = c.ChainID(ctx)
		return err
	}))
	require.Equal(t, uint64(2), seen)
}

func TestLightClientHandle_StarknetLockIsIndependent(t *testing.T) {
	h := NewLightClientHandle(&fakeEthereumClient{}, &fakeStarknetClient{blockNumber: 5})

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = h.ReadEthereum(context.Background(), func(context.Context, port.EthereumClient) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered
	defer close(release)

	done := make(chan struct{})
	go func() {
		h.ReplaceStarknet(&fakeStarknetClient{blockNumber: 6})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("starknet writer blocked by an ethereum reader")
	}
}
