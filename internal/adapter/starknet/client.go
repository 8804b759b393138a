package starknet

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/go-playground/validator/v10"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/apperr"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/applog"
	imetrics "github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/metrics"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/pattern"
)

// Client implements port.StarknetClient over the starknet_* JSON-RPC API.
type Client struct {
	log       applog.AppLogger
	config    *Config
	newClient func(context.Context) (*rpc.Client, error)

	mu sync.RWMutex
	c  *rpc.Client
}

func NewClient(log applog.AppLogger, cfg *Config, v *validator.Validate) (*Client, error) {
	if err := v.Struct(cfg); err != nil {
		log.Error("invalid config", "err", err)
		return nil, apperr.NewInvalidArgErr("invalid starknet client config", err)
	}
	c := &Client{log: log, config: cfg}
	c.newClient = func(ctx context.Context) (*rpc.Client, error) {
		return rpc.DialContext(ctx, cfg.URL)
	}
	return c, nil
}

// NewClientFromRPC wraps an already connected rpc.Client.
func NewClientFromRPC(log applog.AppLogger, rc *rpc.Client) *Client {
	return &Client{log: log, config: &Config{}, c: rc}
}

// Connect dials the endpoint with backoff.
func (s *Client) Connect(ctx context.Context) error {
	opts := []pattern.RetryOption{
		pattern.WithInfiniteAttempts(),
		pattern.WithInitialDelay(500 * time.Millisecond),
		pattern.WithMaxDelay(10 * time.Second),
		pattern.WithJitter(0.2),
	}
	if s.config.DialMaxRetryAttempts > 0 {
		opts = append(opts, pattern.WithMaxAttempts(s.config.DialMaxRetryAttempts))
	}

	var rc *rpc.Client
	err := pattern.Retry(ctx, func(attempt int) error {
		dialed, err := s.newClient(ctx)
		if err != nil {
			s.log.Warn("Starknet light client dial failed", "attempt", attempt, "err", err)
			imetrics.App().WarningsTotal.WithLabelValues(imetrics.ComponentStarknet, "dial").Inc()
			return err
		}
		rc = dialed
		return nil
	}, opts...)
	if err != nil {
		return apperr.NewBackendErr("failed to connect to starknet light client", err)
	}

	s.mu.Lock()
	s.c = rc
	s.mu.Unlock()
	s.log.Info("Connected to Starknet light client", "url", s.config.URL)
	return nil
}

func (s *Client) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		s.c.Close()
		s.c = nil
	}
}

func (s *Client) rpcClient() (*rpc.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.c == nil {
		return nil, apperr.NewBackendErr("starknet light client is not connected", nil)
	}
	return s.c, nil
}

// ChainID returns the chain id felt, e.g. SN_MAIN.
func (s *Client) ChainID(ctx context.Context) (*big.Int, error) {
	rc, err := s.rpcClient()
	if err != nil {
		return nil, err
	}
	var felt string
	if err := rc.CallContext(ctx, &felt, "starknet_chainId"); err != nil {
		return nil, err
	}
	return parseFelt(felt)
}

func (s *Client) BlockNumber(ctx context.Context) (uint64, error) {
	rc, err := s.rpcClient()
	if err != nil {
		return 0, err
	}
	var n uint64
	err = rc.CallContext(ctx, &n, "starknet_blockNumber")
	return n, err
}

// parseFelt parses a 0x-prefixed field element. Leading zeros are allowed.
func parseFelt(s string) (*big.Int, error) {
	digits, ok := strings.CutPrefix(s, "0x")
	if !ok || digits == "" {
		return nil, fmt.Errorf("starknet: malformed felt %q", s)
	}
	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("starknet: malformed felt %q", s)
	}
	return n, nil
}
