package infra

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/adapter/execution"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/adapter/starknet"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/applog"
	"github.com/spf13/viper"
)

// InitEthereumClient builds the Ethereum client from configuration and
// connects it, retrying per the dial settings until ctx is done.
func InitEthereumClient(ctx context.Context, log applog.AppLogger, v *validator.Validate) (*execution.Client, error) {
	if v == nil {
		v = validator.New()
	}

	cfg := execution.Config{
		URL:                       viper.GetString("ethereum.execution_rpc_url"),
		DialMaxRetryAttempts:      viper.GetInt("ethereum.dial_max_retry_attempts"),
		DialRetryInitialBackoffMS: viper.GetInt("ethereum.dial_retry_initial_backoff_ms"),
		DialRetryMaxBackoffMS:     viper.GetInt("ethereum.dial_retry_max_backoff_ms"),
		DialRetryJitter:           viper.GetFloat64("ethereum.dial_retry_jitter"),
	}

	c, err := execution.NewClient(log, &cfg, v)
	if err != nil {
		return nil, fmt.Errorf("infra: failed to init ethereum client: %w", err)
	}
	if err := c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("infra: failed to connect ethereum client: %w", err)
	}
	return c, nil
}

// InitStarknetClient returns nil without error when starknet.rpc_url is
// unset; stark_* methods then answer with a backend error.
func InitStarknetClient(ctx context.Context, log applog.AppLogger, v *validator.Validate) (*starknet.Client, error) {
	url := viper.GetString("starknet.rpc_url")
	if url == "" {
		log.Info("Starknet light client not configured")
		return nil, nil
	}
	if v == nil {
		v = validator.New()
	}

	cfg := starknet.Config{
		URL:                  url,
		DialMaxRetryAttempts: viper.GetInt("starknet.dial_max_retry_attempts"),
	}
	c, err := starknet.NewClient(log, &cfg, v)
	if err != nil {
		return nil, fmt.Errorf("infra: failed to init starknet client: %w", err)
	}
	if err := c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("infra: failed to connect starknet client: %w", err)
	}
	return c, nil
}
