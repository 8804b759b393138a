package infra

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/port"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/usecase"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/applog"
	imetrics "github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/metrics"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// ReconnectLightClients dials fresh light clients from the current
// configuration and swaps them into handle. The replaced clients are closed
// after in-flight reads on them have drained. On error the handle is left
// untouched.
func ReconnectLightClients(ctx context.Context, log applog.AppLogger, v *validator.Validate, handle *usecase.LightClientHandle) error {
	eth, err := InitEthereumClient(ctx, log, v)
	if err != nil {
		return err
	}
	stark, err := InitStarknetClient(ctx, log, v)
	if err != nil {
		eth.Close()
		return err
	}

	closeClient(handle.ReplaceEthereum(eth))
	var next port.StarknetClient
	if stark != nil {
		next = stark
	}
	closeClient(handle.ReplaceStarknet(next))
	log.Info("Light clients reconnected")
	return nil
}

// CloseLightClients detaches both clients from handle and closes them.
func CloseLightClients(handle *usecase.LightClientHandle) {
	closeClient(handle.ReplaceEthereum(nil))
	closeClient(handle.ReplaceStarknet(nil))
}

// WatchReconnect re-reads the configuration file and reconnects the light
// clients on every SIGHUP until ctx is done.
func WatchReconnect(ctx context.Context, log applog.AppLogger, v *validator.Validate, handle *usecase.LightClientHandle, g *errgroup.Group) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP)

	g.Go(func() error {
		defer signal.Stop(sig)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-sig:
				log.Info("SIGHUP received, reconnecting light clients")
				if err := viper.ReadInConfig(); err != nil {
					var notFound viper.ConfigFileNotFoundError
					if !errors.As(err, &notFound) {
						log.Warn("Config reload failed, keeping previous settings", "err", err)
					}
				}
				if err := ReconnectLightClients(ctx, log, v, handle); err != nil {
					log.Warn("Light client reconnect failed, keeping previous clients", "err", err)
					imetrics.App().WarningsTotal.WithLabelValues(imetrics.ComponentEthereum, "reconnect").Inc()
				}
			}
		}
	})
}

func closeClient(c any) {
	if closer, ok := c.(interface{ Close() }); ok {
		closer.Close()
	}
}
