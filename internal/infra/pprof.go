package infra

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"runtime"
	"time"

	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/applog"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const pprofShutdownTimeout = 2 * time.Second

// StartPprof runs a dedicated net/http pprof server in g when pprof.enabled
// is set. The server shuts down once ctx is done.
func StartPprof(ctx context.Context, logger applog.AppLogger, g *errgroup.Group) {
	if !viper.GetBool("pprof.enabled") {
		return
	}

	addr := viper.GetString("pprof.addr")
	if addr == "" {
		addr = "127.0.0.1:6060"
	}
	if n := viper.GetInt("pprof.block_profile_rate"); n > 0 {
		runtime.SetBlockProfileRate(n)
	}
	if n := viper.GetInt("pprof.mutex_profile_fraction"); n > 0 {
		runtime.SetMutexProfileFraction(n)
	}

	srv := &http.Server{Addr: addr, ReadHeaderTimeout: 5 * time.Second}
	g.Go(func() error {
		logger.Info("pprof server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("pprof server error", "err", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), pprofShutdownTimeout)
		defer cancel()
		return srv.Shutdown(c)
	})
}
