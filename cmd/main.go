package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pancudaniel7/lightclient-rpc-service/internal/adapter/jsonrpc"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/usecase"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/infra"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/applog"
)

const (
	configFlag   = "config"
	logLevelFlag = "log-level"

	shutdownTimeout = 10 * time.Second
)

var (
	logger applog.AppLogger
)

func main() {
	app := &cli.App{
		Name:  "lightclient-rpc-service",
		Usage: "Serve Ethereum and Starknet JSON-RPC from light clients",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				EnvVars: []string{"LIGHTRPC_CONFIG"},
			},
			&cli.StringFlag{
				Name:  logLevelFlag,
				Usage: "Override log.level (trace, debug, info, warn, error)",
			},
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		if logger == nil {
			logger = applog.NewAppDefaultLogger()
		}
		logger.Fatal("Service terminated", "err", err)
	}
}

func serve(cCtx *cli.Context) error {
	if err := infra.InitConfig(cCtx.String(configFlag)); err != nil {
		return err
	}
	if lvl := cCtx.String(logLevelFlag); lvl != "" {
		viper.Set("log.level", lvl)
	}
	logger = applog.NewAppDefaultLogger()

	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := fiber.New(fiber.Config{AppName: viper.GetString("service.name")})
	infra.InitMetrics(server)

	v := validator.New()

	eth, err := infra.InitEthereumClient(ctx, logger, v)
	if err != nil {
		return err
	}
	handle := usecase.NewLightClientHandle(eth, nil)
	defer infra.CloseLightClients(handle)

	stark, err := infra.InitStarknetClient(ctx, logger, v)
	if err != nil {
		return err
	}
	if stark != nil {
		handle.ReplaceStarknet(stark)
	}

	opts := []usecase.Option{
		usecase.WithCallTimeout(time.Duration(viper.GetInt("rpc.call_timeout_seconds")) * time.Second),
	}
	blockCache, closeCache, err := infra.InitBlockCache(ctx, logger, v)
	if err != nil {
		return err
	}
	defer closeCache()
	if blockCache != nil {
		opts = append(opts, usecase.WithBlockCache(blockCache))
	}
	publisher, err := infra.InitTransactionPublisher(logger, v)
	if err != nil {
		return err
	}
	if publisher != nil {
		defer publisher.Close()
		opts = append(opts, usecase.WithTransactionPublisher(publisher))
	}

	dispatcher := usecase.NewDispatcher(logger, handle, opts...)
	rpcServer, err := jsonrpc.NewServer(dispatcher)
	if err != nil {
		return err
	}
	defer rpcServer.Stop()

	infra.InitRoutes(server, rpcServer, dispatcher)

	g, gctx := errgroup.WithContext(ctx)
	infra.StartPprof(gctx, logger, g)
	infra.WatchReconnect(gctx, logger, v, handle, g)

	addr := viper.GetString("http.addr")
	g.Go(func() error {
		logger.Info("JSON-RPC server listening", "addr", addr)
		return server.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down JSON-RPC server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Service stopped")
	return nil
}
