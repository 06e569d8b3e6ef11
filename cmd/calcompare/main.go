package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/felixgeelhaar/calcompare/adapter/cli/availability"
	"github.com/felixgeelhaar/calcompare/adapter/cli/group"
	"github.com/felixgeelhaar/calcompare/internal/app"
	"github.com/felixgeelhaar/calcompare/pkg/config"
	"github.com/felixgeelhaar/calcompare/pkg/observability"
)

func main() {
	logger := observability.NewLogger(observability.DefaultLogConfig())

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logConfig := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logConfig = observability.ProductionLogConfig()
	}
	logConfig.Level = observability.LogLevel(cfg.LogLevel)
	logConfig.Format = observability.LogFormat(cfg.LogFormat)
	logConfig.ServiceVersion = cli.Version
	logger = observability.NewLogger(logConfig)
	slog.SetDefault(logger)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		// version and help still work; every other command reports the missing app
		logger.Error("failed to initialize container", "error", err)
	} else {
		defer container.Close()
		cli.SetApp(cli.NewApp(container))
	}

	cli.AddCommand(availability.Cmd)
	cli.AddCommand(group.Cmd)

	cli.Execute(ctx)
}
