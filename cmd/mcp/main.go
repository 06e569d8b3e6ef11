package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/felixgeelhaar/calcompare/internal/app"
	mcpinternal "github.com/felixgeelhaar/calcompare/internal/mcp"
	"github.com/felixgeelhaar/calcompare/pkg/config"
	"github.com/felixgeelhaar/calcompare/pkg/observability"
)

func main() {
	logger := observability.NewLogger(observability.DefaultLogConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logConfig := observability.ProductionLogConfig()
	if cfg.IsDevelopment() {
		logConfig = observability.DefaultLogConfig()
		logConfig.Level = observability.LogLevelDebug
	}
	logConfig.ServiceName = "calcompare-mcp"
	logConfig.ServiceVersion = cli.Version
	logger = observability.NewLogger(logConfig)
	slog.SetDefault(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if err := mcpinternal.Serve(ctx, cfg, cli.NewApp(container), logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
