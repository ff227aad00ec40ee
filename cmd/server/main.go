package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/simaogato/adscope/internal/app"
	"github.com/simaogato/adscope/internal/config"
	"github.com/simaogato/adscope/internal/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Configuration
	config.LoadEnvFiles()
	cfg := config.Load()

	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel), Component: log.ComponentApp})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err.Error())
		os.Exit(1)
	}

	// 2. Wire services
	application := app.New(cfg, nil, logger)

	// 3. Load the location catalog. A failure only limits the selector to "All".
	startCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.CatalogAttempts)*(cfg.FetchTimeout+cfg.CatalogRetryDelay))
	if err := application.Start(startCtx); err != nil {
		logger.Warn("Continuing without a location catalog", log.FieldError, err.Error())
	}
	cancel()

	// 4. Start gRPC server
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Error("Failed to listen", "addr", cfg.GRPCAddr, log.FieldError, err.Error())
		os.Exit(1)
	}

	go func() {
		if err := application.Serve(lis); err != nil {
			logger.Error("gRPC server failed", log.FieldError, err.Error())
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	waitForShutdown(application, logger)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(application *app.App, logger *log.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("Received signal, shutting down gracefully", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	application.Stop(ctx)
}
