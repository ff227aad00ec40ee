package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simaogato/adscope/internal/adapter/fixture"
	"github.com/simaogato/adscope/internal/config"
	"github.com/simaogato/adscope/internal/log"
)

// fixture-api serves the upstream resource from a local JSON dataset
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.LoadEnvFiles()
	cfg := config.Load()

	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel), Component: log.ComponentFixture})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err.Error())
		os.Exit(1)
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ds, err := fixture.LoadDataset(cfg.FixtureData)
	if err != nil {
		logger.Error("Failed to load fixture data", "path", cfg.FixtureData, log.FieldError, err.Error())
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.FixtureAddr,
		Handler:           fixture.NewRouter(ds, fixture.Options{Latency: cfg.FixtureLatency}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Fixture server failed", log.FieldError, err.Error())
			os.Exit(1)
		}
	}()
	logger.Info("Fixture API listening",
		"addr", cfg.FixtureAddr,
		"locations", len(ds.Locations),
		"ad_spends", len(ds.AdSpends),
		"business_cryptos", len(ds.BusinessCryptos),
	)

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Fixture server shutdown error", log.FieldError, err.Error())
	}
	logger.Info("Fixture server exited")
}
