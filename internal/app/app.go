package app

import (
	"context"
	"fmt"
	"net"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/adscope/internal/adapter/grpc"
	"github.com/simaogato/adscope/internal/adapter/upstream"
	"github.com/simaogato/adscope/internal/config"
	"github.com/simaogato/adscope/internal/domain"
	"github.com/simaogato/adscope/internal/log"
	"github.com/simaogato/adscope/internal/usecase/aggregation"
	"github.com/simaogato/adscope/internal/usecase/catalog"
	"github.com/simaogato/adscope/internal/usecase/scope"
)

// App wires the upstream client, the core services and the gRPC snapshot service
type App struct {
	Config   *config.Config
	Upstream *upstream.Client
	Catalog  *catalog.Service
	Engine   *aggregation.Engine
	Resolver *scope.Resolver
	GRPC     *grpclib.Server

	logger *log.Logger
}

// New builds the application. httpClient may be nil to use a default net/http client.
func New(cfg *config.Config, httpClient upstream.HTTPClient, logger *log.Logger) *App {
	// 1. Upstream
	client := upstream.New(httpClient, upstream.Config{
		BaseURL: cfg.UpstreamBaseURL,
		Timeout: cfg.FetchTimeout,
	}, logger)

	// 2. Core services
	catalogService := catalog.NewService(client, catalog.Policy{
		Attempts:   cfg.CatalogAttempts,
		RetryDelay: cfg.CatalogRetryDelay,
		Timeout:    cfg.FetchTimeout,
	}, logger)
	engine := aggregation.NewEngine(logger)
	resolver := scope.NewResolver(client, engine, cfg.FetchTimeout, logger)

	// 3. gRPC snapshot service
	grpcServer := grpclib.NewServer(grpcadapter.ServerOptions(cfg.APIToken, logger)...)
	grpcadapter.RegisterScopeServiceServer(grpcServer, grpcadapter.NewServer(catalogService, resolver, engine, logger))
	reflection.Register(grpcServer)

	return &App{
		Config:   cfg,
		Upstream: client,
		Catalog:  catalogService,
		Engine:   engine,
		Resolver: resolver,
		GRPC:     grpcServer,
		logger:   logger.WithComponent(log.ComponentApp),
	}
}

// Start loads the location catalog.
// A failed load is returned but is not fatal: the selector still offers "All".
func (a *App) Start(ctx context.Context) error {
	locations, err := a.Catalog.Load(ctx)
	if err != nil {
		a.logger.LogError(ctx, "location catalog unavailable", err, domain.ErrorType(err),
			log.NewFields().WithOperation(log.OpStartup))
		return err
	}

	a.logger.InfoContext(ctx, "location catalog ready", log.FieldRecords, len(locations), log.FieldOperation, log.OpStartup)
	return nil
}

// Serve accepts gRPC connections on lis until Stop is called
func (a *App) Serve(lis net.Listener) error {
	a.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	if err := a.GRPC.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve gRPC server: %w", err)
	}
	return nil
}

// Stop drains in-flight calls and waits for outstanding fetches.
// Snapshot streams never end on their own, so once ctx is done the remaining calls are cut.
func (a *App) Stop(ctx context.Context) {
	a.logger.Info("shutting down", log.FieldOperation, log.OpShutdown)

	stopped := make(chan struct{})
	go func() {
		a.GRPC.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		a.logger.Warn("graceful stop timed out, closing remaining calls", log.FieldOperation, log.OpShutdown)
		a.GRPC.Stop()
		<-stopped
	}

	a.Resolver.Wait()
	a.logger.Info("gRPC server stopped", log.FieldOperation, log.OpShutdown)
}
