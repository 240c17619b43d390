package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	httpadapter "github.com/GregZOL/API-France-March--BOAMP/internal/adapter/http"
	"github.com/GregZOL/API-France-March--BOAMP/internal/config"
	"github.com/GregZOL/API-France-March--BOAMP/internal/normalize"
	"github.com/GregZOL/API-France-March--BOAMP/internal/repository"
	"github.com/GregZOL/API-France-March--BOAMP/internal/schema"
	"github.com/GregZOL/API-France-March--BOAMP/internal/service"
	"github.com/GregZOL/API-France-March--BOAMP/pkg/observability"
)

const shutdownGrace = 10 * time.Second

func main() {
	logger, err := newLogger()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("starting boamp-search...")

	cfg, err := config.Load("./config")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	if lvl, err := zap.ParseAtomicLevel(cfg.Logger.Level); err == nil {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = lvl
		if rebuilt, err := zcfg.Build(); err == nil {
			logger = rebuilt
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := observability.Setup(ctx, observability.Config{
		ServiceName:     "boamp-search",
		TracingEndpoint: cfg.Telemetry.TracingEndpoint,
		TracingInsecure: cfg.Telemetry.TracingInsecure,
	})
	if err != nil {
		logger.Fatal("failed to set up observability", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("observability shutdown failed", zap.Error(err))
		}
	}()

	client := repository.NewClient(
		cfg.Provider.BaseURL,
		cfg.Provider.Dataset,
		cfg.Provider.APIKey,
		cfg.Provider.Timeout(),
	)
	resolver := schema.NewResolver(
		client,
		cfg.Provider.BaseURL,
		cfg.Provider.Dataset,
		cfg.Provider.APIKey,
		cfg.Cache.SchemaTTL(),
		logger,
	)
	normalizer := normalize.New(cfg.Provider.BaseURL, cfg.Provider.Dataset)

	searchSvc := service.NewSearchService(
		resolver,
		repository.NewExploreDialect(client, logger),
		repository.NewRecordsDialect(client, logger),
		normalizer,
		service.Options{
			PreferRich: cfg.Provider.PreferExplore,
			ResultsTTL: cfg.Cache.ResultsTTL(),
		},
		logger,
	)

	router := mux.NewRouter()
	router.Use(httpadapter.NewLoggingMiddleware(logger))

	metricsMiddleware, err := httpadapter.NewMetricsMiddleware(otel.Meter("boamp-search"))
	if err != nil {
		logger.Fatal("failed to build metrics middleware", zap.Error(err))
	}
	router.Use(metricsMiddleware)

	httpadapter.NewServer(searchSvc, logger).Register(router)
	router.Handle("/metrics", provider.MetricsHandler()).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}

func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}
