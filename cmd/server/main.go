package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/irfndi/stockscreener/internal/api"
	"github.com/irfndi/stockscreener/internal/cache"
	"github.com/irfndi/stockscreener/internal/config"
	"github.com/irfndi/stockscreener/internal/database"
	"github.com/irfndi/stockscreener/internal/indicator"
	zaplogrus "github.com/irfndi/stockscreener/internal/logging/zaplogrus"
	"github.com/irfndi/stockscreener/internal/marketdata"
	"github.com/irfndi/stockscreener/internal/scan"
)

// version is the build-reported version surfaced by the health endpoint.
// Overridden at link time with -ldflags "-X main.version=...".
var version = "dev"

// main serves as the entry point for the application. It delegates to run
// and translates startup failures into a non-zero exit code.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "application failed: %v\n", err)
		os.Exit(1)
	}
}

// run loads configuration, wires the cache/market-data/scan stack, and
// serves the HTTP layer until a termination signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := zaplogrus.New()
	logger.WithField("config", cfg.String()).Info("starting stockscreener")

	var rawRedis *redis.Client
	// healthRedis stays a nil interface (not a typed nil pointer) when
	// redis is unavailable, so the health handler's nil check is valid.
	var healthRedis api.RedisHealthChecker
	rdb, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, cache will degrade to absent")
	} else {
		rawRedis = rdb.Client
		healthRedis = rdb
		defer rdb.Close()
	}

	cacheLayer := cache.New(rawRedis, cfg.Cache, logger)

	marketClient := marketdata.NewClient(cfg.MarketData.APIURL,
		marketdata.WithTimeout(time.Duration(cfg.MarketData.RequestTimeout)*time.Second),
		marketdata.WithLocalCandles(cfg.MarketData.UseLocalCandles),
		marketdata.WithLogger(logger),
	)
	defer marketClient.Close()

	orchestrator, err := scan.New(marketClient, cacheLayer, indicator.NewStandardProvider(),
		cfg.Scan.Workers, cfg.Scan.QueueSize, cfg.Scan.SymbolsUniverseSize, logger)
	if err != nil {
		return fmt.Errorf("failed to start scan orchestrator: %w", err)
	}
	defer func() { _ = orchestrator.Close() }()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.RegisterRoutes(router, api.Dependencies{
		Orchestrator: orchestrator,
		Market:       marketClient,
		Cache:        cacheLayer,
		Redis:        healthRedis,
		Logger:       logger,
		Version:      version,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped cleanly")
	return nil
}
