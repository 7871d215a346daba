// Package api exposes the engine's tool surface over HTTP: a thin gin
// layer that decodes requests into the model/scan types, delegates to the
// scan orchestrator and the rest of the internal stack, and encodes
// results back to JSON. It adds no new semantics of its own.
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/irfndi/stockscreener/internal/cache"
	zaplogrus "github.com/irfndi/stockscreener/internal/logging/zaplogrus"
	"github.com/irfndi/stockscreener/internal/marketdata"
	"github.com/irfndi/stockscreener/internal/scan"
)

// RedisHealthChecker narrows *database.RedisClient down to the single
// method this package needs, the way the teacher's health handler narrows
// its database/redis dependencies to HealthCheck-only interfaces. Callers
// should leave this as a nil interface (not a typed nil pointer) when
// redis is unavailable, so the absent-vs-unhealthy distinction holds.
type RedisHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies are the services RegisterRoutes wires into handlers.
type Dependencies struct {
	Orchestrator *scan.Orchestrator
	Market       marketdata.Provider
	Cache        *cache.Cache
	Redis        RedisHealthChecker
	Logger       *zaplogrus.Logger
	Version      string
}

// RegisterRoutes attaches the engine's tool surface to router: health,
// stock data, technical indicators, scans, preset scans, and a natural
// language query parser.
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	if deps.Logger == nil {
		deps.Logger = zaplogrus.New()
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}

	health := newHealthHandler(deps)
	stocks := newStockHandler(deps)
	scanH := newScanHandler(deps)
	nlq := newNLQHandler(deps)

	router.GET("/health", health.Check)
	router.HEAD("/health", health.Check)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/stocks/data", stocks.FetchStockData)
		v1.POST("/stocks/indicator", stocks.GetTechnicalIndicator)

		v1.POST("/scan", scanH.ScanStocks)
		v1.GET("/scan/presets", scanH.ListPresets)
		v1.POST("/scan/presets/:name", scanH.RunPresetScan)

		v1.POST("/query/parse", nlq.Parse)
	}
}
