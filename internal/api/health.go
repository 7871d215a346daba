package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/irfndi/stockscreener/internal/cache"
	"github.com/irfndi/stockscreener/internal/marketdata"
)

// healthHandler reports component status for the health_check tool:
// cache backing store and upstream market-data reachability.
type healthHandler struct {
	cache   *cache.Cache
	redis   RedisHealthChecker
	market  marketdata.Provider
	version string
}

func newHealthHandler(deps Dependencies) *healthHandler {
	return &healthHandler{cache: deps.Cache, redis: deps.Redis, market: deps.Market, version: deps.Version}
}

// healthResponse matches spec's health_check shape:
// {status, components:{cache, upstream}, version, timestamp}.
type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	Version    string            `json:"version"`
	Timestamp  time.Time         `json:"timestamp"`
}

func (h *healthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	components := map[string]string{
		"cache":    h.checkCache(),
		"upstream": h.checkUpstream(ctx),
	}

	status := "ok"
	for _, s := range components {
		if s != "ok" {
			status = "degraded"
		}
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:     status,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now(),
	})
}

func (h *healthHandler) checkCache() string {
	if h.redis == nil {
		return "absent"
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.redis.HealthCheck(ctx); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "ok"
}

func (h *healthHandler) checkUpstream(ctx context.Context) string {
	if h.market == nil {
		return "absent"
	}
	if _, err := h.market.FetchSymbolUniverse(ctx, 1); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "ok"
}
