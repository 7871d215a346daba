// Package cache is the keyed, TTL-scoped memoization layer in front of
// candles, computed indicators, and scan results, adapted from the
// teacher's QueryResultCache (same Redis-backed hit/miss/set accounting
// shape, generalized from table-keyed query results to the three cache
// roles the screener needs).
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/irfndi/stockscreener/internal/config"
	zaplogrus "github.com/irfndi/stockscreener/internal/logging/zaplogrus"
)

// Role identifies which of the three cache key roles an entry belongs to,
// per spec §3's "Cache entry" key derivation.
type Role string

const (
	RoleStock     Role = "stock"
	RoleIndicator Role = "indicator"
	RoleScan      Role = "scan"
)

// Stats tracks hit/miss/set counts, mirroring the teacher's
// QueryResultCacheStats shape.
type Stats struct {
	Hits   int64
	Misses int64
	Sets   int64
}

// Cache wraps a Redis client with role-scoped TTLs and canonicalized key
// derivation. A nil or unreachable backing store degrades every Get to a
// miss and every Set to a no-op, rather than failing the caller.
type Cache struct {
	rdb    *redis.Client
	logger *zaplogrus.Logger

	candleTTL    time.Duration
	indicatorTTL time.Duration
	scanTTL      time.Duration

	mu    sync.RWMutex
	stats Stats
}

// New builds a Cache from a Redis client and the configured TTLs. rdb may
// be nil, in which case the cache operates in degrade-to-absent mode.
func New(rdb *redis.Client, cfg config.CacheConfig, logger *zaplogrus.Logger) *Cache {
	if logger == nil {
		logger = zaplogrus.New()
	}
	return &Cache{
		rdb:          rdb,
		logger:       logger,
		candleTTL:    time.Duration(cfg.CandleTTLSeconds) * time.Second,
		indicatorTTL: time.Duration(cfg.IndicatorTTLSeconds) * time.Second,
		scanTTL:      time.Duration(cfg.ScanTTLSeconds) * time.Second,
	}
}

// TTLFor returns the configured TTL for a role.
func (c *Cache) TTLFor(role Role) time.Duration {
	switch role {
	case RoleStock:
		return c.candleTTL
	case RoleIndicator:
		return c.indicatorTTL
	case RoleScan:
		return c.scanTTL
	}
	return 0
}

// canonicalToken upper-cases a key component for consistent lookups, per
// spec §3's key hygiene rule; any embedded ':' would corrupt the key
// structure so it's replaced with '_' defensively.
func canonicalToken(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, ":", "_"))
}

// StockKey builds a candle cache key: stock:{symbol}:{interval}:{size}.
func StockKey(symbol, interval, size string) string {
	return fmt.Sprintf("stock:%s:%s:%s", canonicalToken(symbol), canonicalToken(interval), canonicalToken(size))
}

// IndicatorKey builds an indicator cache key:
// indicator:{symbol}:{name}:{interval}:{period}:{series}. period is an int,
// not a float, per the key-hygiene rule against embedding floats in keys.
func IndicatorKey(symbol, name, interval string, period int, series string) string {
	return fmt.Sprintf("indicator:%s:%s:%s:%s:%s",
		canonicalToken(symbol), canonicalToken(name), canonicalToken(interval),
		strconv.Itoa(period), canonicalToken(series))
}

// ScanKey builds a scan-result cache key: scan:{hash}.
func ScanKey(hash string) string {
	return "scan:" + hash
}

// Get retrieves and unmarshals a cached value into dest, returning whether
// it was present. A Redis error, a cache miss, or a nil backing client are
// all reported as absent (false) — callers fall through to a
// fresh fetch rather than failing.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c.rdb == nil {
		return false
	}

	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		c.recordMiss()
		if err != redis.Nil {
			c.logger.WithError(err).WithField("key", key).Warn("cache: get failed, treating as miss")
		} else {
			c.logger.WithField("key", key).Info("cache: MISS")
		}
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache: unmarshal failed, treating as miss")
		c.recordMiss()
		return false
	}

	c.logger.WithField("key", key).Info("cache: HIT")
	c.recordHit()
	return true
}

// Set serializes value as JSON and stores it under key with the given TTL.
// A value that cannot be marshaled to JSON is a caller error and is
// returned as such; a Redis write failure degrades silently (the entry
// simply isn't cached) since losing a cache write never changes
// correctness, only performance.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: value for key %s is not JSON-serializable: %w", key, err)
	}

	if c.rdb == nil {
		return nil
	}

	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache: set failed")
		return nil
	}

	c.logger.WithField("key", key).Info("cache: SET")
	c.recordSet()
	return nil
}

// Invalidate removes every key matching a glob pattern (e.g. "scan:*").
func (c *Cache) Invalidate(ctx context.Context, pattern string) error {
	if c.rdb == nil {
		return nil
	}

	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache: failed to scan keys matching %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: failed to invalidate %d keys: %w", len(keys), err)
	}
	c.logger.WithField("pattern", pattern).WithField("count", len(keys)).Info("cache: invalidated")
	return nil
}

// GetStats returns a snapshot of hit/miss/set counters.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// HitRate returns the hit percentage across all Get calls so far.
func (c *Cache) HitRate() float64 {
	s := c.GetStats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

func (c *Cache) recordHit() {
	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}

func (c *Cache) recordSet() {
	c.mu.Lock()
	c.stats.Sets++
	c.mu.Unlock()
}
