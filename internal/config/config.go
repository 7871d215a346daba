// Package config loads runtime configuration from the environment, with
// sensible defaults so the screener runs out of the box against a local
// market-data service and Redis instance.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	Environment string      `mapstructure:"environment"`
	LogLevel    string      `mapstructure:"log_level"`
	MarketData  DataConfig  `mapstructure:"market_data"`
	Redis       RedisConfig `mapstructure:"redis"`
	Server      ServerConfig `mapstructure:"server"`
	Cache       CacheConfig `mapstructure:"cache"`
	Scan        ScanConfig  `mapstructure:"scan"`
}

// DataConfig describes how to reach the upstream market-data service.
type DataConfig struct {
	APIURL          string `mapstructure:"api_url"`
	UseLocalCandles bool   `mapstructure:"use_local_candles"`
	RequestTimeout  int    `mapstructure:"request_timeout_seconds"`
}

// RedisConfig is the cache backing store's connection info.
type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ServerConfig configures the thin HTTP entrypoint.
type ServerConfig struct {
	Port         int  `mapstructure:"port"`
	ReadTimeout  int  `mapstructure:"read_timeout_seconds"`
	WriteTimeout int  `mapstructure:"write_timeout_seconds"`
	EnableCORS   bool `mapstructure:"enable_cors"`
}

// CacheConfig holds the TTLs for the three cache key roles.
type CacheConfig struct {
	CandleTTLSeconds    int `mapstructure:"candle_ttl_seconds"`
	IndicatorTTLSeconds int `mapstructure:"indicator_ttl_seconds"`
	ScanTTLSeconds      int `mapstructure:"scan_ttl_seconds"`
}

// ScanConfig tunes the per-scan symbol fan-out.
type ScanConfig struct {
	Workers       int `mapstructure:"workers"`
	QueueSize     int `mapstructure:"queue_size"`
	SymbolsUniverseSize int `mapstructure:"symbols_universe_size"`
}

// Load reads an optional .env file, then environment variables (which always
// win), applies defaults, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if os.Getenv("ENVIRONMENT") == "" {
			fmt.Fprintln(os.Stderr, "warning: no .env file found, using environment variables only")
		}
	}

	viper.SetConfigType("env")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.BindEnv("environment", "ENVIRONMENT")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.BindEnv("market_data.api_url", "API_URL")
	viper.BindEnv("market_data.use_local_candles", "USE_LOCAL_CANDLES")
	viper.BindEnv("market_data.request_timeout_seconds", "MARKET_DATA_TIMEOUT_SECONDS")

	viper.BindEnv("redis.url", "REDIS_URL")
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout_seconds", "SERVER_READ_TIMEOUT_SECONDS")
	viper.BindEnv("server.write_timeout_seconds", "SERVER_WRITE_TIMEOUT_SECONDS")
	viper.BindEnv("server.enable_cors", "SERVER_ENABLE_CORS")

	viper.BindEnv("cache.candle_ttl_seconds", "CACHE_CANDLE_TTL_SECONDS")
	viper.BindEnv("cache.indicator_ttl_seconds", "CACHE_INDICATOR_TTL_SECONDS")
	viper.BindEnv("cache.scan_ttl_seconds", "CACHE_SCAN_TTL_SECONDS")

	viper.BindEnv("scan.workers", "SCAN_WORKERS")
	viper.BindEnv("scan.queue_size", "SCAN_QUEUE_SIZE")
	viper.BindEnv("scan.symbols_universe_size", "SCAN_SYMBOLS_UNIVERSE_SIZE")

	setDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("market_data.api_url", "http://localhost:4001")
	viper.SetDefault("market_data.use_local_candles", false)
	viper.SetDefault("market_data.request_timeout_seconds", 10)

	viper.SetDefault("redis.url", "")
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout_seconds", 10)
	viper.SetDefault("server.write_timeout_seconds", 10)
	viper.SetDefault("server.enable_cors", true)

	viper.SetDefault("cache.candle_ttl_seconds", 3600)
	viper.SetDefault("cache.indicator_ttl_seconds", 1800)
	viper.SetDefault("cache.scan_ttl_seconds", 300)

	viper.SetDefault("scan.workers", 10)
	viper.SetDefault("scan.queue_size", 500)
	viper.SetDefault("scan.symbols_universe_size", 5000)
}

// Validate rejects configuration that would make the service unable to start.
func (c *Config) Validate() error {
	if c.MarketData.APIURL == "" {
		return fmt.Errorf("market_data.api_url is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Cache.CandleTTLSeconds <= 0 || c.Cache.IndicatorTTLSeconds <= 0 || c.Cache.ScanTTLSeconds <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("scan.workers must be positive")
	}
	return nil
}

// String renders the config for startup logging, masking the Redis password.
func (c *Config) String() string {
	masked := *c
	if masked.Redis.Password != "" {
		masked.Redis.Password = "***"
	}
	return fmt.Sprintf("%+v", masked)
}
