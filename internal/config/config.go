// Package config loads calcache settings from the environment.
package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendRedis     = "redis"
	BackendBigCache  = "bigcache"
	BackendRistretto = "ristretto"
)

var (
	backends = []string{BackendMemory, BackendSQLite, BackendRedis, BackendBigCache, BackendRistretto}
	codecs   = []string{"msgpack", "json", "cbor", "protobuf"}
	loggers  = []string{"zap", "logrus", "slog", "none"}
)

// Config is built once at startup and passed by value.
type Config struct {
	// Env names the deployment environment; "test" disables the cache.
	Env      string        `env:"CALCACHE_ENV" envDefault:"production"`
	Disabled bool          `env:"CALCACHE_DISABLED" envDefault:"false"`
	TTL      time.Duration `env:"CALCACHE_TTL" envDefault:"30m"`

	Collection     string `env:"CALCACHE_COLLECTION" envDefault:"cache"`
	Backend        string `env:"CALCACHE_BACKEND" envDefault:"sqlite"`
	Codec          string `env:"CALCACHE_CODEC" envDefault:"msgpack"`
	MaxRecordBytes int    `env:"CALCACHE_MAX_RECORD_BYTES" envDefault:"8388608"`

	SQLitePath string `env:"CALCACHE_SQLITE_PATH" envDefault:"calcache.db"`

	RedisAddr     string `env:"CALCACHE_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"CALCACHE_REDIS_PASSWORD"`
	RedisDB       int    `env:"CALCACHE_REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"CALCACHE_REDIS_PREFIX" envDefault:"calcache:"`

	BigCacheLifeWindow time.Duration `env:"CALCACHE_BIGCACHE_LIFE_WINDOW" envDefault:"24h"`
	RistrettoMaxCost   int64         `env:"CALCACHE_RISTRETTO_MAX_COST" envDefault:"67108864"`

	Logger   string `env:"CALCACHE_LOGGER" envDefault:"zap"`
	LogLevel string `env:"CALCACHE_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// CacheDisabled reports whether Has and Save should be no-ops.
func (c Config) CacheDisabled() bool {
	return c.Disabled || c.Env == "test"
}

func (c Config) Validate() error {
	if !slices.Contains(backends, c.Backend) {
		return fmt.Errorf("config: unknown backend %q (want one of %v)", c.Backend, backends)
	}
	if !slices.Contains(codecs, c.Codec) {
		return fmt.Errorf("config: unknown codec %q (want one of %v)", c.Codec, codecs)
	}
	if !slices.Contains(loggers, c.Logger) {
		return fmt.Errorf("config: unknown logger %q (want one of %v)", c.Logger, loggers)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("config: ttl must be positive, got %v", c.TTL)
	}
	if c.Collection == "" {
		return fmt.Errorf("config: collection is required")
	}
	if c.MaxRecordBytes < 0 {
		return fmt.Errorf("config: max record bytes must not be negative")
	}
	return nil
}
