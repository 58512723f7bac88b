// Package redis provides the Redis-backed memoization cache for assessment
// results.
package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/monitoring/logging"
	"github.com/razinkele/marbefes-eva-app/pkg/errors"
)

var (
	// ErrCacheMiss is returned when the key is absent.
	ErrCacheMiss = errors.New(errors.CodeCacheError, "cache miss")
)

// Config holds the Redis connection settings.
type Config struct {
	Addr         string        `mapstructure:"addr"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
}

func applyDefaults(cfg *Config) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "eva:"
	}
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = time.Hour
	}
}

// NewClient connects a go-redis client with the configured pool settings.
func NewClient(cfg *Config) *redis.Client {
	applyDefaults(cfg)
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// ResultCache stores serialized assessment results keyed by request digest.
// It satisfies the assessment service's Cache port.
type ResultCache struct {
	client     redis.Cmdable
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
}

// NewResultCache wraps a Redis client as a result cache.
func NewResultCache(client redis.Cmdable, cfg *Config, log logging.Logger) *ResultCache {
	applyDefaults(cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ResultCache{
		client:     client,
		logger:     log.Named("cache"),
		prefix:     cfg.KeyPrefix,
		defaultTTL: cfg.DefaultTTL,
	}
}

func (c *ResultCache) fullKey(key string) string {
	return c.prefix + key
}

// jitterTTL spreads expirations by +/- 10% so memoized results written in a
// burst do not all expire at once.
func (c *ResultCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

// Get returns the raw cached value, or ErrCacheMiss when absent.
func (c *ResultCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "failed to get from cache")
	}
	return data, nil
}

// Set stores the raw value under the key.  A non-positive ttl falls back to
// the configured default.
func (c *ResultCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.fullKey(key), value, c.jitterTTL(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "failed to set cache entry")
	}
	return nil
}

// Delete removes keys, ignoring absent ones.
func (c *ResultCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "failed to delete cache entries")
	}
	return nil
}

// Ping verifies connectivity, for readiness probes.
func (c *ResultCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.CodeServiceUnavailable, "redis unreachable")
	}
	return nil
}
