// Package config defines all configuration structures for the EVA engine.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/cache/redis"
	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/messaging/kafka"
	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// EngineConfig holds the assessment engine parameters.
type EngineConfig struct {
	// RarityThreshold is the inclusive occurrence proportion below which a
	// feature counts as locally rare.
	RarityThreshold float64 `mapstructure:"rarity_threshold"`

	// ConcentrationPercentile is the percentile used by the
	// concentration-weighted assessment.
	ConcentrationPercentile float64 `mapstructure:"concentration_percentile"`

	// MaxFeatures caps the feature count of accepted datasets.
	MaxFeatures int `mapstructure:"max_features"`

	// CacheTTL bounds how long memoized assessment results live.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// CacheConfig enables and configures the Redis result cache.
type CacheConfig struct {
	Enabled bool         `mapstructure:"enabled"`
	Redis   redis.Config `mapstructure:"redis"`
}

// EventsConfig enables and configures component event publication.
type EventsConfig struct {
	Enabled bool                 `mapstructure:"enabled"`
	Kafka   kafka.ProducerConfig `mapstructure:"kafka"`
}

// Config is the root configuration object.
type Config struct {
	Server ServerConfig      `mapstructure:"server"`
	Log    logging.LogConfig `mapstructure:"log"`
	Engine EngineConfig      `mapstructure:"engine"`
	Cache  CacheConfig       `mapstructure:"cache"`
	Events EventsConfig      `mapstructure:"events"`
}

// Validate checks cross-field consistency.  It assumes ApplyDefaults has
// already run, so zero values are genuine misconfigurations.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Engine.RarityThreshold <= 0 || c.Engine.RarityThreshold >= 1 {
		return fmt.Errorf("engine.rarity_threshold %v must be in (0, 1)", c.Engine.RarityThreshold)
	}
	if c.Engine.ConcentrationPercentile <= 0 || c.Engine.ConcentrationPercentile > 100 {
		return fmt.Errorf("engine.concentration_percentile %v must be in (0, 100]", c.Engine.ConcentrationPercentile)
	}
	if c.Engine.MaxFeatures < 1 {
		return fmt.Errorf("engine.max_features %d must be positive", c.Engine.MaxFeatures)
	}
	if c.Cache.Enabled && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when the cache is enabled")
	}
	if c.Events.Enabled && len(c.Events.Kafka.Brokers) == 0 {
		return fmt.Errorf("events.kafka.brokers is required when events are enabled")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q must be json or console", c.Log.Format)
	}
	return nil
}
