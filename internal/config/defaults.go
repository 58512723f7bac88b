package config

import (
	"time"

	domain "github.com/razinkele/marbefes-eva-app/internal/domain/assessment"
)

const (
	DefaultServerPort      = 8080
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodySize     = 8 << 20

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultCacheTTL = time.Hour

	DefaultRedisAddr   = "localhost:6379"
	DefaultKafkaBroker = "localhost:9092"
)

// ApplyDefaults fills every zero-value field in cfg with the engine default.
// Fields already set by the caller are left unchanged so that explicit
// configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Engine.RarityThreshold == 0 {
		cfg.Engine.RarityThreshold = domain.DefaultRarityThreshold
	}
	if cfg.Engine.ConcentrationPercentile == 0 {
		cfg.Engine.ConcentrationPercentile = domain.DefaultConcentrationPercentile
	}
	if cfg.Engine.MaxFeatures == 0 {
		cfg.Engine.MaxFeatures = domain.DefaultMaxFeatures
	}
	if cfg.Engine.CacheTTL == 0 {
		cfg.Engine.CacheTTL = DefaultCacheTTL
	}

	if cfg.Cache.Enabled && cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Events.Enabled && len(cfg.Events.Kafka.Brokers) == 0 {
		cfg.Events.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
}
