package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.InDelta(t, 0.05, cfg.Engine.RarityThreshold, 1e-12)
	assert.InDelta(t, 95.0, cfg.Engine.ConcentrationPercentile, 1e-12)
	assert.Equal(t, 100, cfg.Engine.MaxFeatures)
	assert.Equal(t, time.Hour, cfg.Engine.CacheTTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Events.Enabled)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 8081
  shutdown_timeout: 5s
log:
  level: debug
  format: console
engine:
  rarity_threshold: 0.1
  concentration_percentile: 90
  max_features: 250
cache:
  enabled: true
  redis:
    addr: redis:6379
    key_prefix: "eva-test:"
events:
  enabled: true
  kafka:
    brokers:
      - kafka-1:9092
      - kafka-2:9092
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.InDelta(t, 0.1, cfg.Engine.RarityThreshold, 1e-12)
	assert.InDelta(t, 90.0, cfg.Engine.ConcentrationPercentile, 1e-12)
	assert.Equal(t, 250, cfg.Engine.MaxFeatures)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, "eva-test:", cfg.Cache.Redis.KeyPrefix)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.Kafka.Brokers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"rarity threshold out of range", "engine:\n  rarity_threshold: 1.5\n"},
		{"percentile out of range", "engine:\n  concentration_percentile: 200\n"},
		{"negative max features", "engine:\n  max_features: -1\n"},
		{"bad log format", "log:\n  format: plain\n"},
		{"port out of range", "server:\n  port: 70000\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestValidateEnabledSectionsNeedEndpoints(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	require.NoError(t, cfg.Validate())

	cfg.Cache.Enabled = true
	cfg.Cache.Redis.Addr = ""
	assert.Error(t, cfg.Validate())

	// ApplyDefaults fills the address once the section is enabled.
	ApplyDefaults(cfg)
	assert.NoError(t, cfg.Validate())
}

func TestMustLoadPanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}
