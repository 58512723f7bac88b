// API server entry point for the EVA engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appassessment "github.com/razinkele/marbefes-eva-app/internal/application/assessment"
	"github.com/razinkele/marbefes-eva-app/internal/application/component"
	"github.com/razinkele/marbefes-eva-app/internal/config"
	cacheredis "github.com/razinkele/marbefes-eva-app/internal/infrastructure/cache/redis"
	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/messaging/kafka"
	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/monitoring/logging"
	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/razinkele/marbefes-eva-app/internal/interfaces/http"
	"github.com/razinkele/marbefes-eva-app/internal/interfaces/http/handlers"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (default: EVA_* environment)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, portOverride int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if portOverride > 0 {
		cfg.Server.Port = portOverride
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("starting EVA API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port))

	metrics := prometheus.NewMetrics()

	// Optional backends.
	var cache appassessment.Cache
	pingers := make(map[string]handlers.Pinger)
	if cfg.Cache.Enabled {
		client := cacheredis.NewClient(&cfg.Cache.Redis)
		defer client.Close()
		resultCache := cacheredis.NewResultCache(client, &cfg.Cache.Redis, logger)
		cache = resultCache
		pingers["redis"] = resultCache
	}

	var publisher component.EventPublisher
	if cfg.Events.Enabled {
		producer, err := kafka.NewProducer(cfg.Events.Kafka, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize kafka producer: %w", err)
		}
		defer producer.Close()
		publisher = kafka.NewComponentEvents(producer)
	}

	assessments := appassessment.NewService(appassessment.Config{
		RarityThreshold:         cfg.Engine.RarityThreshold,
		ConcentrationPercentile: cfg.Engine.ConcentrationPercentile,
		MaxFeatures:             cfg.Engine.MaxFeatures,
		CacheTTL:                cfg.Engine.CacheTTL,
	}, logger, cache, metrics)
	store := component.NewStore(logger, publisher, metrics)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		AssessmentHandler: handlers.NewAssessmentHandler(assessments, logger),
		ComponentHandler:  handlers.NewComponentHandler(assessments, store, logger),
		HealthHandler:     handlers.NewHealthHandler(version, pingers),
		MetricsHandler:    metrics.Handler(),
		RequestMetrics:    metrics,
		Logger:            logger,
		CORSOrigins:       cfg.Server.CORSOrigins,
		MaxBodySize:       cfg.Server.MaxBodySize,
	})
	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	if err := server.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}
