// Package kafka publishes component lifecycle events to Kafka so downstream
// consumers (notification pipelines, audit sinks) can react to saved and
// deleted assessments.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/monitoring/logging"
	"github.com/razinkele/marbefes-eva-app/pkg/errors"
)

var (
	// ErrProducerClosed is returned when publishing after Close.
	ErrProducerClosed = errors.New(errors.CodeEventPublishError, "producer closed")
)

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Acks         string        `mapstructure:"acks"`
	MaxRetries   int           `mapstructure:"max_retries"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Source       string        `mapstructure:"source"`
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer manages event publication.
type Producer struct {
	writer WriterInterface
	config ProducerConfig
	logger logging.Logger
	closed atomic.Bool
}

// NewProducer creates a Producer writing to the configured brokers.
func NewProducer(cfg ProducerConfig, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.NewValidation("kafka brokers are required")
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.Source == "" {
		cfg.Source = "eva-engine"
	}

	acks := kafka.RequireAll
	switch cfg.Acks {
	case "none":
		acks = kafka.RequireNone
	case "one":
		acks = kafka.RequireOne
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           acks,
		MaxAttempts:            cfg.MaxRetries,
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}
	return newProducerWithWriter(writer, cfg, log), nil
}

func newProducerWithWriter(writer WriterInterface, cfg ProducerConfig, log logging.Logger) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Producer{
		writer: writer,
		config: cfg,
		logger: log.Named("kafka"),
	}
}

// Publish wraps the payload in an event envelope and writes it to the topic,
// keyed so events for the same component preserve ordering.
func (p *Producer) Publish(ctx context.Context, topic, key, eventType string, payload interface{}) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	envelope, err := NewEnvelope(eventType, p.config.Source, payload)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to encode event payload")
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to encode event envelope")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  envelope.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("event publish failed",
			logging.String("topic", topic),
			logging.String("event_type", eventType),
			logging.Err(err))
		return errors.Wrap(err, errors.CodeEventPublishError, "failed to publish event")
	}
	p.logger.Debug("event published",
		logging.String("topic", topic),
		logging.String("event_type", eventType),
		logging.String("event_id", envelope.EventID))
	return nil
}

// Close flushes and closes the underlying writer.  Close is idempotent.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
