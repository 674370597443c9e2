package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/EcoExpand-AI/internal/config"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeMessagingError, "producer closed")

const (
	defaultWriteTimeout    = 10 * time.Second
	defaultMaxMessageBytes = 1024 * 1024
)

// ProducerMetrics holds producer counters.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// Producer publishes audit events to a single topic. The writer is async:
// Publish returns once the event is queued and delivery is reported to
// onCompletion.
type Producer struct {
	writer     WriterInterface
	topic      string
	source     string
	logger     logging.Logger
	appMetrics *prometheus.AppMetrics
	closed     atomic.Bool
	metrics    *ProducerMetrics
}

// NewProducer creates an async producer for cfg.Topic.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger, m *prometheus.AppMetrics) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = config.DefaultKafkaBatchTimeout
	}

	p := &Producer{
		topic:      cfg.Topic,
		source:     DefaultSource,
		logger:     logger,
		appMetrics: m,
		metrics:    &ProducerMetrics{},
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
		WriteTimeout: defaultWriteTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion:   p.onCompletion,
		Transport:    &kafka.Transport{DialTimeout: 10 * time.Second},
	}
	logger.Info("Kafka producer ready", logging.Strings("brokers", cfg.Brokers), logging.String("topic", cfg.Topic))
	return p, nil
}

// Publish wraps payload in an EventEnvelope and queues it.
func (p *Producer) Publish(ctx context.Context, eventType string, payload interface{}) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	env, err := NewEventEnvelope(eventType, p.source, payload)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage()
	if err != nil {
		return err
	}
	if len(msg.Value) > defaultMaxMessageBytes {
		return errors.New(errors.ErrCodeValidation, "Message too large")
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.MessagesFailed.Add(1)
		prometheus.RecordEvent(p.appMetrics, eventType, false)
		return errors.Wrap(err, errors.ErrCodeMessagingError, "publish failed")
	}
	p.logger.Debug("Event queued", logging.String("event_type", eventType), logging.String("event_id", env.EventID))
	return nil
}

// onCompletion receives async delivery results.
func (p *Producer) onCompletion(messages []kafka.Message, err error) {
	for _, m := range messages {
		eventType := headerValue(m, HeaderEventType)
		prometheus.RecordEvent(p.appMetrics, eventType, err == nil)
		if err != nil {
			p.metrics.MessagesFailed.Add(1)
			continue
		}
		p.metrics.MessagesSent.Add(1)
		p.metrics.BytesSent.Add(int64(len(m.Value)))
	}
	if err != nil {
		p.logger.Warn("Event delivery failed", logging.String("topic", p.topic), logging.Int("messages", len(messages)), logging.Err(err))
	}
}

// GetMetrics returns metrics snapshot.
func (p *Producer) GetMetrics() (sent, failed, bytes int64) {
	return p.metrics.MessagesSent.Load(), p.metrics.MessagesFailed.Load(), p.metrics.BytesSent.Load()
}

// Close flushes queued events and closes the writer.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return err
}

func ValidateProducerConfig(cfg config.KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "Brokers required")
	}
	if cfg.Topic == "" {
		return errors.New(errors.ErrCodeValidation, "Topic required")
	}
	return nil
}
