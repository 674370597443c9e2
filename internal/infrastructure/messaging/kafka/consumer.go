package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/EcoExpand-AI/internal/config"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

var ErrAlreadyRunning = errors.New(errors.ErrCodeInternal, "consumer already running")

// EventHandler receives each decoded envelope.
type EventHandler func(ctx context.Context, env *EventEnvelope) error

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerOptions tune NewConsumer.
type ConsumerOptions struct {
	// GroupID enables committed offsets. Empty reads the partition directly.
	GroupID string
	// FromBeginning starts at the earliest offset instead of the latest.
	FromBeginning bool
}

// Consumer reads audit events from the configured topic.
type Consumer struct {
	reader   ReaderInterface
	groupID  string
	logger   logging.Logger
	running  atomic.Bool
	consumed atomic.Int64
	skipped  atomic.Int64
}

func NewConsumer(cfg config.KafkaConfig, opts ConsumerOptions, logger logging.Logger) (*Consumer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	readerCfg := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     opts.GroupID,
		MinBytes:    1,
		MaxBytes:    10 * 1024 * 1024,
		MaxWait:     time.Second,
		StartOffset: kafka.LastOffset,
		Dialer:      &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true},
	}
	if opts.FromBeginning {
		readerCfg.StartOffset = kafka.FirstOffset
	}
	return &Consumer{
		reader:  kafka.NewReader(readerCfg),
		groupID: opts.GroupID,
		logger:  logger,
	}, nil
}

// Run feeds every event to handler until ctx is done. Undecodable messages
// are logged and skipped. A handler error stops the loop.
func (c *Consumer) Run(ctx context.Context, handler EventHandler) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeMessagingError, "fetch failed")
		}
		c.consumed.Add(1)

		env, err := MessageToEventEnvelope(m)
		if err != nil {
			c.skipped.Add(1)
			c.logger.Warn("Skipping undecodable event",
				logging.Int("partition", m.Partition),
				logging.Int64("offset", m.Offset),
				logging.Err(err))
		} else if err := handler(ctx, env); err != nil {
			return err
		}

		if c.groupID != "" {
			if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
				c.logger.Error("CommitMessages failed", logging.Err(err))
			}
		}
	}
}

// Stats returns how many messages were read and how many were skipped.
func (c *Consumer) Stats() (consumed, skipped int64) {
	return c.consumed.Load(), c.skipped.Load()
}

func (c *Consumer) Close() error {
	err := c.reader.Close()
	c.logger.Info("Kafka consumer closed", logging.Int64("consumed", c.consumed.Load()))
	return err
}
