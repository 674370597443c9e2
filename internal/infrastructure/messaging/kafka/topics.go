package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// Audit topic defaults used by EnsureTopic.
const (
	DefaultPartitions        = 3
	DefaultReplicationFactor = 1
	DefaultRetentionMs       = 30 * 24 * 3600 * 1000
)

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates the audit topic on brokers without auto-creation.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessagingError, "failed to dial kafka")
	}
	return &TopicManager{conn: conn, logger: logger}, nil
}

// EnsureTopic creates name unless it already has partitions.
func (m *TopicManager) EnsureTopic(ctx context.Context, name string) error {
	if name == "" {
		return errors.New(errors.ErrCodeValidation, "topic name required")
	}
	if exists, _ := m.TopicExists(ctx, name); exists {
		return nil
	}
	err := m.conn.CreateTopics(kafka.TopicConfig{
		Topic:             name,
		NumPartitions:     DefaultPartitions,
		ReplicationFactor: DefaultReplicationFactor,
		ConfigEntries: []kafka.ConfigEntry{
			{ConfigName: "retention.ms", ConfigValue: fmt.Sprintf("%d", DefaultRetentionMs)},
		},
	})
	if err != nil {
		if exists, _ := m.TopicExists(ctx, name); exists {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to create topic "+name)
	}
	m.logger.Info("Topic created", logging.String("topic", name))
	return nil
}

func (m *TopicManager) TopicExists(ctx context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

func (m *TopicManager) Close() error {
	return m.conn.Close()
}
