package feed

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"tasksync/internal/models"
	"tasksync/pkg/logger"
)

// Kafka publishes task events through an async writer. Keys are
// "owner:action" so one owner's events land on one partition in order.
type Kafka struct {
	writer *kafka.Writer
}

// NewKafka returns nil when no brokers are configured, which callers should
// swap for Nop.
func NewKafka(brokers []string, topic string) *Kafka {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchSize:    100,
			Async:        true,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (k *Kafka) Publish(ctx context.Context, ev models.TaskEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error(ctx, "feed marshal failed", "error", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(ev.OwnerID + ":" + ev.Action),
		Value: payload,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		logger.Warn(ctx, "feed publish failed", "error", err, "action", ev.Action, "id", ev.ID)
	}
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
