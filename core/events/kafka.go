package events

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/gridshop/functions/core/logger"
)

// KafkaNotifier publishes document events to a kafka topic. An external
// consumer (or the trigger lambda fed from a queue) picks them up.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier creates a notifier which publishes to the given topic
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	return &KafkaNotifier{writer: writer}
}

// Notify publishes the event, keyed by resource so events of one
// resource stay ordered.
func (k *KafkaNotifier) Notify(ctx context.Context, resource string, operation Operation, payload []byte) {
	event := Event{
		EventID:   uuid.New().String(),
		Resource:  resource,
		Operation: operation,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("cannot marshal event for", resource)
		return
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(resource),
		Value: body,
	})
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("cannot publish event for", resource)
	}
}

// Close closes the underlying writer
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
