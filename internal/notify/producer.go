package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer wraps the Kafka writer for notification events.
type Producer struct {
	w *kafka.Writer
}

// NewProducer configures the writer for reliability:
// - Hash + key: events for one reservation land on one partition.
// - RequireAll: wait for ISR acks to reduce loss.
// - MaxAttempts/timeouts bound retries.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  5,
			WriteTimeout: 5 * time.Second,
			ReadTimeout:  5 * time.Second,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Close releases the writer.
func (p *Producer) Close() error { return p.w.Close() }

// Publish writes one notification event, keyed by event id.
func (p *Producer) Publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.EventID),
		Value: b,
	})
}
