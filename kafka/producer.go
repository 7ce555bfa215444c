package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"contentbot/types"

	"github.com/IBM/sarama"
)

// EventProducer publishes run lifecycle events, keyed by run ID so every
// event of a run lands on the same partition
type EventProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewEventProducer creates a new event producer
func NewEventProducer(brokers []string, topic string) (*EventProducer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}

	cfg := newSaramaConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return newEventProducer(p, topic), nil
}

func newEventProducer(p sarama.SyncProducer, topic string) *EventProducer {
	return &EventProducer{producer: p, topic: topic}
}

// Notify sends the event. Delivery failures are logged and never reach the run.
func (p *EventProducer) Notify(ctx context.Context, event types.RunEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ Failed to encode run event: %v", err)
		return
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.RunID),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		log.Printf("❌ Failed to publish %s for run %s: %v", event.Type, event.RunID, err)
		return
	}
	log.Printf("📤 Published %s for run %s (partition=%d, offset=%d)", event.Type, event.RunID, partition, offset)
}

// Close flushes and closes the producer
func (p *EventProducer) Close() error {
	return p.producer.Close()
}
