package kafka

import (
	"context"
	"errors"
	"log"

	"contentbot/types"
	"contentbot/workflow"
)

// Triggerer starts pipeline runs
type Triggerer interface {
	TriggerRun(ctx context.Context, origin string) (workflow.TriggerResult, error)
}

// NewTriggerHandler turns trigger requests into pipeline runs. A request
// that arrives while a run is active is consumed, not retried.
func NewTriggerHandler(t Triggerer) *TypedMessageHandler[types.TriggerRequest] {
	return &TypedMessageHandler[types.TriggerRequest]{
		Process: func(ctx context.Context, msg *types.TriggerRequest) error {
			res, err := t.TriggerRun(ctx, workflow.OriginKafka)
			switch {
			case errors.Is(err, workflow.ErrAlreadyRunning):
				log.Printf("⏭️  Trigger request from %q skipped: %s", msg.RequestedBy, res.Message)
				return nil
			case err != nil:
				return err
			}
			if res.Task != nil {
				log.Printf("✅ Run %s triggered by Kafka request from %q", res.Task.ID(), msg.RequestedBy)
			}
			return nil
		},
		AlwaysMark: true,
	}
}

// NewTriggerConsumer creates a consumer that triggers a run per request
func NewTriggerConsumer(brokers []string, topic, groupID string, t Triggerer) (*Consumer, error) {
	return NewConsumer(ConsumerConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
		Handler: NewTriggerHandler(t),
	})
}
