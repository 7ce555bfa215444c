package types

import "time"

// EventType names a run lifecycle transition
type EventType string

const (
	EventRunStarted   EventType = "run.started"
	EventRunSucceeded EventType = "run.succeeded"
	EventRunFailed    EventType = "run.failed"
)

// RunEvent is published on every lifecycle transition of a run
type RunEvent struct {
	RunID    string    `json:"run_id"`
	Type     EventType `json:"type"`
	URL      string    `json:"url,omitempty"`
	Error    string    `json:"error,omitempty"`
	Duration float64   `json:"duration_seconds,omitempty"`
	At       time.Time `json:"at"`
}

// TriggerRequest is the Kafka message that asks for a pipeline run
type TriggerRequest struct {
	RequestedBy string `json:"requested_by"`
	Reason      string `json:"reason,omitempty"`
}
