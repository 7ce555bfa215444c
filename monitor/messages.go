package monitor

import (
	"time"

	"contentbot/types"
)

// StatusUpdateMsg carries the result of a status poll
type StatusUpdateMsg struct {
	Status *types.StatusResponse
	Err    error
}

// TickMsg is sent periodically to trigger polling
type TickMsg struct {
	Time time.Time
}

// TriggerResultMsg is sent when a trigger request returns
type TriggerResultMsg struct {
	RunID string
	Err   error
}
