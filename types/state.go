package types

import "time"

// RunState is the durable record of the pipeline's run control.
// JSON keys match the on-disk layout written by earlier releases.
type RunState struct {
	IsRunning          bool       `json:"isRunning"`
	LastRunStartedAt   *time.Time `json:"lastRun,omitempty"`
	NextScheduledRunAt *time.Time `json:"nextRun,omitempty"`
	CompletedRunCount  int        `json:"totalVideos"`
}

// Clone returns a copy that shares no pointers with s
func (s RunState) Clone() RunState {
	out := s
	if s.LastRunStartedAt != nil {
		t := *s.LastRunStartedAt
		out.LastRunStartedAt = &t
	}
	if s.NextScheduledRunAt != nil {
		t := *s.NextScheduledRunAt
		out.NextScheduledRunAt = &t
	}
	return out
}

// Level classifies a log entry
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Valid reports whether l is one of the known levels
func (l Level) Valid() bool {
	switch l {
	case LevelInfo, LevelSuccess, LevelError:
		return true
	}
	return false
}

// LogEntry is one immutable line of the activity log
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"agent,omitempty"`
}

// StatusResponse is the JSON response for GET /api/status
type StatusResponse struct {
	RunState
	Logs []LogEntry `json:"logs"`
}
