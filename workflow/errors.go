package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned when a trigger arrives while a run is active
	ErrAlreadyRunning = errors.New("a job is already running")

	// ErrUnauthorized is returned when a scheduled trigger carries the wrong secret
	ErrUnauthorized = errors.New("unauthorized")
)

// StageError records which pipeline stage failed
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
