package workflow

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"
	"sync"

	"contentbot/config"
	"contentbot/journal"
	"contentbot/lock"
	"contentbot/state"
	"contentbot/types"
)

// Trigger origins recorded in the activity log
const (
	OriginManual    = "API"
	OriginCron      = "Cron"
	OriginScheduler = "Scheduler"
	OriginKafka     = "Kafka"
	OriginMonitor   = "Monitor"
)

// TriggerResult is the immediate acknowledgement of a trigger
type TriggerResult struct {
	Accepted bool
	Message  string
	Task     *Task
}

// Task is the handle of a run started in the background
type Task struct {
	id   string
	done chan struct{}
	err  error
}

// ID returns the run ID
func (t *Task) ID() string { return t.id }

// Done is closed when the run has finished, including its cleanup
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the run's outcome. Only valid after Done is closed.
func (t *Task) Err() error {
	<-t.done
	return t.err
}

// Service exposes the caller-facing operations shared by every transport
type Service struct {
	runner  *Runner
	state   *state.Manager
	journal *journal.Journal
	locker  lock.Locker
	secret  string

	wg sync.WaitGroup
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithLocker adds cross-process exclusion on top of the local running flag
func WithLocker(l lock.Locker) ServiceOption {
	return func(s *Service) { s.locker = l }
}

// WithCronSecret gates TriggerScheduled behind a shared secret
func WithCronSecret(secret string) ServiceOption {
	return func(s *Service) { s.secret = secret }
}

// NewService creates a new trigger service
func NewService(runner *Runner, st *state.Manager, j *journal.Journal, opts ...ServiceOption) *Service {
	s := &Service{
		runner:  runner,
		state:   st,
		journal: j,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TriggerRun starts a run in the background unless one is already active.
// The run is detached from ctx's cancellation; only ctx's values carry over.
func (s *Service) TriggerRun(ctx context.Context, origin string) (TriggerResult, error) {
	if !s.acquireLock(ctx) {
		return s.conflict(origin)
	}
	if !s.state.TryStartRun() {
		s.releaseLock(ctx)
		return s.conflict(origin)
	}

	task := &Task{id: newRunID(), done: make(chan struct{})}
	runCtx := context.WithoutCancel(ctx)
	s.runner.announce(task.id)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(task.done)
		defer s.releaseLock(runCtx)
		defer func() {
			if p := recover(); p != nil {
				task.err = fmt.Errorf("pipeline panic: %v", p)
				s.journal.Error(fmt.Sprintf("Pipeline crashed: %v", p), source)
			}
		}()

		task.err = s.runner.run(runCtx, task.id)
	}()

	log.Printf("▶️  Run %s triggered by %s", task.id, origin)
	return TriggerResult{
		Accepted: true,
		Message:  "Job triggered successfully",
		Task:     task,
	}, nil
}

// TriggerScheduled behaves like TriggerRun after checking the shared secret
func (s *Service) TriggerScheduled(ctx context.Context, credential string) (TriggerResult, error) {
	if s.secret != "" && subtle.ConstantTimeCompare([]byte(credential), []byte(s.secret)) != 1 {
		return TriggerResult{Message: "Unauthorized"}, ErrUnauthorized
	}
	return s.TriggerRun(ctx, OriginCron)
}

// Status returns the run state and the most recent log entries
func (s *Service) Status() types.StatusResponse {
	return types.StatusResponse{
		RunState: s.state.GetState(),
		Logs:     s.journal.Recent(config.StatusLogLimit),
	}
}

// Wait blocks until every background run has finished
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) conflict(origin string) (TriggerResult, error) {
	s.journal.Info(fmt.Sprintf("Trigger from %s rejected: a job is already running", origin), source)
	return TriggerResult{Message: "A job is already running"}, ErrAlreadyRunning
}

func (s *Service) acquireLock(ctx context.Context) bool {
	if s.locker == nil {
		return true
	}
	ok, err := s.locker.Acquire(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to acquire run lock: %v", err)
		return false
	}
	return ok
}

func (s *Service) releaseLock(ctx context.Context) {
	if s.locker == nil {
		return
	}
	if err := s.locker.Release(ctx); err != nil {
		log.Printf("⚠️  Failed to release run lock: %v", err)
	}
}
