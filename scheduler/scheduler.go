package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"contentbot/workflow"

	"github.com/robfig/cron/v3"
)

// Triggerer starts pipeline runs
type Triggerer interface {
	TriggerRun(ctx context.Context, origin string) (workflow.TriggerResult, error)
}

// NextRunRecorder stores the next planned run time
type NextRunRecorder interface {
	SetNextScheduledRun(next time.Time)
}

// Scheduler triggers runs on a cron schedule and keeps the next planned
// run time in the durable state
type Scheduler struct {
	cron    *cron.Cron
	trigger Triggerer
	state   NextRunRecorder
	now     func() time.Time

	mu       sync.Mutex
	schedule cron.Schedule
	entryID  cron.EntryID
}

// New creates a new scheduler
func New(t Triggerer, st NextRunRecorder) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		trigger: t,
		state:   st,
		now:     time.Now,
	}
}

// Start parses a standard five-field cron expression and begins firing
func (s *Scheduler) Start(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule != nil {
		return errors.New("scheduler already started")
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}

	s.schedule = schedule
	s.entryID = s.cron.Schedule(schedule, cron.FuncJob(s.fire))
	s.recordNext()
	s.cron.Start()

	log.Printf("Cron job started with schedule: %s", spec)
	return nil
}

// Stop halts the schedule. The returned context is done once a firing in
// progress has returned; runs it started keep going in the background.
func (s *Scheduler) Stop() context.Context {
	log.Println("Stopping scheduler...")
	return s.cron.Stop()
}

func (s *Scheduler) fire() {
	log.Println("Cron triggered: starting automated workflow")

	res, err := s.trigger.TriggerRun(context.Background(), workflow.OriginScheduler)
	switch {
	case errors.Is(err, workflow.ErrAlreadyRunning):
		log.Printf("Cron skipped: %s", res.Message)
	case err != nil:
		log.Printf("Cron workflow error: %v", err)
	}

	s.mu.Lock()
	s.recordNext()
	s.mu.Unlock()
}

// recordNext must be called with mu held
func (s *Scheduler) recordNext() {
	next := s.schedule.Next(s.now())
	s.state.SetNextScheduledRun(next)
	log.Printf("⏰ Next scheduled run at %s", next.Format(time.RFC3339))
}
