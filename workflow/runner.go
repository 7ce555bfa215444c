package workflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"contentbot/config"
	"contentbot/journal"
	"contentbot/state"
	"contentbot/types"

	"github.com/google/uuid"
)

const source = "Orchestrator"

// Stage names used in failure reports
const (
	StageWorkspace = "prepare workspace"
	StageFetch     = "download media"
	StageCreate    = "create video"
	StagePublish   = "publish video"
)

// Fetcher retrieves the raw media for a run into the workspace
type Fetcher interface {
	Fetch(ctx context.Context, workspace string) (*types.DownloadedMedia, error)
}

// Synthesizer turns downloaded media into a finished video
type Synthesizer interface {
	Synthesize(ctx context.Context, media *types.DownloadedMedia, workspace string) (*types.CreatedVideo, error)
}

// Publisher uploads a finished video and returns its public URL
type Publisher interface {
	Publish(ctx context.Context, video *types.CreatedVideo, workspace string) (string, error)
}

// Notifier receives run lifecycle events. Implementations must not block for long.
type Notifier interface {
	Notify(ctx context.Context, event types.RunEvent)
}

// Stages bundles the three pipeline collaborators
type Stages struct {
	Fetcher     Fetcher
	Synthesizer Synthesizer
	Publisher   Publisher
}

// Runner executes the complete pipeline
type Runner struct {
	state    *state.Manager
	journal  *journal.Journal
	stages   Stages
	notifier Notifier
	now      func() time.Time
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithNotifier sends run lifecycle events to n
func WithNotifier(n Notifier) RunnerOption {
	return func(r *Runner) { r.notifier = n }
}

// NewRunner creates a new pipeline runner
func NewRunner(st *state.Manager, j *journal.Journal, stages Stages, opts ...RunnerOption) *Runner {
	r := &Runner{
		state:   st,
		journal: j,
		stages:  stages,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the pipeline once, synchronously.
// Single-flight is the caller's concern; see Service.TriggerRun.
func (r *Runner) Run(ctx context.Context) error {
	runID := newRunID()
	r.announce(runID)
	return r.run(ctx, runID)
}

func newRunID() string {
	return uuid.NewString()[:8]
}

// announce writes the start entry. It is called before run so the entry is
// visible as soon as the running flag is.
func (r *Runner) announce(runID string) {
	log.Printf("🚀 Run %s starting", runID)
	r.journal.Info("=== STARTING AUTONOMOUS VIDEO CREATION PIPELINE ===", source)
}

func (r *Runner) run(ctx context.Context, runID string) (err error) {
	start := r.now()

	r.state.SetRunning(true)
	defer r.finalize()

	// A panicking stage fails like any other; registered after finalize so
	// the failure is journaled before cleanup.
	stage := StageWorkspace
	defer func() {
		if p := recover(); p != nil {
			err = r.fail(ctx, runID, start, stage, fmt.Errorf("panic: %v", p))
		}
	}()

	r.notify(ctx, types.RunEvent{RunID: runID, Type: types.EventRunStarted})

	workspace, err := r.state.TempWorkspace()
	if err != nil {
		return r.fail(ctx, runID, start, StageWorkspace, err)
	}

	// Step 1: Download media
	stage = StageFetch
	r.journal.Info("STEP 1/3: Downloading media", source)
	media, err := r.stages.Fetcher.Fetch(ctx, workspace)
	if err != nil {
		return r.fail(ctx, runID, start, StageFetch, err)
	}

	// Step 2: Create video
	stage = StageCreate
	r.journal.Info("STEP 2/3: Creating video", source)
	video, err := r.stages.Synthesizer.Synthesize(ctx, media, workspace)
	if err != nil {
		return r.fail(ctx, runID, start, StageCreate, err)
	}

	// Step 3: Publish
	stage = StagePublish
	r.journal.Info("STEP 3/3: Publishing to YouTube", source)
	url, err := r.stages.Publisher.Publish(ctx, video, workspace)
	if err != nil {
		return r.fail(ctx, runID, start, StagePublish, err)
	}

	r.state.IncrementCompletedRunCount()

	elapsed := r.now().Sub(start).Seconds()
	r.journal.Success(fmt.Sprintf("=== PIPELINE COMPLETED IN %.2fs === Video URL: %s", elapsed, url), source)
	log.Printf("✅ Run %s completed in %.2fs", runID, elapsed)

	r.notify(ctx, types.RunEvent{RunID: runID, Type: types.EventRunSucceeded, URL: url, Duration: elapsed})
	return nil
}

func (r *Runner) fail(ctx context.Context, runID string, start time.Time, stage string, err error) error {
	stageErr := &StageError{Stage: stage, Err: err}
	r.journal.Error(fmt.Sprintf("Pipeline failed during %s: %v", stage, err), source)
	log.Printf("❌ Run %s failed: %v", runID, stageErr)

	r.notify(ctx, types.RunEvent{
		RunID:    runID,
		Type:     types.EventRunFailed,
		Error:    stageErr.Error(),
		Duration: r.now().Sub(start).Seconds(),
	})
	return stageErr
}

// finalize runs on every exit path, panics included. The running flag is
// cleared last so no new run can start while the workspace is still in use.
func (r *Runner) finalize() {
	r.journal.Info("Cleaning up temporary files", source)
	if _, err := r.state.ClearTempWorkspace(); err != nil {
		r.journal.Error(fmt.Sprintf("Failed to clean temporary files: %v", err), source)
	}

	if _, err := r.journal.PruneOlderThan(config.LogRetentionDays); err != nil {
		r.journal.Error(fmt.Sprintf("Failed to prune old logs: %v", err), source)
	}

	r.state.SetRunning(false)
}

func (r *Runner) notify(ctx context.Context, event types.RunEvent) {
	if r.notifier == nil {
		return
	}
	event.At = r.now().UTC()
	r.notifier.Notify(ctx, event)
}
