package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"contentbot/journal"
	"contentbot/state"
	"contentbot/types"
)

type fakeFetcher struct {
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, workspace string) (*types.DownloadedMedia, error) {
	f.calls++
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	path := filepath.Join(workspace, "video_1.mp4")
	if err := os.WriteFile(path, []byte("PLACEHOLDER_VIDEO"), 0o644); err != nil {
		return nil, err
	}
	return &types.DownloadedMedia{Videos: []string{path}, Music: filepath.Join(workspace, "background_music.mp3")}, nil
}

type fakeSynthesizer struct {
	err      error
	panicMsg string
	calls    int
}

func (s *fakeSynthesizer) Synthesize(ctx context.Context, media *types.DownloadedMedia, workspace string) (*types.CreatedVideo, error) {
	s.calls++
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &types.CreatedVideo{VideoPath: filepath.Join(workspace, "final_video.mp4"), Script: "Title\nbody", Title: "Title"}, nil
}

type fakePublisher struct {
	err   error
	calls int
}

func (p *fakePublisher) Publish(ctx context.Context, video *types.CreatedVideo, workspace string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return "https://youtube.com/watch?v=test", nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []types.RunEvent
}

func (n *recordingNotifier) Notify(ctx context.Context, e types.RunEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

type fixture struct {
	state     *state.Manager
	journal   *journal.Journal
	fetcher   *fakeFetcher
	synth     *fakeSynthesizer
	publisher *fakePublisher
	runner    *Runner
	tempDir   string
}

func newFixture(t *testing.T, opts ...RunnerOption) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		state:     state.NewManager(filepath.Join(root, "data"), filepath.Join(root, "temp")),
		journal:   journal.New(filepath.Join(root, "logs", "system.log"), journal.WithoutEcho()),
		fetcher:   &fakeFetcher{},
		synth:     &fakeSynthesizer{},
		publisher: &fakePublisher{},
		tempDir:   filepath.Join(root, "temp"),
	}
	f.runner = NewRunner(f.state, f.journal, Stages{
		Fetcher:     f.fetcher,
		Synthesizer: f.synth,
		Publisher:   f.publisher,
	}, opts...)
	return f
}

func messages(entries []types.LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func containsPrefix(entries []types.LogEntry, prefix string) bool {
	for _, e := range entries {
		if strings.HasPrefix(e.Message, prefix) {
			return true
		}
	}
	return false
}

func TestRunSuccess(t *testing.T) {
	f := newFixture(t)

	if err := f.runner.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	s := f.state.GetState()
	if s.IsRunning {
		t.Fatalf("running flag not cleared")
	}
	if s.CompletedRunCount != 1 {
		t.Fatalf("completed = %d; want 1", s.CompletedRunCount)
	}
	if s.LastRunStartedAt == nil {
		t.Fatalf("lastRun not stamped")
	}

	logs := f.journal.Recent(100)
	for _, want := range []string{
		"=== STARTING AUTONOMOUS VIDEO CREATION PIPELINE ===",
		"STEP 1/3: Downloading media",
		"STEP 2/3: Creating video",
		"STEP 3/3: Publishing to YouTube",
		"=== PIPELINE COMPLETED IN ",
		"Cleaning up temporary files",
	} {
		if !containsPrefix(logs, want) {
			t.Fatalf("log missing %q: %v", want, messages(logs))
		}
	}
	for _, e := range logs {
		if e.Source != "Orchestrator" {
			t.Fatalf("entry %q has source %q", e.Message, e.Source)
		}
	}
	if !strings.Contains(logs[len(logs)-2].Message, "https://youtube.com/watch?v=test") {
		t.Fatalf("completion entry lacks URL: %v", messages(logs))
	}

	entries, _ := os.ReadDir(f.tempDir)
	if len(entries) != 0 {
		t.Fatalf("workspace not cleared: %d entries left", len(entries))
	}
}

func TestRunStageFailure(t *testing.T) {
	cases := []struct {
		name      string
		setup     func(f *fixture)
		wantStage string
		wantPub   int
	}{
		{
			name:      "fetch",
			setup:     func(f *fixture) { f.fetcher.err = errors.New("disk full") },
			wantStage: StageFetch,
		},
		{
			name:      "create",
			setup:     func(f *fixture) { f.synth.err = errors.New("ffmpeg exploded") },
			wantStage: StageCreate,
		},
		{
			name:      "publish",
			setup:     func(f *fixture) { f.publisher.err = errors.New("quota") },
			wantStage: StagePublish,
			wantPub:   1,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(t)
			c.setup(f)

			err := f.runner.Run(context.Background())
			var stageErr *StageError
			if !errors.As(err, &stageErr) {
				t.Fatalf("error %v is not a StageError", err)
			}
			if stageErr.Stage != c.wantStage {
				t.Fatalf("stage = %q; want %q", stageErr.Stage, c.wantStage)
			}
			if f.publisher.calls != c.wantPub {
				t.Fatalf("publisher called %d times; want %d", f.publisher.calls, c.wantPub)
			}

			s := f.state.GetState()
			if s.IsRunning || s.CompletedRunCount != 0 {
				t.Fatalf("unexpected state after failure: %+v", s)
			}

			logs := f.journal.Recent(100)
			if !containsPrefix(logs, "Pipeline failed during "+c.wantStage) {
				t.Fatalf("failure not logged: %v", messages(logs))
			}
			if !containsPrefix(logs, "Cleaning up temporary files") {
				t.Fatalf("finalizer did not run: %v", messages(logs))
			}
		})
	}
}

func TestRunPrunesOldLogs(t *testing.T) {
	root := t.TempDir()
	logPath := filepath.Join(root, "logs", "system.log")
	old := time.Now().Add(-30 * 24 * time.Hour)
	seed := journal.New(logPath, journal.WithoutEcho(), journal.WithClock(func() time.Time { return old }))
	seed.Info("ancient", "Test")

	st := state.NewManager(filepath.Join(root, "data"), filepath.Join(root, "temp"))
	j := journal.New(logPath, journal.WithoutEcho())
	r := NewRunner(st, j, Stages{&fakeFetcher{}, &fakeSynthesizer{}, &fakePublisher{}})

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if containsPrefix(j.Recent(100), "ancient") {
		t.Fatalf("old entry survived retention pruning")
	}
}

func TestRunNotifiesLifecycle(t *testing.T) {
	n := &recordingNotifier{}
	f := newFixture(t, WithNotifier(n))

	if err := f.runner.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(n.events) != 2 {
		t.Fatalf("got %d events; want 2", len(n.events))
	}
	if n.events[0].Type != types.EventRunStarted || n.events[1].Type != types.EventRunSucceeded {
		t.Fatalf("unexpected event types: %s, %s", n.events[0].Type, n.events[1].Type)
	}
	if n.events[0].RunID == "" || n.events[0].RunID != n.events[1].RunID {
		t.Fatalf("events should share a run ID")
	}
	if n.events[1].URL == "" {
		t.Fatalf("success event missing URL")
	}
}

func TestRunNotifiesFailure(t *testing.T) {
	n := &recordingNotifier{}
	f := newFixture(t, WithNotifier(n))
	f.publisher.err = errors.New("quota")

	_ = f.runner.Run(context.Background())

	last := n.events[len(n.events)-1]
	if last.Type != types.EventRunFailed || !strings.Contains(last.Error, "quota") {
		t.Fatalf("unexpected final event: %+v", last)
	}
}

func TestRunStagePanic(t *testing.T) {
	n := &recordingNotifier{}
	f := newFixture(t, WithNotifier(n))
	f.synth.panicMsg = "boom"

	err := f.runner.Run(context.Background())
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageCreate {
		t.Fatalf("error = %v; want StageError for %q", err, StageCreate)
	}
	if !strings.Contains(err.Error(), "panic: boom") {
		t.Fatalf("error lacks panic value: %v", err)
	}
	if f.state.GetState().IsRunning {
		t.Fatalf("running flag left set after panic")
	}

	got := messages(f.journal.Recent(100))
	want := []string{
		"=== STARTING AUTONOMOUS VIDEO CREATION PIPELINE ===",
		"STEP 1/3: Downloading media",
		"STEP 2/3: Creating video",
		"Pipeline failed during create video: panic: boom",
		"Cleaning up temporary files",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("journal = %v; want %v", got, want)
	}

	last := n.events[len(n.events)-1]
	if last.Type != types.EventRunFailed || !strings.Contains(last.Error, "create video") {
		t.Fatalf("last event = %+v; want run.failed for create video", last)
	}
}
