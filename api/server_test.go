package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"contentbot/journal"
	"contentbot/state"
	"contentbot/types"
	"contentbot/workflow"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type blockingFetcher struct {
	release chan struct{}
}

func (f *blockingFetcher) Fetch(ctx context.Context, workspace string) (*types.DownloadedMedia, error) {
	<-f.release
	return &types.DownloadedMedia{}, nil
}

type stubSynthesizer struct{}

func (stubSynthesizer) Synthesize(ctx context.Context, media *types.DownloadedMedia, workspace string) (*types.CreatedVideo, error) {
	return &types.CreatedVideo{Title: "t"}, nil
}

type stubPublisher struct{}

func (stubPublisher) Publish(ctx context.Context, video *types.CreatedVideo, workspace string) (string, error) {
	return "https://youtube.com/watch?v=test", nil
}

type fixture struct {
	router  *gin.Engine
	svc     *workflow.Service
	release chan struct{}
}

func newFixture(t *testing.T, secret string) *fixture {
	t.Helper()
	dir := t.TempDir()
	j := journal.New(filepath.Join(dir, "logs", "system.log"), journal.WithoutEcho())
	st := state.NewManager(filepath.Join(dir, "data"), filepath.Join(dir, "temp"))

	release := make(chan struct{})
	runner := workflow.NewRunner(st, j, workflow.Stages{
		Fetcher:     &blockingFetcher{release: release},
		Synthesizer: stubSynthesizer{},
		Publisher:   stubPublisher{},
	})
	svc := workflow.NewService(runner, st, j, workflow.WithCronSecret(secret))

	f := &fixture{router: NewRouter(svc), svc: svc, release: release}
	t.Cleanup(func() {
		close(release)
		svc.Wait()
	})
	return f
}

func (f *fixture) do(method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return body
}

func TestTriggerAcceptsThenConflicts(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(http.MethodPost, "/api/trigger", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d; want 202", w.Code)
	}
	body := decode(t, w)
	if body["message"] != "Job triggered successfully" || body["runId"] == "" {
		t.Fatalf("body = %v", body)
	}

	w = f.do(http.MethodPost, "/api/trigger", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d; want 409", w.Code)
	}
	if decode(t, w)["error"] != "A job is already running" {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestStatusReportsRunningFlag(t *testing.T) {
	f := newFixture(t, "")
	f.do(http.MethodPost, "/api/trigger", "")

	w := f.do(http.MethodGet, "/api/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var status types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if !status.IsRunning || status.LastRunStartedAt == nil {
		t.Fatalf("unexpected state %+v", status.RunState)
	}
	if len(status.Logs) == 0 {
		t.Fatalf("expected log entries")
	}
}

func TestCronAuthorization(t *testing.T) {
	cases := []struct {
		name   string
		secret string
		auth   string
		want   int
	}{
		{"no secret configured", "", "", http.StatusOK},
		{"valid bearer", "s3cret", "Bearer s3cret", http.StatusOK},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong secret", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"missing scheme", "s3cret", "s3cret", http.StatusUnauthorized},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(t, c.secret)
			w := f.do(http.MethodGet, "/api/cron", c.auth)
			if w.Code != c.want {
				t.Fatalf("status = %d; want %d", w.Code, c.want)
			}
			body := decode(t, w)
			switch c.want {
			case http.StatusOK:
				if body["message"] != "Cron job triggered successfully" || body["timestamp"] == "" {
					t.Fatalf("body = %v", body)
				}
			case http.StatusUnauthorized:
				if body["error"] != "Unauthorized" {
					t.Fatalf("body = %v", body)
				}
			}
		})
	}
}

func TestCronConflict(t *testing.T) {
	f := newFixture(t, "")
	f.do(http.MethodGet, "/api/cron", "")

	w := f.do(http.MethodGet, "/api/cron", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d; want 409", w.Code)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, "")
	w := f.do(http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || decode(t, w)["status"] != "ok" {
		t.Fatalf("health = %d %s", w.Code, w.Body.String())
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc": "abc",
		"Bearer ":    "",
		"Basic abc":  "",
		"bearer abc": "",
		"":           "",
	}
	for header, want := range cases {
		if got := bearerToken(header); got != want {
			t.Errorf("bearerToken(%q) = %q; want %q", header, got, want)
		}
	}
}
