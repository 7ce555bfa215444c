package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"contentbot/config"
)

func TestGenerateWithoutKeyWritesPlaceholder(t *testing.T) {
	workspace := t.TempDir()
	v := NewVoiceover(config.Default().Voice, testJournal(t))

	path, err := v.Generate(context.Background(), "script", workspace)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if filepath.Base(path) != "voiceover.mp3" || readFile(t, path) != placeholderVoiceover {
		t.Fatalf("unexpected voiceover at %s", path)
	}
}

func TestGenerateCallsSpeechAPI(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-audio"))
	}))
	defer srv.Close()

	cfg := config.Default().Voice
	cfg.OpenAIAPIKey = "sk-test"
	v := NewVoiceover(cfg, testJournal(t))
	v.endpoint = srv.URL

	path, err := v.Generate(context.Background(), "You can do it.", t.TempDir())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if readFile(t, path) != "ID3-audio" {
		t.Fatalf("audio not written")
	}
	if got["model"] != "tts-1" || got["voice"] != "onyx" || got["input"] != "You can do it." {
		t.Fatalf("unexpected request body: %v", got)
	}
}

func TestGenerateFallsBackOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer srv.Close()

	cfg := config.Default().Voice
	cfg.OpenAIAPIKey = "sk-test"
	v := NewVoiceover(cfg, testJournal(t))
	v.endpoint = srv.URL

	path, err := v.Generate(context.Background(), "script", t.TempDir())
	if err != nil {
		t.Fatalf("API errors must not fail the stage: %v", err)
	}
	if readFile(t, path) != placeholderVoiceover {
		t.Fatalf("expected placeholder voiceover")
	}
}
