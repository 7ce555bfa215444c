package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"contentbot/config"
	"contentbot/journal"
)

const placeholderVoiceover = "PLACEHOLDER_VOICEOVER"

// Voiceover renders the script to speech with the OpenAI audio API
// Endpoint: POST https://api.openai.com/v1/audio/speech
// Request: {"model": "tts-1", "voice": "onyx", "input": "..."}
// Response: audio/mpeg bytes
type Voiceover struct {
	journal  *journal.Journal
	apiKey   string
	model    string
	voice    string
	endpoint string
	client   *http.Client
}

// NewVoiceover creates a new voiceover generator
func NewVoiceover(cfg config.VoiceConfig, j *journal.Journal) *Voiceover {
	return &Voiceover{
		journal:  j,
		apiKey:   cfg.OpenAIAPIKey,
		model:    cfg.Model,
		voice:    cfg.Voice,
		endpoint: "https://api.openai.com/v1/audio/speech",
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate writes voiceover.mp3 into workspace. Speech failures fall back to
// a placeholder file; only local write errors are returned.
func (v *Voiceover) Generate(ctx context.Context, script, workspace string) (string, error) {
	v.journal.Info("Generating AI voiceover", creatorSource)
	out := filepath.Join(workspace, "voiceover.mp3")

	if v.apiKey == "" {
		v.journal.Info("OpenAI API not configured, creating placeholder voiceover", creatorSource)
		return writePlaceholder(out, placeholderVoiceover)
	}

	audio, err := v.synthesize(ctx, script)
	if err != nil {
		v.journal.Error(fmt.Sprintf("Failed to generate voiceover: %v", err), creatorSource)
		return writePlaceholder(out, placeholderVoiceover)
	}
	if err := os.WriteFile(out, audio, 0o644); err != nil {
		return "", fmt.Errorf("write voiceover: %w", err)
	}

	v.journal.Success("Voiceover generated", creatorSource)
	return out, nil
}

func (v *Voiceover) synthesize(ctx context.Context, script string) ([]byte, error) {
	payload := map[string]string{
		"model": v.model,
		"voice": v.voice,
		"input": script,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", v.apiKey))
	if org := os.Getenv("OPENAI_ORG_ID"); org != "" {
		req.Header.Set("OpenAI-Organization", org)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, fmt.Errorf("openai speech error: status %d: %v", resp.StatusCode, body)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("openai speech returned no audio")
	}
	return audio, nil
}

func writePlaceholder(path, content string) (string, error) {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write placeholder %s: %w", filepath.Base(path), err)
	}
	return path, nil
}
