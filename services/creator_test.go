package services

import (
	"context"
	"path/filepath"
	"testing"

	"contentbot/config"
)

func TestSynthesizeWithoutCredentials(t *testing.T) {
	workspace := t.TempDir()
	j := testJournal(t)

	d := NewDownloader(config.Default().Media, j)
	media, err := d.Fetch(context.Background(), workspace)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	cfg := config.Default()
	assembler := NewAssembler(j)
	assembler.hasFFmpeg = func() bool { return false }
	c := NewCreator(j, NewScriptWriter(cfg.Script, j), nil, NewVoiceover(cfg.Voice, j), assembler)

	video, err := c.Synthesize(context.Background(), media, workspace)
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if video.Title != defaultTitle || video.Script != defaultScript {
		t.Fatalf("unexpected script: %q", video.Title)
	}
	if video.VideoPath != filepath.Join(workspace, FinalVideoName) {
		t.Fatalf("video path = %s", video.VideoPath)
	}
	if readFile(t, filepath.Join(workspace, "voiceover.mp3")) != placeholderVoiceover {
		t.Fatalf("voiceover placeholder missing")
	}
}

func TestSynthesizeUsesTopic(t *testing.T) {
	srv := feedServer(t, testFeed)
	workspace := t.TempDir()
	j := testJournal(t)

	writer := NewScriptWriter(config.ScriptConfig{}, j)
	var prompt string
	writer.chat = func(ctx context.Context, message, preamble string) (string, error) {
		prompt = message
		return "Title: Books Change Lives\nRead. Grow. Give.", nil
	}
	assembler := NewAssembler(j)
	assembler.hasFFmpeg = func() bool { return false }
	c := NewCreator(j, writer, NewTopicSource(srv.URL, false), NewVoiceover(config.VoiceConfig{}, j), assembler)

	media, _ := NewDownloader(config.Default().Media, j).Fetch(context.Background(), workspace)
	video, err := c.Synthesize(context.Background(), media, workspace)
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if video.Title != "Books Change Lives" {
		t.Fatalf("title = %q", video.Title)
	}
	if prompt == scriptPrompt {
		t.Fatalf("topic did not reach the prompt")
	}
}
