package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"contentbot/config"
	"contentbot/types"
)

func TestParseScript(t *testing.T) {
	cases := []struct {
		name      string
		reply     string
		wantTitle string
		wantBody  string
		wantErr   bool
	}{
		{"title prefix", "Title: Rise Again\n\nYou fell. Now rise.", "Rise Again", "You fell. Now rise.", false},
		{"markdown heading", "# Keep Going\nLine one\n\nLine two", "Keep Going", "Line one\nLine two", false},
		{"case insensitive", "TITLE:   Loud\nbody", "Loud", "body", false},
		{"plain first line", "Just Begin\nStart now.", "Just Begin", "Start now.", false},
		{"title only", "Lonely Title", "", "", true},
		{"blank", "  \n\n ", "", "", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			title, body, err := parseScript(c.reply)
			if (err != nil) != c.wantErr {
				t.Fatalf("err = %v; wantErr %v", err, c.wantErr)
			}
			if title != c.wantTitle || body != c.wantBody {
				t.Fatalf("got (%q, %q); want (%q, %q)", title, body, c.wantTitle, c.wantBody)
			}
		})
	}
}

func TestWriteWithoutModelUsesDefault(t *testing.T) {
	w := NewScriptWriter(config.ScriptConfig{}, testJournal(t))

	title, script := w.Write(context.Background(), nil)
	if title != defaultTitle || script != defaultScript {
		t.Fatalf("unexpected default script: %q", title)
	}
}

func TestWriteUsesModelReply(t *testing.T) {
	w := NewScriptWriter(config.ScriptConfig{}, testJournal(t))
	var gotPrompt, gotPreamble string
	w.chat = func(ctx context.Context, message, preamble string) (string, error) {
		gotPrompt, gotPreamble = message, preamble
		return "Title: Climb\n\nOne step at a time.", nil
	}

	title, script := w.Write(context.Background(), &types.Topic{Title: "Climber summits Everest", Excerpt: "At 70"})
	if title != "Climb" || script != "One step at a time." {
		t.Fatalf("got (%q, %q)", title, script)
	}
	if gotPreamble != scriptPreamble {
		t.Fatalf("preamble not sent")
	}
	if !strings.Contains(gotPrompt, "Climber summits Everest") || !strings.Contains(gotPrompt, "At 70") {
		t.Fatalf("topic not included in prompt: %q", gotPrompt)
	}
}

func TestWriteFallsBackOnModelFailure(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		err   error
	}{
		{"error", "", errors.New("rate limited")},
		{"empty reply", "\n\n", nil},
		{"title without body", "Title: Lonely\n", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewScriptWriter(config.ScriptConfig{}, testJournal(t))
			w.chat = func(context.Context, string, string) (string, error) { return c.reply, c.err }

			title, script := w.Write(context.Background(), nil)
			if title != fallbackTitle || script != fallbackScript {
				t.Fatalf("got (%q, %q); want fallback", title, script)
			}
		})
	}
}

func TestBuildPromptWithoutTopic(t *testing.T) {
	if got := buildPrompt(nil); got != scriptPrompt {
		t.Fatalf("prompt = %q", got)
	}
	if got := buildPrompt(&types.Topic{}); got != scriptPrompt {
		t.Fatalf("empty topic should not change the prompt")
	}
}
