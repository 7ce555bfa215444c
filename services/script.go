package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"contentbot/config"
	"contentbot/journal"
	"contentbot/types"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

const creatorSource = "VideoCreator"

const scriptPreamble = "You are a motivational speaker creating powerful, inspiring scripts for YouTube videos. " +
	"Keep scripts under 500 words, impactful, and suitable for a 60-second video."

const scriptPrompt = "Write a powerful motivational script about overcoming challenges and achieving success. Include a catchy title."

const (
	defaultTitle  = "Never Give Up: Your Success Story Starts Today"
	defaultScript = `Every champion was once a contender who refused to give up.

Success is not final, failure is not fatal. It is the courage to continue that counts.

The only limit to our realization of tomorrow is our doubts of today.

Believe in yourself. Take on your challenges. Dig deep within yourself to conquer fears.

Never let anyone bring you down. You are capable of amazing things.

Your future is created by what you do today, not tomorrow.

Make it happen. The world is waiting for your greatness.`

	fallbackTitle  = "Unlock Your Potential Today"
	fallbackScript = "Greatness is within you. Every step forward is progress. Keep pushing, keep growing, keep believing."
)

var titlePrefix = regexp.MustCompile(`(?i)^(Title:|#)\s*`)

// chatFunc sends one prompt to a chat model and returns the reply text
type chatFunc func(ctx context.Context, message, preamble string) (string, error)

// ScriptWriter produces the motivational script and its title
type ScriptWriter struct {
	journal *journal.Journal
	chat    chatFunc
}

// NewScriptWriter creates a script writer backed by Cohere when a key is set
func NewScriptWriter(cfg config.ScriptConfig, j *journal.Journal) *ScriptWriter {
	w := &ScriptWriter{journal: j}
	if cfg.CohereAPIKey == "" {
		return w
	}

	client := cohereclient.NewClient(cohereclient.WithToken(cfg.CohereAPIKey))
	model := cfg.Model
	temperature := cfg.Temperature
	w.chat = func(ctx context.Context, message, preamble string) (string, error) {
		resp, err := client.Chat(ctx, &cohere.ChatRequest{
			Message:     message,
			Preamble:    &preamble,
			Model:       &model,
			Temperature: &temperature,
		})
		if err != nil {
			return "", fmt.Errorf("cohere chat error: %w", err)
		}
		if resp == nil {
			return "", fmt.Errorf("cohere chat returned empty response")
		}
		return resp.Text, nil
	}
	return w
}

// Write returns a title and script. It never fails: without a model it
// uses the built-in script, and on a model error a short fallback.
func (w *ScriptWriter) Write(ctx context.Context, topic *types.Topic) (title, script string) {
	w.journal.Info("Generating motivational script", creatorSource)

	if w.chat == nil {
		w.journal.Info("Cohere API not configured, using default script", creatorSource)
		return defaultTitle, defaultScript
	}

	reply, err := w.chat(ctx, buildPrompt(topic), scriptPreamble)
	if err == nil {
		title, script, err = parseScript(reply)
	}
	if err != nil {
		w.journal.Error(fmt.Sprintf("Failed to generate script: %v", err), creatorSource)
		return fallbackTitle, fallbackScript
	}

	w.journal.Success("Script generated", creatorSource)
	return title, script
}

func buildPrompt(topic *types.Topic) string {
	if topic == nil || topic.Title == "" {
		return scriptPrompt
	}
	var b strings.Builder
	b.WriteString(scriptPrompt)
	fmt.Fprintf(&b, "\n\nDraw inspiration from this story: %q.", topic.Title)
	if topic.Excerpt != "" {
		fmt.Fprintf(&b, "\nContext: %s", topic.Excerpt)
	}
	return b.String()
}

// parseScript splits a model reply into its title line and body
func parseScript(reply string) (string, string, error) {
	var lines []string
	for _, l := range strings.Split(reply, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return "", "", fmt.Errorf("empty script")
	}

	title := strings.TrimSpace(titlePrefix.ReplaceAllString(strings.TrimSpace(lines[0]), ""))
	script := strings.TrimSpace(strings.Join(lines[1:], "\n"))
	if script == "" {
		return "", "", fmt.Errorf("script has no body")
	}
	return title, script, nil
}
