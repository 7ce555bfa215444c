package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"contentbot/types"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAssembleWritesManifest(t *testing.T) {
	cases := []struct {
		name      string
		hasFFmpeg bool
		content   string
	}{
		{"no ffmpeg", false, "real-bytes"},
		{"placeholder media", true, placeholderVideo},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			workspace := t.TempDir()
			media := &types.DownloadedMedia{
				Videos: []string{writeTestFile(t, workspace, "video_1.mp4", c.content)},
				Music:  writeTestFile(t, workspace, "background_music.mp3", placeholderMusic),
			}
			voice := writeTestFile(t, workspace, "voiceover.mp3", placeholderVoiceover)

			stamp := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
			a := NewAssembler(testJournal(t))
			a.hasFFmpeg = func() bool { return c.hasFFmpeg }
			a.now = func() time.Time { return stamp }

			out, err := a.Assemble(context.Background(), media, voice, workspace)
			if err != nil {
				t.Fatalf("Assemble error: %v", err)
			}
			if filepath.Base(out) != FinalVideoName {
				t.Fatalf("output = %s", out)
			}

			var m Manifest
			if err := json.Unmarshal([]byte(readFile(t, out)), &m); err != nil {
				t.Fatalf("manifest is not JSON: %v", err)
			}
			if len(m.Videos) != 1 || m.Music != media.Music || m.Voiceover != voice {
				t.Fatalf("unexpected manifest: %+v", m)
			}
			if m.Timestamp != stamp.Format(time.RFC3339Nano) {
				t.Fatalf("timestamp = %q", m.Timestamp)
			}
		})
	}
}

func TestAssembleManifestWriteFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	a := NewAssembler(testJournal(t))
	a.hasFFmpeg = func() bool { return false }

	if _, err := a.Assemble(context.Background(), &types.DownloadedMedia{}, "", missing); err == nil {
		t.Fatalf("expected write error")
	}
}

func TestIsRealMedia(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		path string
		want bool
	}{
		{"placeholder video", writeTestFile(t, dir, "a.mp4", placeholderVideo), false},
		{"placeholder voice", writeTestFile(t, dir, "b.mp3", placeholderVoiceover), false},
		{"real", writeTestFile(t, dir, "c.mp4", "\x00\x00\x00\x18ftypmp42"), true},
		{"short real", writeTestFile(t, dir, "d.mp3", "ID3"), true},
		{"empty", writeTestFile(t, dir, "e.mp3", ""), false},
		{"missing", filepath.Join(dir, "nope.mp4"), false},
	}
	for _, c := range cases {
		if got := isRealMedia(c.path); got != c.want {
			t.Errorf("%s: isRealMedia = %v; want %v", c.name, got, c.want)
		}
	}
}
