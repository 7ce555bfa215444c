package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"contentbot/config"
	"contentbot/journal"
	"contentbot/types"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FinalVideoName is the assembled output inside the workspace
const FinalVideoName = "final_video.mp4"

// Manifest describes the inputs of a run when no real encode is possible
type Manifest struct {
	Videos    []string `json:"videos"`
	Music     string   `json:"music"`
	Voiceover string   `json:"voiceover"`
	Timestamp string   `json:"timestamp"`
}

// Assembler combines clips, music and voiceover into the final video
type Assembler struct {
	journal *journal.Journal
	// hasFFmpeg reports whether the ffmpeg binary can be used
	hasFFmpeg func() bool
	now       func() time.Time
}

// NewAssembler creates a new assembler
func NewAssembler(j *journal.Journal) *Assembler {
	return &Assembler{
		journal: j,
		hasFFmpeg: func() bool {
			_, err := exec.LookPath("ffmpeg")
			return err == nil
		},
		now: time.Now,
	}
}

// Assemble writes final_video.mp4 into workspace. With ffmpeg and real media
// it encodes the video; otherwise, or if the encode fails, it writes a JSON
// manifest of the inputs under the same name.
func (a *Assembler) Assemble(ctx context.Context, media *types.DownloadedMedia, voiceover, workspace string) (string, error) {
	a.journal.Info("Combining media files", creatorSource)
	out := filepath.Join(workspace, FinalVideoName)

	if a.hasFFmpeg() && allRealMedia(media.Videos...) && allRealMedia(voiceover) {
		err := a.encode(ctx, media, voiceover, out)
		if err == nil {
			a.journal.Success("Media combined into final video", creatorSource)
			return out, nil
		}
		a.journal.Error(fmt.Sprintf("ffmpeg failed, writing manifest instead: %v", err), creatorSource)
	}

	if err := a.writeManifest(media, voiceover, out); err != nil {
		return "", err
	}
	a.journal.Success("Media combined into final video", creatorSource)
	return out, nil
}

// encode concatenates the clips scaled to the output size and mixes the
// voiceover over the background music
func (a *Assembler) encode(ctx context.Context, media *types.DownloadedMedia, voiceover, out string) error {
	clips := make([]*ffmpeg.Stream, 0, len(media.Videos))
	for _, v := range media.Videos {
		clip := ffmpeg.Input(v).Video().
			Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:%d", config.VideoWidth, config.VideoHeight)}).
			Filter("setsar", ffmpeg.Args{"1"})
		clips = append(clips, clip)
	}
	video := ffmpeg.Concat(clips, ffmpeg.KwArgs{"v": 1, "a": 0})

	audio := ffmpeg.Input(voiceover).Audio()
	if allRealMedia(media.Music) {
		music := ffmpeg.Input(media.Music).Audio().
			Filter("volume", ffmpeg.Args{fmt.Sprintf("%.2f", config.MusicVolume)})
		audio = ffmpeg.Filter([]*ffmpeg.Stream{audio, music}, "amix", ffmpeg.Args{}, ffmpeg.KwArgs{
			"inputs":   2,
			"duration": "first",
		})
	}

	compiled := ffmpeg.Output([]*ffmpeg.Stream{video, audio}, out, ffmpeg.KwArgs{
		"c:v":      config.VideoCodec,
		"c:a":      config.AudioCodec,
		"b:a":      config.AudioBitrate,
		"preset":   config.VideoPreset,
		"shortest": "",
	}).OverWriteOutput().Compile()

	// Rebind to ctx so a cancelled run stops the encode
	cmd := exec.CommandContext(ctx, compiled.Path, compiled.Args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

func (a *Assembler) writeManifest(media *types.DownloadedMedia, voiceover, out string) error {
	manifest := Manifest{
		Videos:    media.Videos,
		Music:     media.Music,
		Voiceover: voiceover,
		Timestamp: a.now().UTC().Format(time.RFC3339Nano),
	}
	if manifest.Videos == nil {
		manifest.Videos = []string{}
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// allRealMedia reports whether every path holds real media rather than a
// placeholder written by a degraded stage
func allRealMedia(paths ...string) bool {
	if len(paths) == 0 {
		return false
	}
	for _, p := range paths {
		if !isRealMedia(p) {
			return false
		}
	}
	return true
}

func isRealMedia(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, len("PLACEHOLDER_"))
	n, err := io.ReadFull(f, head)
	if err != nil && n == 0 {
		return false
	}
	return !bytes.HasPrefix(head[:n], []byte("PLACEHOLDER_"))
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
