package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"contentbot/journal"
	"contentbot/types"

	"github.com/google/uuid"
)

const publisherSource = "YouTubePublisher"

// Archiver stores run artifacts outside the workspace
type Archiver interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PutFile(ctx context.Context, key, filePath, contentType string) error
}

// Publisher creates the thumbnail and metadata, uploads the video and
// optionally archives the artifacts
type Publisher struct {
	journal    *journal.Journal
	uploader   VideoUploader
	archive    Archiver
	categoryID string
	now        func() time.Time
	newID      func() string
}

// PublisherOption configures a Publisher
type PublisherOption func(*Publisher)

// WithUploader enables real uploads; without one uploads are simulated
func WithUploader(u VideoUploader) PublisherOption {
	return func(p *Publisher) { p.uploader = u }
}

// WithArchive copies every published run to a, best effort
func WithArchive(a Archiver) PublisherOption {
	return func(p *Publisher) { p.archive = a }
}

// NewPublisher creates a new publisher
func NewPublisher(j *journal.Journal, categoryID string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		journal:    j,
		categoryID: categoryID,
		now:        time.Now,
		newID:      simulatedID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish uploads the video and returns its URL. Upload problems degrade to
// a simulated URL; only local thumbnail failures are returned.
func (p *Publisher) Publish(ctx context.Context, video *types.CreatedVideo, workspace string) (string, error) {
	p.journal.Info("Starting YouTube publishing process", publisherSource)

	p.journal.Info("Creating thumbnail", publisherSource)
	thumbnailPath := filepath.Join(workspace, "thumbnail.png")
	if err := RenderThumbnail(video.Title, thumbnailPath); err != nil {
		p.journal.Error(fmt.Sprintf("YouTube publishing failed: %v", err), publisherSource)
		return "", err
	}
	p.journal.Success("Thumbnail created", publisherSource)

	p.journal.Info("Generating video metadata", publisherSource)
	metadata := GenerateMetadata(video.Title, video.Script, p.categoryID)

	url := p.upload(ctx, video.VideoPath, thumbnailPath, metadata)
	p.archiveRun(ctx, video, thumbnailPath, metadata, url)

	p.journal.Success(fmt.Sprintf("Video published: %s", url), publisherSource)
	return url, nil
}

func (p *Publisher) upload(ctx context.Context, videoPath, thumbnailPath string, metadata types.VideoMetadata) string {
	p.journal.Info("Uploading video to YouTube", publisherSource)

	if p.uploader == nil {
		p.journal.Info("YouTube API not configured, simulating upload", publisherSource)
		return WatchURL(p.newID())
	}

	videoID, err := p.uploader.UploadVideo(ctx, videoPath, metadata)
	if err != nil {
		p.journal.Error(fmt.Sprintf("Failed to upload to YouTube: %v", err), publisherSource)
		return WatchURL(p.newID()) + " (simulated)"
	}

	if err := p.uploader.SetThumbnail(ctx, videoID, thumbnailPath); err != nil {
		p.journal.Error(fmt.Sprintf("Failed to upload thumbnail: %v", err), publisherSource)
	} else {
		p.journal.Success("Thumbnail uploaded", publisherSource)
	}
	return WatchURL(videoID)
}

type archiveRecord struct {
	types.VideoMetadata
	URL         string    `json:"url"`
	Script      string    `json:"script"`
	PublishedAt time.Time `json:"publishedAt"`
}

// archiveRun copies the video, thumbnail and metadata under a
// timestamped prefix. Failures are logged and never fail the run.
func (p *Publisher) archiveRun(ctx context.Context, video *types.CreatedVideo, thumbnailPath string, metadata types.VideoMetadata, url string) {
	if p.archive == nil {
		return
	}

	at := p.now().UTC()
	dir := at.Format("2006-01-02T150405Z")

	record, err := json.MarshalIndent(archiveRecord{
		VideoMetadata: metadata,
		URL:           url,
		Script:        video.Script,
		PublishedAt:   at,
	}, "", "  ")
	if err != nil {
		p.journal.Error(fmt.Sprintf("Failed to archive run: %v", err), publisherSource)
		return
	}

	files := []struct {
		name        string
		path        string
		contentType string
	}{
		{FinalVideoName, video.VideoPath, "video/mp4"},
		{"thumbnail.png", thumbnailPath, "image/png"},
	}

	var failed []string
	for _, f := range files {
		if err := p.archive.PutFile(ctx, dir+"/"+f.name, f.path, f.contentType); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", f.name, err))
		}
	}
	if err := p.archive.Put(ctx, dir+"/metadata.json", record, "application/json"); err != nil {
		failed = append(failed, fmt.Sprintf("metadata.json: %v", err))
	}
	if len(failed) > 0 {
		p.journal.Error(fmt.Sprintf("Failed to archive run: %s", strings.Join(failed, "; ")), publisherSource)
		return
	}
	p.journal.Info(fmt.Sprintf("Archived run to %s", dir), publisherSource)
}

func simulatedID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:11]
}
