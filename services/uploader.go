package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"contentbot/config"
	"contentbot/types"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// ErrNoCredentials is returned when no YouTube credentials are configured
var ErrNoCredentials = errors.New("youtube credentials not configured")

// VideoUploader publishes a video file and its thumbnail
type VideoUploader interface {
	UploadVideo(ctx context.Context, videoPath string, metadata types.VideoMetadata) (string, error)
	SetThumbnail(ctx context.Context, videoID, thumbnailPath string) error
}

// Uploader talks to the YouTube Data API v3
type Uploader struct {
	service       *youtube.Service
	privacyStatus string
}

// NewUploader authenticates with a refresh token when one is configured,
// otherwise with a service account file
func NewUploader(ctx context.Context, cfg config.UploadConfig) (*Uploader, error) {
	ts, err := tokenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	service, err := youtube.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}

	privacy := cfg.PrivacyStatus
	if privacy == "" {
		privacy = config.YouTubePrivacyStatus
	}
	return &Uploader{service: service, privacyStatus: privacy}, nil
}

func tokenSource(ctx context.Context, cfg config.UploadConfig) (oauth2.TokenSource, error) {
	switch {
	case cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != "":
		conf := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
		}
		return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken}), nil

	case cfg.ServiceAccountFile != "":
		data, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account file: %w", err)
		}
		jwt, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account: %w", err)
		}
		return jwt.TokenSource(ctx), nil
	}
	return nil, ErrNoCredentials
}

// UploadVideo uploads the file and returns the new video ID
func (u *Uploader) UploadVideo(ctx context.Context, videoPath string, metadata types.VideoMetadata) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat video file: %w", err)
	}

	log.Printf("📤 Uploading: %s (%.2f MB)", videoPath, float64(fileInfo.Size())/(1024*1024))

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       metadata.Title,
			Description: metadata.Description,
			Tags:        metadata.Tags,
			CategoryId:  metadata.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           u.privacyStatus,
			SelfDeclaredMadeForKids: false,
		},
	}

	call := u.service.Videos.Insert([]string{"snippet", "status"}, video)
	call = call.Media(file).Context(ctx)

	response, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	log.Printf("✅ Uploaded! %s", WatchURL(response.Id))
	return response.Id, nil
}

// SetThumbnail attaches a custom thumbnail to an uploaded video
func (u *Uploader) SetThumbnail(ctx context.Context, videoID, thumbnailPath string) error {
	file, err := os.Open(thumbnailPath)
	if err != nil {
		return fmt.Errorf("failed to open thumbnail: %w", err)
	}
	defer file.Close()

	if _, err := u.service.Thumbnails.Set(videoID).Media(file).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to set thumbnail: %w", err)
	}
	return nil
}

// WatchURL returns the public URL of a video
func WatchURL(videoID string) string {
	return "https://youtube.com/watch?v=" + videoID
}
