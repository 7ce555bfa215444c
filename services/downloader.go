package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"contentbot/config"
	"contentbot/journal"
	"contentbot/types"
)

const downloaderSource = "Downloader"

const (
	pexelsSearchURL  = "https://api.pexels.com/videos/search"
	pixabaySearchURL = "https://pixabay.com/api/"

	placeholderVideo = "PLACEHOLDER_VIDEO"
	placeholderMusic = "PLACEHOLDER_MUSIC"
)

// Downloader fetches copyright-free stock clips and background music.
// Any upstream problem degrades to placeholder files; only local write
// failures are returned.
type Downloader struct {
	journal    *journal.Journal
	pexelsKey  string
	pixabayKey string
	topics     []string
	musicQuery string

	client     *http.Client
	pexelsURL  string
	pixabayURL string
	pick       func(n int) int
}

// NewDownloader creates a new media downloader
func NewDownloader(cfg config.MediaConfig, j *journal.Journal) *Downloader {
	topics := cfg.Topics
	if len(topics) == 0 {
		topics = config.Default().Media.Topics
	}
	musicQuery := cfg.MusicQuery
	if musicQuery == "" {
		musicQuery = config.Default().Media.MusicQuery
	}
	return &Downloader{
		journal:    j,
		pexelsKey:  cfg.PexelsAPIKey,
		pixabayKey: cfg.PixabayAPIKey,
		topics:     topics,
		musicQuery: musicQuery,
		client:     &http.Client{},
		pexelsURL:  pexelsSearchURL,
		pixabayURL: pixabaySearchURL,
		pick:       rand.IntN,
	}
}

// Fetch downloads the clips and music for one run into workspace
func (d *Downloader) Fetch(ctx context.Context, workspace string) (*types.DownloadedMedia, error) {
	d.journal.Info("Starting download process", downloaderSource)

	videos, err := d.downloadVideos(ctx, workspace)
	if err != nil {
		d.journal.Error(fmt.Sprintf("Download failed: %v", err), downloaderSource)
		return nil, err
	}

	music, err := d.downloadMusic(ctx, workspace)
	if err != nil {
		d.journal.Error(fmt.Sprintf("Download failed: %v", err), downloaderSource)
		return nil, err
	}

	d.journal.Success("All media downloaded successfully", downloaderSource)
	return &types.DownloadedMedia{Videos: videos, Music: music}, nil
}

type pexelsResponse struct {
	Videos []struct {
		VideoFiles []struct {
			Quality string `json:"quality"`
			Link    string `json:"link"`
		} `json:"video_files"`
	} `json:"videos"`
}

func (d *Downloader) downloadVideos(ctx context.Context, workspace string) ([]string, error) {
	d.journal.Info("Searching for copyright-free videos", downloaderSource)

	if d.pexelsKey == "" {
		d.journal.Info("Pexels API key not found, creating placeholder videos", downloaderSource)
		return d.placeholderVideos(workspace)
	}

	topic := d.topics[d.pick(len(d.topics))]
	videos, err := d.searchPexels(ctx, topic, workspace)
	if err != nil {
		d.journal.Error(fmt.Sprintf("Failed to download from Pexels: %v", err), downloaderSource)
		return d.placeholderVideos(workspace)
	}
	if len(videos) == 0 {
		return d.placeholderVideos(workspace)
	}
	return videos, nil
}

func (d *Downloader) searchPexels(ctx context.Context, topic, workspace string) ([]string, error) {
	q := url.Values{}
	q.Set("query", topic)
	q.Set("per_page", fmt.Sprint(config.ClipCount))
	q.Set("orientation", "landscape")

	var parsed pexelsResponse
	headers := map[string]string{"Authorization": d.pexelsKey}
	if err := d.getJSON(ctx, d.pexelsURL+"?"+q.Encode(), headers, &parsed); err != nil {
		return nil, err
	}

	var videos []string
	for i, v := range parsed.Videos {
		if i >= config.ClipCount {
			break
		}
		link := ""
		for _, f := range v.VideoFiles {
			if f.Quality == "hd" || f.Quality == "sd" {
				link = f.Link
				break
			}
		}
		if link == "" {
			continue
		}

		filePath := filepath.Join(workspace, fmt.Sprintf("video_%d.mp4", i+1))
		if err := d.downloadFile(ctx, link, filePath); err != nil {
			return nil, err
		}
		videos = append(videos, filePath)
		d.journal.Info(fmt.Sprintf("Downloaded video %d/%d", i+1, config.ClipCount), downloaderSource)
	}
	return videos, nil
}

type pixabayResponse struct {
	Hits []struct {
		PreviewURL string `json:"previewURL"`
		URL        string `json:"url"`
	} `json:"hits"`
}

func (d *Downloader) downloadMusic(ctx context.Context, workspace string) (string, error) {
	d.journal.Info("Searching for copyright-free music", downloaderSource)

	if d.pixabayKey == "" {
		d.journal.Info("Pixabay API key not found, creating placeholder music", downloaderSource)
		return d.placeholderMusic(workspace)
	}

	q := url.Values{}
	q.Set("key", d.pixabayKey)
	q.Set("q", d.musicQuery)
	q.Set("audio_type", "music")

	var parsed pixabayResponse
	if err := d.getJSON(ctx, d.pixabayURL+"?"+q.Encode(), nil, &parsed); err != nil {
		d.journal.Error(fmt.Sprintf("Failed to download music: %v", err), downloaderSource)
		return d.placeholderMusic(workspace)
	}
	if len(parsed.Hits) == 0 {
		return d.placeholderMusic(workspace)
	}

	audioURL := parsed.Hits[0].PreviewURL
	if audioURL == "" {
		audioURL = parsed.Hits[0].URL
	}

	filePath := filepath.Join(workspace, "background_music.mp3")
	if err := d.downloadFile(ctx, audioURL, filePath); err != nil {
		d.journal.Error(fmt.Sprintf("Failed to download music: %v", err), downloaderSource)
		return d.placeholderMusic(workspace)
	}
	d.journal.Success("Music downloaded", downloaderSource)
	return filePath, nil
}

func (d *Downloader) getJSON(ctx context.Context, rawURL string, headers map[string]string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, config.SearchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("search failed: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (d *Downloader) downloadFile(ctx context.Context, rawURL, filePath string) error {
	ctx, cancel := context.WithTimeout(ctx, config.DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download: status %d", resp.StatusCode)
	}

	out, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

func (d *Downloader) placeholderVideos(workspace string) ([]string, error) {
	d.journal.Info("Creating placeholder video files", downloaderSource)

	videos := make([]string, 0, config.ClipCount)
	for i := 1; i <= config.ClipCount; i++ {
		filePath := filepath.Join(workspace, fmt.Sprintf("video_%d.mp4", i))
		if err := os.WriteFile(filePath, []byte(placeholderVideo), 0o644); err != nil {
			return nil, fmt.Errorf("write placeholder video: %w", err)
		}
		videos = append(videos, filePath)
	}
	return videos, nil
}

func (d *Downloader) placeholderMusic(workspace string) (string, error) {
	d.journal.Info("Creating placeholder music file", downloaderSource)

	filePath := filepath.Join(workspace, "background_music.mp3")
	if err := os.WriteFile(filePath, []byte(placeholderMusic), 0o644); err != nil {
		return "", fmt.Errorf("write placeholder music: %w", err)
	}
	return filePath, nil
}
