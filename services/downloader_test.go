package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"contentbot/config"
	"contentbot/journal"
)

func testJournal(t *testing.T) *journal.Journal {
	t.Helper()
	return journal.New(filepath.Join(t.TempDir(), "logs", "system.log"), journal.WithoutEcho())
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestFetchWithoutKeysWritesPlaceholders(t *testing.T) {
	workspace := t.TempDir()
	d := NewDownloader(config.Default().Media, testJournal(t))

	media, err := d.Fetch(context.Background(), workspace)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(media.Videos) != 3 {
		t.Fatalf("videos = %v; want 3 placeholders", media.Videos)
	}
	for i, v := range media.Videos {
		if filepath.Base(v) != fmt.Sprintf("video_%d.mp4", i+1) {
			t.Fatalf("unexpected video name %s", v)
		}
		if readFile(t, v) != placeholderVideo {
			t.Fatalf("video %s is not a placeholder", v)
		}
	}
	if filepath.Base(media.Music) != "background_music.mp3" || readFile(t, media.Music) != placeholderMusic {
		t.Fatalf("unexpected music %s", media.Music)
	}
}

func newStockServer(t *testing.T, pexelsStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/videos/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "pexels-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if pexelsStatus != http.StatusOK {
			w.WriteHeader(pexelsStatus)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"videos": []any{
				map[string]any{"video_files": []any{
					map[string]string{"quality": "uhd", "link": srv.URL + "/files/uhd.mp4"},
					map[string]string{"quality": "hd", "link": srv.URL + "/files/a.mp4"},
				}},
				map[string]any{"video_files": []any{
					map[string]string{"quality": "sd", "link": srv.URL + "/files/b.mp4"},
				}},
			},
		})
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" || r.URL.Query().Get("audio_type") != "music" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"hits": []any{map[string]string{"previewURL": srv.URL + "/files/music.mp3"}},
		})
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "media:%s", filepath.Base(r.URL.Path))
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func stockDownloader(t *testing.T, srv *httptest.Server) *Downloader {
	cfg := config.Default().Media
	cfg.PexelsAPIKey = "pexels-key"
	cfg.PixabayAPIKey = "pixabay-key"
	d := NewDownloader(cfg, testJournal(t))
	d.pexelsURL = srv.URL + "/videos/search"
	d.pixabayURL = srv.URL + "/api/"
	d.pick = func(int) int { return 0 }
	return d
}

func TestFetchDownloadsStockMedia(t *testing.T) {
	srv := newStockServer(t, http.StatusOK)
	workspace := t.TempDir()
	d := stockDownloader(t, srv)

	media, err := d.Fetch(context.Background(), workspace)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(media.Videos) != 2 {
		t.Fatalf("videos = %v; want 2", media.Videos)
	}
	if got := readFile(t, media.Videos[0]); got != "media:a.mp4" {
		t.Fatalf("first clip = %q; want hd file", got)
	}
	if got := readFile(t, media.Videos[1]); got != "media:b.mp4" {
		t.Fatalf("second clip = %q; want sd file", got)
	}
	if got := readFile(t, media.Music); got != "media:music.mp3" {
		t.Fatalf("music = %q", got)
	}
}

func TestFetchFallsBackOnUpstreamError(t *testing.T) {
	srv := newStockServer(t, http.StatusInternalServerError)
	workspace := t.TempDir()
	d := stockDownloader(t, srv)

	media, err := d.Fetch(context.Background(), workspace)
	if err != nil {
		t.Fatalf("upstream errors must not fail the stage: %v", err)
	}
	if len(media.Videos) != 3 || readFile(t, media.Videos[0]) != placeholderVideo {
		t.Fatalf("expected placeholder videos, got %v", media.Videos)
	}
	if readFile(t, media.Music) != "media:music.mp3" {
		t.Fatalf("music should still download")
	}
}

func TestFetchPropagatesLocalWriteFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	d := NewDownloader(config.Default().Media, testJournal(t))

	if _, err := d.Fetch(context.Background(), missing); err == nil {
		t.Fatalf("expected error writing into a missing workspace")
	}
}
