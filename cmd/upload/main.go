package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"contentbot/config"
	"contentbot/services"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to the YAML config file (optional)")
	videoPath := flag.String("video", "", "Path to the MP4 file to upload")
	title := flag.String("title", "", "Title for the YouTube video (defaults to filename)")
	script := flag.String("script", "", "Script text used to build the description (optional)")
	thumbnail := flag.Bool("thumbnail", true, "Render and set a gradient thumbnail")
	flag.Parse()

	if *videoPath == "" {
		flag.Usage()
		log.Fatal("--video is required")
	}
	if err := ensureFileExists(*videoPath); err != nil {
		log.Fatalf("invalid video path: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	titleVal := strings.TrimSpace(*title)
	if titleVal == "" {
		filename := filepath.Base(*videoPath)
		titleVal = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	ctx := context.Background()
	uploader, err := services.NewUploader(ctx, cfg.Upload)
	if err != nil {
		log.Fatalf("failed to initialize uploader: %v", err)
	}

	metadata := services.GenerateMetadata(titleVal, *script, cfg.Upload.CategoryID)
	videoID, err := uploader.UploadVideo(ctx, *videoPath, metadata)
	if err != nil {
		log.Fatalf("upload failed: %v", err)
	}
	log.Printf("Uploaded successfully! %s", services.WatchURL(videoID))

	if !*thumbnail {
		return
	}
	thumbPath := filepath.Join(os.TempDir(), videoID+"-thumbnail.png")
	defer os.Remove(thumbPath)
	if err := services.RenderThumbnail(titleVal, thumbPath); err != nil {
		log.Fatalf("thumbnail failed: %v", err)
	}
	if err := uploader.SetThumbnail(ctx, videoID, thumbPath); err != nil {
		log.Fatalf("set thumbnail failed: %v", err)
	}
	log.Println("Thumbnail set")
}

func ensureFileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, expected file: %s", path)
	}
	return nil
}
