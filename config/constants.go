package config

import "time"

// Run control constants
const (
	// LogRetentionDays is how long activity log entries are kept after each run
	LogRetentionDays = 7

	// StatusLogLimit is the number of recent log entries returned with the status
	StatusLogLimit = 50

	// DefaultLockTTL bounds how long a distributed run lock survives a crashed holder
	DefaultLockTTL = 2 * time.Hour
)

// Video Output Constants
const (
	// VideoWidth is the output video width (16:9 landscape)
	VideoWidth = 1920

	// VideoHeight is the output video height (16:9 landscape)
	VideoHeight = 1080

	// VideoCodec is the video encoding codec
	VideoCodec = "libx264"

	// AudioCodec is the audio encoding codec
	AudioCodec = "aac"

	// AudioBitrate is the audio quality bitrate
	AudioBitrate = "192k"

	// VideoPreset is the ffmpeg encoding speed preset
	VideoPreset = "fast"

	// MusicVolume is the background music gain under the voiceover
	MusicVolume = 0.2

	// ThumbnailWidth and ThumbnailHeight size the generated thumbnail
	ThumbnailWidth  = 1280
	ThumbnailHeight = 720
)

// Media download constants
const (
	// ClipCount is the number of stock clips fetched per run
	ClipCount = 3

	// SearchTimeout bounds stock media search requests
	SearchTimeout = 30 * time.Second

	// DownloadTimeout bounds stock media file downloads
	DownloadTimeout = 60 * time.Second
)

// Directory Constants
const (
	// DataDir holds the persisted run state
	DataDir = "data"

	// LogsDir holds the append-only activity log
	LogsDir = "logs"

	// TempDir is the reusable per-run workspace
	TempDir = "temp"

	// StateFile is the run state file name inside DataDir
	StateFile = "state.json"

	// LogFile is the activity log file name inside LogsDir
	LogFile = "system.log"
)

// YouTube Constants
const (
	// YouTubeCategoryID for People & Blogs
	YouTubeCategoryID = "22"

	// YouTubePrivacyStatus sets video visibility
	YouTubePrivacyStatus = "public"

	// DescriptionExcerptLength is how much of the script opens the description
	DescriptionExcerptLength = 300
)
