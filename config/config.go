package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration of the content bot.
// Secrets are usually supplied through the environment rather than the file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Paths    PathsConfig    `yaml:"paths"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Media    MediaConfig    `yaml:"media"`
	Script   ScriptConfig   `yaml:"script"`
	Voice    VoiceConfig    `yaml:"voice"`
	Upload   UploadConfig   `yaml:"upload"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type PathsConfig struct {
	Data string `yaml:"data"`
	Logs string `yaml:"logs"`
	Temp string `yaml:"temp"`
}

type ScheduleConfig struct {
	// Cron is a standard 5-field cron expression; empty disables the scheduler
	Cron   string `yaml:"cron"`
	Secret string `yaml:"secret"`
}

type MediaConfig struct {
	PexelsAPIKey  string   `yaml:"pexels_api_key"`
	PixabayAPIKey string   `yaml:"pixabay_api_key"`
	Topics        []string `yaml:"topics"`
	MusicQuery    string   `yaml:"music_query"`
}

type ScriptConfig struct {
	CohereAPIKey   string  `yaml:"cohere_api_key"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	TopicFeed      string  `yaml:"topic_feed"`
	ExtractExcerpt bool    `yaml:"extract_excerpt"`
}

type VoiceConfig struct {
	OpenAIAPIKey string `yaml:"openai_api_key"`
	Model        string `yaml:"model"`
	Voice        string `yaml:"voice"`
}

type UploadConfig struct {
	ClientID           string `yaml:"client_id"`
	ClientSecret       string `yaml:"client_secret"`
	RefreshToken       string `yaml:"refresh_token"`
	ServiceAccountFile string `yaml:"service_account_file"`
	CategoryID         string `yaml:"category_id"`
	PrivacyStatus      string `yaml:"privacy_status"`
}

type ArchiveConfig struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Profile      string `yaml:"profile"`
	Prefix       string `yaml:"prefix"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	TriggerTopic string   `yaml:"trigger_topic"`
	EventsTopic  string   `yaml:"events_topic"`
	GroupID      string   `yaml:"group_id"`
}

type RedisConfig struct {
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	LockKey        string        `yaml:"lock_key"`
	LockTTL        time.Duration `yaml:"lock_ttl"`
	TopicFilterKey string        `yaml:"topic_filter_key"`
}

// Default returns the configuration used when no file or env overrides exist
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "3000"},
		Paths: PathsConfig{
			Data: DataDir,
			Logs: LogsDir,
			Temp: TempDir,
		},
		Media: MediaConfig{
			Topics:     []string{"nature", "ocean", "mountains", "sunset", "space", "clouds", "forest"},
			MusicQuery: "inspirational music",
		},
		Script: ScriptConfig{
			Model:       "command-r-plus",
			Temperature: 0.8,
		},
		Voice: VoiceConfig{
			Model: "tts-1",
			Voice: "onyx",
		},
		Upload: UploadConfig{
			CategoryID:    YouTubeCategoryID,
			PrivacyStatus: YouTubePrivacyStatus,
		},
		Kafka: KafkaConfig{
			TriggerTopic: "pipeline-trigger-requests",
			EventsTopic:  "pipeline-run-events",
			GroupID:      "contentbot-trigger-group",
		},
		Redis: RedisConfig{
			LockKey:        "contentbot:pipeline:lock",
			LockTTL:        DefaultLockTTL,
			TopicFilterKey: "contentbot:topics:bloom",
		},
	}
}

// Load reads the YAML file at path (a missing file is fine), then applies
// environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	overrideString(&c.Server.Port, "PORT")
	overrideString(&c.Paths.Data, "DATA_DIR")
	overrideString(&c.Paths.Logs, "LOGS_DIR")
	overrideString(&c.Paths.Temp, "TEMP_DIR")
	overrideString(&c.Schedule.Cron, "CRON_SCHEDULE")
	overrideString(&c.Schedule.Secret, "CRON_SECRET")

	overrideString(&c.Media.PexelsAPIKey, "PEXELS_API_KEY")
	overrideString(&c.Media.PixabayAPIKey, "PIXABAY_API_KEY")

	overrideString(&c.Script.CohereAPIKey, "COHERE_API_KEY")
	overrideString(&c.Script.Model, "COHERE_MODEL")
	overrideString(&c.Script.TopicFeed, "TOPIC_FEED")
	if err := overrideBool(&c.Script.ExtractExcerpt, "TOPIC_EXTRACT_EXCERPT"); err != nil {
		return err
	}

	overrideString(&c.Voice.OpenAIAPIKey, "OPENAI_API_KEY")

	overrideString(&c.Upload.ClientID, "YOUTUBE_CLIENT_ID")
	overrideString(&c.Upload.ClientSecret, "YOUTUBE_CLIENT_SECRET")
	overrideString(&c.Upload.RefreshToken, "YOUTUBE_REFRESH_TOKEN")
	overrideString(&c.Upload.ServiceAccountFile, "YOUTUBE_SERVICE_ACCOUNT_FILE")

	overrideString(&c.Archive.Bucket, "S3_BUCKET")
	overrideString(&c.Archive.Region, "S3_REGION")
	overrideString(&c.Archive.Profile, "S3_PROFILE")
	overrideString(&c.Archive.Prefix, "S3_PREFIX")
	if err := overrideBool(&c.Archive.UsePathStyle, "S3_USE_PATH_STYLE"); err != nil {
		return err
	}

	if v := strings.TrimSpace(os.Getenv("KAFKA_BOOTSTRAP_SERVERS")); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	overrideString(&c.Kafka.TriggerTopic, "KAFKA_TRIGGER_TOPIC")
	overrideString(&c.Kafka.EventsTopic, "KAFKA_EVENTS_TOPIC")
	overrideString(&c.Kafka.GroupID, "KAFKA_CONSUMER_GROUP_ID")

	overrideString(&c.Redis.Addr, "REDIS_ADDR")
	overrideString(&c.Redis.Password, "REDIS_PASS")
	overrideString(&c.Redis.LockKey, "REDIS_LOCK_KEY")
	overrideString(&c.Redis.TopicFilterKey, "BLOOM_KEY")
	if v, ok := os.LookupEnv("REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse REDIS_DB: %w", err)
		}
		c.Redis.DB = db
	}
	if v, ok := os.LookupEnv("REDIS_LOCK_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse REDIS_LOCK_TTL: %w", err)
		}
		c.Redis.LockTTL = d
	}
	return nil
}

func overrideString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func overrideBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = b
	return nil
}
