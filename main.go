package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"contentbot/api"
	"contentbot/common"
	"contentbot/config"
	"contentbot/deduplication"
	"contentbot/journal"
	"contentbot/kafka"
	"contentbot/lock"
	"contentbot/scheduler"
	"contentbot/services"
	"contentbot/state"
	"contentbot/workflow"

	"github.com/joho/godotenv"
)

const (
	systemSource    = "System"
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to the YAML config file (optional)")
	port := flag.String("port", "", "HTTP port (overrides config and PORT)")
	cronSpec := flag.String("cron", "", "Cron schedule for automatic runs, e.g. \"0 9 * * *\"")
	once := flag.Bool("once", false, "Run the pipeline once and exit")
	flag.Parse()

	log.Println("🎬 Content Bot - Starting...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *cronSpec != "" {
		cfg.Schedule.Cron = *cronSpec
	}

	j := journal.New(filepath.Join(cfg.Paths.Logs, config.LogFile))
	st := state.NewManager(cfg.Paths.Data, cfg.Paths.Temp)
	if st.RecoveredStaleRun() {
		j.Info("Previous run did not finish; running flag reset", systemSource)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Printf("⚠️  Close failed: %v", err)
			}
		}
	}
	defer closeAll()

	var runnerOpts []workflow.RunnerOption
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewEventProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		if err != nil {
			log.Printf("⚠️  Kafka event producer disabled: %v", err)
		} else {
			closers = append(closers, producer)
			runnerOpts = append(runnerOpts, workflow.WithNotifier(producer))
		}
	}

	runner := workflow.NewRunner(st, j, buildStages(ctx, cfg, j, &closers), runnerOpts...)

	svcOpts := []workflow.ServiceOption{workflow.WithCronSecret(cfg.Schedule.Secret)}
	if cfg.Redis.Addr != "" {
		locker := lock.NewRedisLocker(lock.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.LockKey,
			TTL:      cfg.Redis.LockTTL,
		})
		closers = append(closers, locker)
		svcOpts = append(svcOpts, workflow.WithLocker(locker))
		log.Printf("🔒 Distributed run lock enabled (%s)", cfg.Redis.Addr)
	}
	svc := workflow.NewService(runner, st, j, svcOpts...)

	if *once {
		code := runOnce(ctx, svc)
		closeAll()
		os.Exit(code)
	}

	server := api.NewServer(svc, cfg.Server.Port)
	errc := server.Start()
	log.Println("📌 Endpoints:")
	log.Println("   POST /api/trigger  - Start a pipeline run")
	log.Println("   GET  /api/status   - Run state and recent activity")
	log.Println("   GET  /api/cron     - Scheduled trigger (Bearer secret)")
	log.Println("   GET  /health       - Health check")

	var sched *scheduler.Scheduler
	if cfg.Schedule.Cron != "" {
		sched = scheduler.New(svc, st)
		if err := sched.Start(cfg.Schedule.Cron); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		consumer, err := kafka.NewTriggerConsumer(cfg.Kafka.Brokers, cfg.Kafka.TriggerTopic, cfg.Kafka.GroupID, svc)
		if err != nil {
			log.Printf("⚠️  Kafka trigger consumer disabled: %v", err)
		} else {
			closers = append(closers, consumer)
			go func() {
				if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("⚠️  Kafka trigger consumer failed to start: %v", err)
				}
			}()
		}
	}

	select {
	case <-ctx.Done():
	case err := <-errc:
		if err != nil {
			log.Printf("❌ HTTP server error: %v", err)
		}
	}

	if sched != nil {
		<-sched.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  HTTP shutdown: %v", err)
	}
	waitForRuns(shutdownCtx, svc)
	log.Println("👋 Content Bot stopped")
}

// buildStages wires the real pipeline stages. Missing credentials disable
// the matching integration instead of failing startup.
func buildStages(ctx context.Context, cfg *config.Config, j *journal.Journal, closers *[]io.Closer) workflow.Stages {
	var topicOpts []services.TopicOption
	if cfg.Redis.Addr != "" && cfg.Script.TopicFeed != "" {
		filter, err := deduplication.NewRedisBloom(ctx, deduplication.BloomConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.TopicFilterKey,
		})
		if err != nil {
			log.Printf("⚠️  Topic filter disabled: %v", err)
		} else {
			*closers = append(*closers, filter)
			topicOpts = append(topicOpts, services.WithSeenFilter(filter))
		}
	}

	creator := services.NewCreator(j,
		services.NewScriptWriter(cfg.Script, j),
		services.NewTopicSource(cfg.Script.TopicFeed, cfg.Script.ExtractExcerpt, topicOpts...),
		services.NewVoiceover(cfg.Voice, j),
		services.NewAssembler(j),
	)

	var pubOpts []services.PublisherOption
	uploader, err := services.NewUploader(ctx, cfg.Upload)
	switch {
	case errors.Is(err, services.ErrNoCredentials):
		log.Println("ℹ️  YouTube credentials not set; uploads will be simulated")
	case err != nil:
		log.Printf("⚠️  YouTube uploader disabled: %v", err)
	default:
		pubOpts = append(pubOpts, services.WithUploader(uploader))
	}

	if cfg.Archive.Bucket != "" {
		archive, err := common.NewS3(ctx, common.S3Config{
			Bucket:       cfg.Archive.Bucket,
			Prefix:       cfg.Archive.Prefix,
			Region:       cfg.Archive.Region,
			Profile:      cfg.Archive.Profile,
			UsePathStyle: cfg.Archive.UsePathStyle,
		})
		if err != nil {
			log.Printf("⚠️  S3 archive disabled: %v", err)
		} else {
			pubOpts = append(pubOpts, services.WithArchive(archive))
			log.Printf("🗄️  Archiving runs to s3://%s", cfg.Archive.Bucket)
		}
	}

	return workflow.Stages{
		Fetcher:     services.NewDownloader(cfg.Media, j),
		Synthesizer: creator,
		Publisher:   services.NewPublisher(j, cfg.Upload.CategoryID, pubOpts...),
	}
}

// runOnce runs the pipeline synchronously and returns the exit code
func runOnce(ctx context.Context, svc *workflow.Service) int {
	res, err := svc.TriggerRun(ctx, workflow.OriginManual)
	if err != nil {
		log.Printf("❌ %s", res.Message)
		return 1
	}
	if err := res.Task.Err(); err != nil {
		log.Printf("❌ Run %s failed: %v", res.Task.ID(), err)
		return 1
	}
	log.Printf("✅ Run %s completed", res.Task.ID())
	return 0
}

func waitForRuns(ctx context.Context, svc *workflow.Service) {
	done := make(chan struct{})
	go func() {
		svc.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Println("⚠️  Shutdown timed out with a run still active; it will be reset on next start")
	}
}
