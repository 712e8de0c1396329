// Package main 章节生成执行器入口（gen-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"inkwell-book-api/internal/application/generation"
	"inkwell-book-api/internal/config"
	"inkwell-book-api/internal/infrastructure/llm"
	"inkwell-book-api/internal/infrastructure/messaging"
	"inkwell-book-api/internal/infrastructure/persistence/postgres"
	"inkwell-book-api/internal/infrastructure/persistence/redis"
	"inkwell-book-api/internal/infrastructure/power"
	"inkwell-book-api/pkg/logger"
	"inkwell-book-api/pkg/tracer"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "gen-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to init postgres", err)
	}
	defer func() { _ = pgClient.Close() }()

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", err)
	}
	defer func() { _ = redisClient.Close() }()

	txManager := postgres.NewTxManager(pgClient)
	projectRepo := postgres.NewProjectRepository(pgClient)
	chapterRepo := postgres.NewChapterRepository(pgClient)
	sourceRepo := postgres.NewSourceMaterialRepository(pgClient)
	jobRepo := postgres.NewJobRepository(pgClient)

	producer := messaging.NewProducer(redisClient.Redis(), cfg.Messaging.RedisStream.MaxLen)
	notifier := messaging.NewStreamNotifier(producer)

	factory := llm.NewEinoFactory(cfg)
	generator := llm.NewChapterGenerator(factory, cfg.LLM.DefaultProvider)

	pipeline := generation.NewPipeline(generation.PipelineOptions{
		Projects: projectRepo,
		Chapters: chapterRepo,
		Sources:  sourceRepo,
		Jobs:     jobRepo,

		Generator:  generator,
		Reconciler: generation.NewReconciler(chapterRepo, txManager),
		Retry: generation.NewRetryPolicy(
			cfg.Generation.MaxAttempts,
			cfg.Generation.BackoffBase,
			generation.NewDefaultClassifier(),
		),
		Guard:    generation.NewGuard(),
		Notifier: notifier,
		WakeLock: power.NewSystemdCoordinator(cfg.WakeLock.Enabled),
		Cache:    redis.NewCache(redisClient),

		ChapterTimeout: cfg.Generation.ChapterTimeout,
	})

	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamBookGen,
		Group:        messaging.ConsumerGroupBookWorker,
		ConsumerName: hostnameConsumerName(),
		BlockTimeout: cfg.Messaging.RedisStream.BlockTimeout,
		RetryLimit:   cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})

	consumer.RegisterHandler("chapter_run", func(msgCtx context.Context, msg *messaging.Message) error {
		var payload messaging.GenerationRunMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}
		return pipeline.Run(msgCtx, payload.JobID)
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := consumer.Start(runCtx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}
	go consumer.MonitorDLQ(runCtx, 100)

	log := logger.FromContext(ctx)
	log.Info("gen-worker started", "consumer", hostnameConsumerName())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("gen-worker shutting down")
	cancel()
	consumer.Stop()
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
