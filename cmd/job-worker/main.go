// Package main 异步生成执行器入口（job-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sitepilot-api/internal/application/generation"
	"sitepilot-api/internal/application/pipeline"
	"sitepilot-api/internal/config"
	"sitepilot-api/internal/infrastructure/llm"
	"sitepilot-api/internal/infrastructure/messaging"
	"sitepilot-api/internal/infrastructure/notify"
	"sitepilot-api/internal/infrastructure/persistence/postgres"
	"sitepilot-api/internal/infrastructure/persistence/redis"
	"sitepilot-api/internal/workflow/chain"
	"sitepilot-api/pkg/logger"
	"sitepilot-api/pkg/tracer"

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
		ServiceName: "job-worker",
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

	txMgr := postgres.NewTxManager(pgClient)
	projectRepo := postgres.NewProjectRepository(pgClient)
	runRepo := postgres.NewRunRepository(pgClient)
	snapshotRepo := postgres.NewSnapshotRepository(pgClient)

	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	producer := messaging.NewProducer(redisClient.Redis(), int64(maxLen))
	runQueue := messaging.NewRunQueue(producer)
	notifier := notify.NewStreamNotifier(producer)

	factory := llm.NewEinoFactory(cfg)
	generator := generation.NewLLMGenerator(
		chain.NewSiteStepChain(factory),
		chain.NewClarifyChain(factory),
		cfg,
	)

	pipelineSvc := pipeline.NewService(
		projectRepo, runRepo, snapshotRepo, txMgr,
		generator, runQueue, notifier,
		cfg.Pipeline.DesignStepEnabled,
	)

	genConsumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamGenRuns,
		Group:        messaging.ConsumerGroupGenWorker,
		ConsumerName: hostnameConsumerName(),
		BlockTimeout: cfg.Messaging.RedisStream.BlockTimeout,
		RetryLimit:   cfg.Messaging.RedisStream.RetryLimit,
		Backoff:      messaging.DefaultBackoffConfig(),
	})

	genConsumer.RegisterHandler("site_generation", func(msgCtx context.Context, msg *messaging.Message) error {
		var payload messaging.GenRunMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}
		return pipelineSvc.Execute(msgCtx, payload.RunID)
	})

	dispatcher := notify.NewDispatcher()
	notifyConsumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamNotifications,
		Group:        messaging.ConsumerGroupNotifier,
		ConsumerName: hostnameConsumerName(),
		BlockTimeout: cfg.Messaging.RedisStream.BlockTimeout,
		RetryLimit:   cfg.Messaging.RedisStream.RetryLimit,
		Backoff:      messaging.DefaultBackoffConfig(),
	})
	notifyConsumer.RegisterHandler("notification", dispatcher.Handle)

	if err := genConsumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start generation consumer", err)
	}
	if err := notifyConsumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start notification consumer", err)
	}

	log := logger.FromContext(ctx)
	log.Info("job-worker started",
		"gen_stream", string(messaging.StreamGenRuns),
		"notify_stream", string(messaging.StreamNotifications),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("job-worker shutting down")
	genConsumer.Stop()
	notifyConsumer.Stop()
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
