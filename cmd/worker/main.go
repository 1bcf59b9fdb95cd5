package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"reelgen/internal/adapter/repo"
	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/infra/credentials"
	"reelgen/internal/orchestrator"
	"reelgen/internal/pipeline"
	"reelgen/internal/poller"
	"reelgen/internal/prompt"
	"reelgen/internal/providers/registry"
	"reelgen/internal/queue"
	"reelgen/internal/storage"
)

const claimInterval = 2 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLoggerWithOptions(cfg.AppEnv, cfg.LogOptions()).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, &logger)

	chains, err := orchestrator.LoadChains(cfg.ProviderChainFile, cfg.ImageProviders, cfg.VideoProviders)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to load provider chains")
	}
	httpClient := infra.NewHTTPClient(infra.HTTPClientOptions{Timeout: cfg.ProviderTimeout})
	providers := registry.New(registry.SettingsFromConfig(cfg), httpClient, &logger)

	fileStore, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL,
		storage.WithHTTPClient(httpClient),
		storage.WithDownloadLimit(int64(cfg.MediaDownloadMaxMiB)<<20))
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	projects := repo.NewProjectRepository(runner)
	pipe := pipeline.New(prompt.NewComposer(nil), projects, fileStore,
		pipeline.WithLogger(&logger),
		pipeline.WithSceneTimeout(cfg.ScenePollTimeout),
		pipeline.WithPollerOptions(poller.WithInterval(cfg.PollInterval), poller.WithBackoff(cfg.PollBackoff)))

	credStore := credentials.NewStore(runner)
	sessions := func(ctx context.Context) (pipeline.Generator, pipeline.CheckerLookup, error) {
		creds, err := credStore.Bundle(ctx, cfg.ServerCredentials())
		if err != nil {
			return nil, nil, err
		}
		orch := orchestrator.New(chains, providers, creds, orchestrator.WithLogger(&logger))
		checkers := func(provider string) (domain.StatusChecker, error) {
			return providers.StatusChecker(provider, creds)
		}
		return orch, checkers, nil
	}

	w := newProjectWorker(projects, pipe, sessions, cfg.WorkerConcurrency, &logger)
	if cfg.AMQPURL != "" {
		consumer, err := queue.Dial(cfg.AMQPURL, cfg.AMQPQueue, &logger)
		if err != nil {
			logger.Warn().Err(err).Msg("worker: amqp unavailable, polling only")
		} else {
			defer consumer.Close()
			if wake, err := consumer.Wake(ctx); err != nil {
				logger.Warn().Err(err).Msg("worker: amqp consume failed, polling only")
			} else {
				w.wake = wake
			}
		}
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
