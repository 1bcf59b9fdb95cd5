package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"reelgen/internal/adapter/repo"
	"reelgen/internal/http/handlers"
	httpapi "reelgen/internal/http/httpapi"
	"reelgen/internal/infra"
	"reelgen/internal/infra/credentials"
	"reelgen/internal/infra/geoip"
	"reelgen/internal/middleware"
	"reelgen/internal/orchestrator"
	"reelgen/internal/poller"
	"reelgen/internal/providers/registry"
	"reelgen/internal/queue"
	"reelgen/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLoggerWithOptions(cfg.AppEnv, cfg.LogOptions())
	ctx := context.Background()

	chains, err := orchestrator.LoadChains(cfg.ProviderChainFile, cfg.ImageProviders, cfg.VideoProviders)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load provider chains")
	}

	httpClient := infra.NewHTTPClient(infra.HTTPClientOptions{Timeout: cfg.ProviderTimeout})
	providers := registry.New(registry.SettingsFromConfig(cfg), httpClient, &logger)

	fileStore, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL,
		storage.WithHTTPClient(httpClient),
		storage.WithDownloadLimit(int64(cfg.MediaDownloadMaxMiB)<<20))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	app := handlers.App{
		Config:    cfg,
		Logger:    &logger,
		Providers: providers,
		Chains:    chains,
		Media:     fileStore,
		PollOptions: []poller.Option{
			poller.WithInterval(cfg.PollInterval),
			poller.WithBackoff(cfg.PollBackoff),
		},
	}

	// Projects and stored credentials need Postgres; generation endpoints work without it.
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		runner := infra.NewSQLRunner(pool, &logger)
		app.Credentials = credentials.NewStore(runner)
		app.Projects = repo.NewProjectRepository(runner)
	} else {
		logger.Warn().Msg("DATABASE_URL not set, project endpoints disabled")
	}

	if cfg.AMQPURL != "" {
		notifier, err := queue.Dial(cfg.AMQPURL, cfg.AMQPQueue, &logger)
		if err != nil {
			logger.Warn().Err(err).Msg("amqp unavailable, worker falls back to polling")
		} else {
			defer notifier.Close()
			app.Notifier = notifier
		}
	}

	var counter middleware.Counter = middleware.NewMemoryCounter()
	if client, err := infra.NewRedisClient(ctx, cfg); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, rate limit is per instance")
	} else if client != nil {
		defer client.Close()
		counter = middleware.NewRedisCounter(client)
	}

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	router := httpapi.NewRouter(handlers.NewApp(app), httpapi.Options{
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		RateCounter:     counter,
		CountryLookup:   resolver.Lookup(),
		StaticDir:       fileStore.BasePath(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Strs("image_chain", chains.For("image")).Strs("video_chain", chains.For("video")).Msg("API listening")
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
