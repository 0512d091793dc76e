package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"contentforge/internal/adapter/repo"
	"contentforge/internal/http/handlers"
	httpapi "contentforge/internal/http/httpapi"
	"contentforge/internal/infra"
	"contentforge/internal/infra/credentials"
	"contentforge/internal/providers"
	"contentforge/internal/storage"
	"contentforge/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	fileStore, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	jobs := repo.NewJobStore(runner)
	registry := initGenerators(ctx, cfg, runner, logger)

	processor := worker.NewProcessor(worker.ProcessorConfig{
		Jobs:            jobs,
		Providers:       repo.NewProviderRegistry(runner),
		Wallet:          repo.NewWalletLedger(runner),
		Contents:        repo.NewContentRepository(runner),
		Generators:      registry,
		Costs:           worker.CostTableFromConfig(cfg),
		Store:           fileStore,
		Usage:           repo.NewUsageRecorder(runner),
		Logger:          logger,
		GenerateTimeout: cfg.GenerateTimeout,
	})

	app := &handlers.App{
		Logger:    logger,
		Processor: processor,
	}

	server := infra.NewHTTPServer(cfg, cfg.Port, httpapi.NewWorkerRouter(app, logger))
	go func() {
		logger.Info().Msgf("worker listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("worker: http server failed")
		}
	}()

	reclaimer := worker.NewReclaimer(jobs, cfg.ReclaimAfter, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.ReclaimCronSpec, func() { reclaimer.Sweep(ctx) }); err != nil {
		logger.Fatal().Err(err).Str("spec", cfg.ReclaimCronSpec).Msg("worker: invalid reclaim schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Info().Msg("worker: started")
	runPollLoop(ctx, processor, cfg.PollInterval, logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("worker: failed to shutdown server")
	}
	logger.Info().Msg("worker: stopped")
}

// runPollLoop drains pending jobs back to back and sleeps only when the
// queue is empty or a claim fails.
func runPollLoop(ctx context.Context, processor *worker.Processor, interval time.Duration, logger infra.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		claimed, err := processor.ProcessNext(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Error().Err(err).Msg("worker: process job failed")
			sleep(ctx, interval)
			continue
		}
		if !claimed {
			sleep(ctx, interval)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// initGenerators wires one client per configured platform. API keys come
// from the environment, falling back to the integration token store.
func initGenerators(ctx context.Context, cfg *infra.Config, runner *infra.SQLRunner, logger infra.Logger) *providers.Registry {
	registry := providers.NewRegistry()
	credStore := credentials.NewStore(runner)
	httpClient := &http.Client{Timeout: cfg.GenerateTimeout}

	openaiKey := resolveKey(ctx, cfg.OpenAIAPIKey, credStore, credentials.ProviderOpenAI, logger)
	if openaiKey != "" {
		generator, err := providers.NewOpenAIGenerator(providers.OpenAIOptions{
			APIKey:       openaiKey,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			HTTPClient:   httpClient,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("worker: openai client unavailable")
		} else {
			registry.Register("openai", generator)
		}
	} else {
		logger.Warn().Msg("worker: openai api key missing, provider disabled")
	}

	geminiKey := resolveKey(ctx, cfg.GeminiAPIKey, credStore, credentials.ProviderGemini, logger)
	if geminiKey != "" {
		generator, err := providers.NewGeminiGenerator(providers.GeminiOptions{
			APIKey:     geminiKey,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: httpClient,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("worker: gemini client unavailable")
		} else {
			registry.Register("gemini", generator)
		}
	} else {
		logger.Warn().Msg("worker: gemini api key missing, provider disabled")
	}

	return registry
}

func resolveKey(ctx context.Context, fromEnv string, store *credentials.Store, provider string, logger infra.Logger) string {
	if key := strings.TrimSpace(fromEnv); key != "" {
		return key
	}
	key, err := store.Token(ctx, provider)
	if err != nil {
		logger.Warn().Err(err).Str("provider", provider).Msg("worker: load api key from store failed")
		return ""
	}
	return strings.TrimSpace(key)
}
