package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // time zones for hosts without a zoneinfo database

	"github.com/UnknownOlympus/hazira/internal/bot"
	"github.com/UnknownOlympus/hazira/internal/config"
	"github.com/UnknownOlympus/hazira/internal/digest"
	"github.com/UnknownOlympus/hazira/internal/insight"
	"github.com/UnknownOlympus/hazira/internal/metrics"
	"github.com/UnknownOlympus/hazira/internal/repository"
	"github.com/UnknownOlympus/hazira/internal/server"
	"github.com/UnknownOlympus/hazira/internal/tracker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// stateStore is the storage backend of the tracker that can also be health checked.
type stateStore interface {
	tracker.BlobStore
	server.Pinger
}

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the state storage.
	store, closeStore, err := setupStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer closeStore()

	// Restore the roster and attendance.
	book := tracker.New(logger, store, appMetrics,
		tracker.WithLocation(cfg.Location),
		tracker.WithTimeFormat(cfg.TimeFormat),
		tracker.WithDemoSeed(cfg.Storage.SeedDemo),
	)
	if err = book.Load(ctx); err != nil {
		log.Fatalf("Failed to load state: %v", err)
	}

	// Initialize the summary cache and text generation, both optional.
	summarizerOpts := []insight.Option{insight.WithTimeout(cfg.Gemini.Timeout)}
	var cachePinger server.Pinger
	if cfg.Redis.Addr != "" {
		const redisTimeout = 5 * time.Second
		redisClient, redisErr := insight.NewRedisClient(ctx, cfg.Redis.Addr, redisTimeout)
		if redisErr != nil {
			log.Fatalf("Failed to connect to Redis: %v", redisErr)
		}
		defer redisClient.Close()

		cache := insight.NewRedisCache(redisClient, cfg.Redis.TTL)
		summarizerOpts = append(summarizerOpts, insight.WithCache(cache))
		cachePinger = cache
	}

	var generator insight.Generator
	if cfg.Gemini.APIKey != "" {
		generator, err = insight.NewGemini(ctx, insight.GeminiConfig{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.Model,
			Temperature: cfg.Gemini.Temperature,
		})
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
	} else {
		logger.WarnContext(ctx, "Gemini API key is not set, AI insight will use the fallback message")
	}
	summarizer := insight.NewSummarizer(logger, generator, appMetrics, summarizerOpts...)

	// Initialize the bot with logger, tracker, summarizer and telegram settings.
	hazBot, err := bot.NewBot(logger, book, summarizer, appMetrics, bot.Settings{
		Token:    cfg.Telegram.Token,
		Poller:   cfg.Telegram.PollerTimeout,
		OwnerID:  cfg.Telegram.OwnerID,
		Language: cfg.Telegram.Language,
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Schedule the daily digest for the owner.
	var scheduler *digest.Scheduler
	if cfg.Telegram.OwnerID != 0 && cfg.Digest.Schedule != "" {
		scheduler, err = digest.New(logger, cfg.Location, cfg.Digest.Schedule, hazBot)
		if err != nil {
			log.Fatalf("Failed to schedule digest: %v", err)
		}
		scheduler.Start()
		logger.InfoContext(ctx, "Daily digest scheduled", "next", scheduler.Next())
	}

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the bot in a goroutine to allow main to listen for signals.
	go hazBot.Start()

	// Start the monitoring server
	health := server.NewHealthChecker(logger, store, cachePinger)
	go server.StartMonitoringServer(ctx, logger, reg, health, cfg.MonitoringPort)

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	// Stop the digest and the bot gracefully.
	if scheduler != nil {
		const digestShutdown = 10 * time.Second
		stopCtx, cancel := context.WithTimeout(context.Background(), digestShutdown)
		scheduler.Stop(stopCtx)
		cancel()
	}
	hazBot.Stop()

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// setupStore opens the configured state storage and returns a function that releases it.
func setupStore(ctx context.Context, cfg *config.Config) (stateStore, func(), error) {
	if cfg.Storage.Driver != config.StoragePostgres {
		return repository.NewFileStore(cfg.Storage.FilePath), func() {}, nil
	}

	dtb, err := repository.NewDatabase(
		ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		return nil, nil, err
	}

	repo := repository.NewRepository(dtb, cfg.Storage.Key)
	if err = repo.EnsureSchema(ctx); err != nil {
		dtb.Close()
		return nil, nil, err
	}

	return repo, dtb.Close, nil
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelWarn,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelError,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
