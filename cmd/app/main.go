package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techshop-bot/internal/cache"
	"techshop-bot/internal/config"
	"techshop-bot/internal/convo"
	"techshop-bot/internal/httpserver"
	"techshop-bot/internal/logging"
	"techshop-bot/internal/metrics"
	"techshop-bot/internal/repo"
	"techshop-bot/internal/tg"
	"techshop-bot/migrations"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("starting techshop-bot", "env", cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricRegistry := metrics.Registry(cfg.MetricsNamespace)

	repository, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer repository.Close()

	if err := repository.RunMigrations(ctx, migrations.Files); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrated")

	var redisClient *cache.Redis
	var draftStore convo.DraftStore
	if cfg.RedisAddr != "" {
		redisClient = cache.New(cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			UseTLS:   cfg.RedisTLS,
		}, logger)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("failed closing redis", "error", err)
			}
		}()
		if err := redisClient.Ping(ctx); err != nil {
			logger.Warn("redis ping failed", "error", err)
		}
		draftStore = redisClient
	} else {
		logger.Warn("redis not configured, checkout drafts will not survive restarts")
	}

	tgClient, err := tg.New(tg.Config{
		Token:       cfg.BotToken,
		BaseURL:     cfg.TGBaseURL,
		PollTimeout: cfg.PollTimeout,
	}, logger, metricRegistry)
	if err != nil {
		return fmt.Errorf("init telegram client: %w", err)
	}

	convoEngine := convo.New(repository, tgClient, draftStore, metricRegistry, logger, convo.EngineConfig{
		AdminIDs:     cfg.AdminIDs,
		PaymentToken: cfg.PaymentToken,
	})
	tgClient.SetUpdateProcessor(convoEngine)

	pollCtx, pollCancel := context.WithCancel(ctx)
	defer pollCancel()
	go func() {
		if err := tgClient.Start(pollCtx); err != nil {
			logger.Error("telegram client stopped", "error", err)
			stop()
		}
	}()

	httpSrv := httpserver.New(cfg.HTTPListenAddr, logger, httpserver.Dependencies{
		Repository: repository,
		Redis:      redisClient,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	return nil
}

// newRepository picks the storage backend: Postgres when DATABASE_URL is
// set, the local SQLite file otherwise.
func newRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repo.Repository, error) {
	if cfg.DatabaseURL != "" {
		logger.Info("using postgres storage")
		return repo.NewPostgres(ctx, cfg.DatabaseURL, cfg.DatabaseSchema, logger)
	}
	logger.Info("using sqlite storage", "path", cfg.SQLitePath)
	return repo.NewSQLite(ctx, cfg.SQLitePath, logger)
}
