package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"marketplace/internal/cache"
	"marketplace/internal/config"
	"marketplace/internal/database"
	"marketplace/internal/events"
	"marketplace/internal/handlers"
	"marketplace/internal/log"
	"marketplace/internal/repository"
	"marketplace/internal/security"
	"marketplace/internal/server"
	"marketplace/internal/service"
	"marketplace/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg.Environment)

	if cfg.Diagnostics.Gops {
		if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
			logger.Warn().Err(err).Msg("gops agent failed to start")
		}
	}

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(ctx, dbPool); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, domain events disabled")
		} else {
			publisher = natsPublisher
		}
	}

	services, err := buildServices(cfg, logger, dbPool, redisClient, objectStore, publisher)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build services")
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg, services,
		handlers.HealthCheck{Name: "database", Ping: dbPool.Ping},
		handlers.HealthCheck{Name: "cache", Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		handlers.HealthCheck{Name: "storage", Ping: objectStore.Ping},
	)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, publisher, dbPool, redisClient)
}

func buildServices(
	cfg *config.AppConfig,
	logger zerolog.Logger,
	db *pgxpool.Pool,
	redisClient *redis.Client,
	objectStore *storage.ObjectStore,
	publisher events.Publisher,
) (handlers.Services, error) {
	accounts := repository.NewAccountRepository(db)
	products := repository.NewProductRepository(db)
	payments := repository.NewPaymentRepository(db)
	revocations := repository.NewRevocationRepository(redisClient)

	hasher := security.NewPasswordHasher(cfg.Security.BcryptCost)
	tokens, err := security.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.JWTTTL)
	if err != nil {
		return handlers.Services{}, err
	}

	auth, err := service.NewAuthService(accounts, hasher, tokens, revocations, publisher, logger)
	if err != nil {
		return handlers.Services{}, err
	}
	uploads := service.NewUploadService(objectStore, cfg.HTTP.MaxUploadBytes, logger)

	return handlers.Services{
		Auth:     auth,
		Accounts: service.NewAccountService(accounts, hasher, logger),
		Products: service.NewProductService(products, uploads, publisher, logger),
		Payments: service.NewPaymentService(payments, uploads, publisher, logger),
	}, nil
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, publisher events.Publisher, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if err := publisher.Close(); err != nil {
		logger.Error().Err(err).Msg("event publisher close error")
	}
	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}
	agent.Close()

	logger.Info().Msg("server exited cleanly")
}
