// Package main is the entry point for the invoice API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"custody/internal/config"
	corenumerator "custody/internal/core/numerator"
	"custody/internal/domain/documents/invoice"
	v1 "custody/internal/infrastructure/http/v1"
	"custody/internal/infrastructure/http/v1/handlers"
	"custody/internal/infrastructure/numerator"
	"custody/internal/infrastructure/storage/postgres"
	"custody/internal/infrastructure/storage/postgres/catalog_repo"
	"custody/internal/infrastructure/storage/postgres/document_repo"
	"custody/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
		Service:     "invoice-api",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting invoice server", "env", cfg.Environment, "sequence_backend", cfg.SequenceBackend)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)
	health := handlers.NewHealthHandler(pool)

	// --- Sequence allocator ---
	var allocator corenumerator.Allocator
	switch cfg.SequenceBackend {
	case config.SequenceBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = client.Close() }()

		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalw("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		}
		health.WithCheck("sequence_backend", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		allocator = numerator.NewRedis(client)
		log.Warnw("redis sequence backend allocates outside the invoice transaction; rolled-back creates leave gaps")
	default:
		allocator = numerator.NewWithTxManager(txManager)
	}

	// --- Invoice service ---
	invoiceService := invoice.NewService(
		document_repo.NewInvoiceRepo(txManager),
		catalog_repo.NewClientRepo(txManager),
		catalog_repo.NewProjectRepo(txManager),
		allocator,
		txManager,
	)
	invoice.RegisterAuditHooks(invoiceService.Hooks(), log)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		Health:         health,
		Invoices:       invoiceService,
		RequestTimeout: cfg.RequestTimeout,
		Development:    cfg.IsDevelopment(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	pool.LogStats(ctx)

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
