// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/flowershop-pos/internal/adapters/db"
	redis_a "github.com/ammerola/flowershop-pos/internal/adapters/redis_adapter"
	"github.com/ammerola/flowershop-pos/internal/adapters/storage"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
	"github.com/ammerola/flowershop-pos/internal/core/services"
	"github.com/ammerola/flowershop-pos/internal/pkg/config"
	"github.com/ammerola/flowershop-pos/internal/pkg/logger"
	"github.com/ammerola/flowershop-pos/internal/workers"
)

func main() {
	appLogger := logger.SetupLogger("info", "json")

	cfg, err := config.Load(appLogger.Logger)
	if err != nil {
		appLogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	appLogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat,
		logger.WithSampling(cfg.App.LogSampleRate),
		logger.WithFileOutput(cfg.App.LogFile, cfg.App.LogFileLevel))
	slogger := appLogger.Logger
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	ctx := context.Background()

	secrets, err := config.NewSecretsManager(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to create secrets manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := config.ApplySecrets(ctx, cfg, secrets); err != nil {
		slogger.Error("failed to apply secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	database, err := initDatabase(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
	})
	defer redisClient.Close()

	fileStorage, err := initStorage(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize file storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)
	jobs := redis_a.NewJobStore(cache, workers.JobRetention, slogger)
	cacheManager := redis_a.NewCacheManager(cache, slogger)

	products := db.NewProductRepository(database, slogger)
	sales := db.NewSaleRepository(database, slogger)

	catalog := services.NewCatalogService(products, cache, cacheManager, services.CatalogOptions{
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
		CacheTTL:          cfg.Inventory.CatalogCacheTTL,
	}, slogger)
	reporting := services.NewReportingService(products, sales, cache, services.ReportingOptions{
		LowStockThreshold:      cfg.Inventory.LowStockThreshold,
		CriticalStockThreshold: cfg.Inventory.CriticalStockThreshold,
		DashboardCacheTTL:      cfg.Inventory.DashboardCacheTTL,
		Location:               cfg.Inventory.Location(),
	}, slogger)

	uploadDir := filepath.Join(cfg.FileProcessing.TempDir, "flowershop-uploads")

	mux := workers.NewServeMux(workers.Processors{
		Import:    workers.NewImportProcessor(catalog, jobs, uploadDir, slogger),
		Export:    workers.NewExportProcessor(reporting, fileStorage, jobs, cfg.Inventory.ExportPrefix, slogger),
		Dashboard: workers.NewDashboardProcessor(reporting, cache, slogger),
		Cleanup: workers.NewCleanupProcessor(fileStorage, workers.CleanupConfig{
			TempDir:         uploadDir,
			TempMaxAge:      24 * time.Hour,
			ExportPrefix:    cfg.Inventory.ExportPrefix,
			ExportRetention: cfg.Inventory.ExportRetention,
		}, slogger),
		Notifications: workers.NewNotificationProcessor(workers.NotificationConfig{
			To:       cfg.Inventory.AlertEmail,
			From:     cfg.Inventory.SMTPFrom,
			SMTPHost: cfg.Inventory.SMTPHost,
			SMTPPort: cfg.Inventory.SMTPPort,
			DryRun:   cfg.IsDevelopment(),
		}, slogger),
	}, slogger)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:              cfg.Asynq.Concurrency,
		Queues:                   cfg.Asynq.Queues,
		StrictPriority:           cfg.Asynq.StrictPriority,
		ErrorHandler:             asynq.ErrorHandlerFunc(handleError(slogger)),
		RetryDelayFunc:           exponentialBackoff,
		ShutdownTimeout:          cfg.Asynq.ShutdownTimeout,
		HealthCheckFunc:          healthCheck(slogger),
		HealthCheckInterval:      cfg.Asynq.HealthCheckInterval,
		DelayedTaskCheckInterval: cfg.Asynq.DelayedTaskCheckTime,
		Logger:                   workers.NewAsynqLogger(slogger),
	})

	location := cfg.Inventory.Location()
	periodic := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: location,
		Logger:   workers.NewAsynqLogger(slogger),
	})
	if err := workers.RegisterPeriodicTasks(periodic); err != nil {
		slogger.Error("failed to register periodic tasks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	go func() {
		if err := periodic.Run(); err != nil {
			slogger.Error("failed to run periodic scheduler", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues),
		slog.String("timezone", location.String()))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	periodic.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	dbConfig := db.ConfigFrom(cfg.Database)
	// Fewer connections for worker
	dbConfig.MaxConnections = 10
	dbConfig.MinConnections = 2

	return db.NewDatabase(ctx, dbConfig, logger)
}

func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.FileStorage, error) {
	if cfg.AWS.S3Enabled {
		return storage.NewS3Storage(ctx, storage.S3ConfigFrom(cfg.AWS), logger)
	}
	return storage.NewLocalStorage(filepath.Join(cfg.FileProcessing.TempDir, "flowershop-exports"), logger)
}

func handleError(logger *slog.Logger) func(ctx context.Context, task *asynq.Task, err error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		logger.ErrorContext(ctx, "task processing failed",
			slog.String("type", task.Type()),
			slog.Int("retried", retried),
			slog.Int("max_retry", maxRetry),
			slog.String("error", err.Error()))
	}
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	if n > 10 {
		return maxDelay
	}
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(logger *slog.Logger) func(error) {
	return func(err error) {
		if err != nil {
			logger.Error("worker health check failed", slog.String("error", err.Error()))
		}
	}
}
