// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/flowershop-pos/internal/adapters/db"
	redis_a "github.com/ammerola/flowershop-pos/internal/adapters/redis_adapter"
	"github.com/ammerola/flowershop-pos/internal/core/services"
	"github.com/ammerola/flowershop-pos/internal/handlers"
	"github.com/ammerola/flowershop-pos/internal/handlers/middleware"
	"github.com/ammerola/flowershop-pos/internal/pkg/config"
	"github.com/ammerola/flowershop-pos/internal/pkg/logger"
	"github.com/ammerola/flowershop-pos/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	appLogger := logger.SetupLogger("debug", "json")

	appLogger.Info("starting flowershop point of sale",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(appLogger.Logger)
	if err != nil {
		appLogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	appLogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat,
		logger.WithSampling(cfg.App.LogSampleRate),
		logger.WithFileOutput(cfg.App.LogFile, cfg.App.LogFileLevel))
	appLogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
		slog.String("timezone", cfg.Inventory.Timezone),
	)

	ctx := context.Background()

	secrets, err := config.NewSecretsManager(ctx, cfg, appLogger.Logger)
	if err != nil {
		appLogger.Error("failed to create secrets manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := config.ApplySecrets(ctx, cfg, secrets); err != nil {
		appLogger.Error("failed to apply secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(ctx, cfg, appLogger.Logger); err != nil {
			appLogger.Error("failed to run migrations", slog.String("error", err.Error()))
			if cfg.IsProduction() {
				os.Exit(1)
			}
		}
	}

	deps, err := initializeDependencies(ctx, cfg, appLogger.Logger)
	if err != nil {
		appLogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	if err := deps.cacheManager.WarmupCache(ctx,
		func(ctx context.Context) error { _, err := deps.catalog.GetAll(ctx); return err },
		func(ctx context.Context) error { _, err := deps.reporting.Dashboard(ctx); return err },
	); err != nil {
		appLogger.Warn("cache warmup incomplete", slog.String("error", err.Error()))
	}

	server := setupHTTPServer(cfg, deps, appLogger)

	serverErrors := make(chan error, 1)
	go func() {
		appLogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
			slog.Bool("tls", cfg.Server.TLSEnabled),
		)

		if cfg.Server.TLSEnabled {
			serverErrors <- server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		appLogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		appLogger.Info("server shutdown complete",
			slog.Any("cache_stats", deps.cacheManager.GetStats()))
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	cacheManager   *redis_a.CacheManager
	catalog        *services.CatalogService
	reporting      *services.ReportingService
	handlers       handlers.Handlers
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, db.ConfigFrom(cfg.Database), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	logger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := newRedisClient(cfg.Redis)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		deps.cleanup()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient

	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)
	deps.cacheManager = redis_a.NewCacheManager(cache, logger)
	jobs := redis_a.NewJobStore(cache, workers.JobRetention, logger)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	scheduler := workers.NewScheduler(deps.asynqClient, jobs, cfg.Asynq.RetryMax, logger).
		WithAlertCooldown(cache, cfg.Inventory.AlertCooldown)

	products := db.NewProductRepository(database, logger)
	sales := db.NewSaleRepository(database, logger)

	deps.catalog = services.NewCatalogService(products, cache, deps.cacheManager, services.CatalogOptions{
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
		CacheTTL:          cfg.Inventory.CatalogCacheTTL,
	}, logger)

	ledger := services.NewLedgerService(db.NewLedgerStore(database, logger), deps.cacheManager, scheduler,
		services.LedgerOptions{CriticalStockThreshold: cfg.Inventory.CriticalStockThreshold}, logger)

	deps.reporting = services.NewReportingService(products, sales, cache, services.ReportingOptions{
		LowStockThreshold:      cfg.Inventory.LowStockThreshold,
		CriticalStockThreshold: cfg.Inventory.CriticalStockThreshold,
		DashboardCacheTTL:      cfg.Inventory.DashboardCacheTTL,
		Location:               cfg.Inventory.Location(),
	}, logger)

	maxFileSize := int64(max(cfg.FileProcessing.PDFMaxSizeMB, cfg.FileProcessing.ExcelMaxSizeMB)) * 1024 * 1024

	deps.handlers = handlers.Handlers{
		Products: handlers.NewProductHandler(deps.catalog, logger),
		Sales:    handlers.NewSalesHandler(ledger, deps.reporting, logger),
		Reports:  handlers.NewReportHandler(deps.reporting, cfg.Inventory.LowStockThreshold, logger),
		Export:   handlers.NewExportHandler(deps.reporting, scheduler, cfg.Inventory.Location(), logger),
		Import:   handlers.NewImportHandler(scheduler, logger, maxFileSize, uploadDir(cfg)),
		Jobs:     handlers.NewJobHandler(jobs, logger),
		Health:   handlers.NewHealthHandler(database, redisClient, deps.asynqInspector, cfg.App, logger),
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, appLogger *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps.handlers)

	if cfg.Server.EnablePprof && cfg.IsDevelopment() {
		mux.HandleFunc("GET /debug/pprof/", pprof.Index)
		mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	}

	// First listed runs first
	chain := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Logger(appLogger),
		middleware.Recovery(appLogger.Logger),
	}
	if cfg.Security.SecureHeaders {
		chain = append(chain, middleware.SecureHeaders)
	}
	if len(cfg.Security.AllowedOrigins) > 0 {
		chain = append(chain, middleware.CORS(cfg.Security.AllowedOrigins))
	}
	if cfg.Security.RateLimitRequests > 0 {
		chain = append(chain, middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration))
	}
	chain = append(chain, middleware.Compression)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        middleware.Chain(mux, chain...),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(appLogger.Handler(), slog.LevelError),
	}
}

func newRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxLifetime: cfg.MaxConnAge,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.IdleTimeout,
	})
}

func uploadDir(cfg *config.Config) string {
	return filepath.Join(cfg.FileProcessing.TempDir, "flowershop-uploads")
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	return db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{
		DatabaseURL: db.ConfigFrom(cfg.Database).URL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}, logger, 3)
}
