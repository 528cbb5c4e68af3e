// internal/workers/server.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/flowershop-pos/internal/pkg/logger"
)

// Processors groups the task handlers served by the worker
type Processors struct {
	Import        *ImportProcessor
	Export        *ExportProcessor
	Dashboard     *DashboardProcessor
	Cleanup       *CleanupProcessor
	Notifications *NotificationProcessor
}

// NewServeMux routes every task type to its processor
func NewServeMux(p Processors, log *slog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(LoggingMiddleware(log))

	if p.Import != nil {
		mux.HandleFunc(TypeCatalogImport, p.Import.ProcessImport)
	}
	if p.Export != nil {
		mux.HandleFunc(TypeSalesExport, p.Export.ProcessExport)
	}
	if p.Dashboard != nil {
		mux.HandleFunc(TypeDashboardRefresh, p.Dashboard.RefreshDashboard)
	}
	if p.Cleanup != nil {
		mux.HandleFunc(TypeCleanupTempFiles, p.Cleanup.CleanupTempFiles)
		mux.HandleFunc(TypeCleanupExports, p.Cleanup.CleanupExports)
	}
	if p.Notifications != nil {
		mux.HandleFunc(TypeLowStockAlert, p.Notifications.SendLowStockAlert)
	}

	return mux
}

// LoggingMiddleware tags the context with the task type and id and logs
// each run with its duration
func LoggingMiddleware(log *slog.Logger) asynq.MiddlewareFunc {
	log = log.With(slog.String("component", "worker"))
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
			ctx = context.WithValue(ctx, logger.ContextKeyTaskType, t.Type())
			if id, ok := asynq.GetTaskID(ctx); ok {
				ctx = context.WithValue(ctx, logger.ContextKeyJobID, id)
			}

			start := time.Now()
			err := next.ProcessTask(ctx, t)
			duration := time.Since(start)

			if err != nil {
				log.ErrorContext(ctx, "task failed",
					slog.Duration("duration", duration),
					slog.String("error", err.Error()))
				return err
			}

			log.InfoContext(ctx, "task completed", slog.Duration("duration", duration))
			return nil
		})
	}
}

// RegisterPeriodicTasks schedules the recurring cleanup and refresh tasks
func RegisterPeriodicTasks(s *asynq.Scheduler) error {
	entries := []struct {
		spec string
		task string
	}{
		{"@every 1h", TypeCleanupTempFiles},
		{"@daily", TypeCleanupExports},
		{"@every 15m", TypeDashboardRefresh},
	}

	for _, e := range entries {
		if _, err := s.Register(e.spec, asynq.NewTask(e.task, nil), asynq.Queue(QueueLow)); err != nil {
			return fmt.Errorf("failed to register periodic %s: %w", e.task, err)
		}
	}
	return nil
}

// AsynqLogger adapts slog for asynq
type AsynqLogger struct {
	logger *slog.Logger
}

// NewAsynqLogger creates an asynq logger writing through slog
func NewAsynqLogger(log *slog.Logger) *AsynqLogger {
	return &AsynqLogger{
		logger: log.With(slog.String("component", "asynq")),
	}
}

func (l *AsynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *AsynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *AsynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *AsynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *AsynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
