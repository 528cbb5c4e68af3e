// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// CleanupConfig bounds how long temporary uploads and exports are kept
type CleanupConfig struct {
	TempDir         string
	TempMaxAge      time.Duration
	ExportPrefix    string
	ExportRetention time.Duration
}

// CleanupProcessor handles cleanup tasks
type CleanupProcessor struct {
	storage ports.FileStorage
	cfg     CleanupConfig
	now     func() time.Time
	logger  *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(storage ports.FileStorage, cfg CleanupConfig, logger *slog.Logger) *CleanupProcessor {
	if cfg.TempMaxAge <= 0 {
		cfg.TempMaxAge = 24 * time.Hour
	}
	return &CleanupProcessor{
		storage: storage,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupTempFiles removes uploaded price lists that were never processed
func (p *CleanupProcessor) CleanupTempFiles(ctx context.Context, _ *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up temp files")

	if p.cfg.TempDir == "" {
		return nil
	}

	var deletedCount int
	err := filepath.WalkDir(p.cfg.TempDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		if p.now().Sub(info.ModTime()) > p.cfg.TempMaxAge {
			if err := os.Remove(path); err != nil {
				p.logger.WarnContext(ctx, "failed to delete temp file",
					slog.String("file", path),
					slog.String("error", err.Error()))
			} else {
				deletedCount++
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to walk temp directory: %w", err)
	}

	p.logger.InfoContext(ctx, "temp files cleaned up",
		slog.Int("files_deleted", deletedCount))

	return nil
}

// CleanupExports deletes exports whose day directory is past retention
func (p *CleanupProcessor) CleanupExports(ctx context.Context, _ *asynq.Task) error {
	if p.cfg.ExportRetention <= 0 {
		return nil
	}

	prefix := strings.TrimSuffix(p.cfg.ExportPrefix, "/") + "/"
	keys, err := p.storage.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to list exports: %w", err)
	}

	cutoff := p.now().UTC().Add(-p.cfg.ExportRetention)
	var deleted, failed int

	for _, key := range keys {
		day, ok := exportDay(prefix, key)
		if !ok || !day.AddDate(0, 0, 1).Before(cutoff) {
			continue
		}
		if err := p.storage.Delete(ctx, key); err != nil {
			failed++
			p.logger.WarnContext(ctx, "failed to delete export",
				slog.String("key", key),
				slog.String("error", err.Error()))
			continue
		}
		deleted++
	}

	p.logger.InfoContext(ctx, "expired exports cleaned up",
		slog.Int("files_deleted", deleted),
		slog.Int("files_failed", failed))

	if failed > 0 {
		return fmt.Errorf("failed to delete %d of %d expired exports", failed, failed+deleted)
	}
	return nil
}

func exportDay(prefix, key string) (time.Time, bool) {
	rest := strings.TrimPrefix(key, prefix)
	dir, _, found := strings.Cut(rest, "/")
	if !found {
		return time.Time{}, false
	}
	day, err := time.Parse(ExportKeyDateLayout, dir)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
