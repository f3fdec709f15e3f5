// Package worker runs memo's best-effort background maintenance.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jwulff/memo/internal/config"
	"github.com/jwulff/memo/internal/media"
)

// Register starts the sweeper for dir (os.TempDir when empty). It returns an
// error only if the worker could not start; callers log it and carry on.
func Register(ctx context.Context, cfg config.Worker, dir string, log *zap.SugaredLogger) error {
	if dir == "" {
		dir = os.TempDir()
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("worker interval must be positive, got %s", cfg.Interval)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat temp dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("temp dir %s is not a directory", dir)
	}

	go run(ctx, cfg, dir, log)
	return nil
}

func run(ctx context.Context, cfg config.Worker, dir string, log *zap.SugaredLogger) {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		if n, err := Sweep(dir, cfg.MaxAge, time.Now()); err != nil {
			log.Warnw("sweep failed", "dir", dir, "error", err)
		} else if n > 0 {
			log.Infow("swept stale recordings", "dir", dir, "removed", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep removes staged recordings in dir last modified more than maxAge
// before now and reports how many were removed.
func Sweep(dir string, maxAge time.Duration, now time.Time) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, media.TempPattern))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed, nil
}
