// Package db is the local persistent key-value store behind history and
// preferences.
package db

import (
	"context"
	"fmt"

	"github.com/jwulff/memo/internal/config"
)

// Keys used by memo.
const (
	KeyTheme   = "theme"
	KeyHistory = "transcriptionHistory"
)

// KV is a string key-value store. Set replaces the value atomically.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open returns the store selected by cfg.Backend.
func Open(cfg config.Store) (KV, error) {
	switch cfg.Backend {
	case "", "sqlite":
		return OpenSQLite(cfg.Path)
	case "redis":
		return OpenRedis(cfg.Redis)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
