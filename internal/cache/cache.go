// Package cache keeps finished conversions downloadable for a limited time.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonMunkholm/menuconv/internal/core"
)

// DefaultTTL is how long a result stays downloadable.
const DefaultTTL = time.Hour

// Config configures Open.
type Config struct {
	// RedisURL selects Redis; empty keeps results in memory.
	RedisURL string
	TTL      time.Duration
	// MaxEntries bounds the in-memory cache.
	MaxEntries int
}

// Open returns a Redis-backed store when RedisURL is set and reachable.
// An unreachable Redis degrades to the in-memory store.
func Open(ctx context.Context, cfg Config) core.ResultStore {
	if cfg.RedisURL == "" {
		return NewMemory(cfg.TTL, cfg.MaxEntries)
	}
	r, err := NewRedis(ctx, cfg.RedisURL, cfg.TTL)
	if err != nil {
		slog.Warn("redis unavailable, keeping results in memory", "error", err)
		return NewMemory(cfg.TTL, cfg.MaxEntries)
	}
	return r
}
