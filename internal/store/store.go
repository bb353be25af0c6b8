// Package store persists the usage counter and the conversion history.
//
// The backend is chosen from the database URL: postgres:// URLs use a pgx
// pool, sqlite: URLs and *.db files use an embedded SQLite database and an
// empty URL keeps everything in memory.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/menuconv/internal/core"
)

// counterName is the usage counter row shared by every backend.
const counterName = "conversions"

// Kind names a storage backend.
type Kind string

const (
	KindMemory   Kind = "memory"
	KindPostgres Kind = "postgres"
	KindSQLite   Kind = "sqlite"
)

// Config configures Open.
type Config struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	// HistorySize bounds the in-memory history.
	HistorySize int
}

// KindOf returns the backend selected by url.
func KindOf(url string) (Kind, error) {
	u := strings.TrimSpace(url)
	switch {
	case u == "":
		return KindMemory, nil
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return KindPostgres, nil
	case strings.HasPrefix(u, "sqlite:"), strings.HasPrefix(u, "file:"),
		strings.HasSuffix(u, ".db"), strings.HasSuffix(u, ".sqlite"), strings.HasSuffix(u, ".sqlite3"):
		return KindSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database url %q", url)
	}
}

// Open returns the store selected by cfg.URL.
func Open(ctx context.Context, cfg Config) (core.Store, error) {
	kind, err := KindOf(cfg.URL)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindPostgres:
		return OpenPostgres(ctx, cfg)
	case KindSQLite:
		return OpenSQLite(ctx, sqlitePath(cfg.URL))
	default:
		return NewMemory(cfg.HistorySize), nil
	}
}

// sqlitePath strips the sqlite: scheme. file: URIs pass through.
func sqlitePath(url string) string {
	u := strings.TrimSpace(url)
	if rest, ok := strings.CutPrefix(u, "sqlite://"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(u, "sqlite:"); ok {
		return rest
	}
	return u
}
