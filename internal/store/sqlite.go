package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/menuconv/internal/core"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS usage_counter (
		name  TEXT PRIMARY KEY,
		total INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS conversions (
		id           TEXT PRIMARY KEY,
		product_file TEXT NOT NULL DEFAULT '',
		image_file   TEXT NOT NULL DEFAULT '',
		layout       TEXT NOT NULL,
		stats        TEXT NOT NULL,
		ip_address   TEXT NOT NULL DEFAULT '',
		user_agent   TEXT NOT NULL DEFAULT '',
		created_at   INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS conversions_created_at_idx ON conversions (created_at DESC)`,
}

// SQLite stores the counter and history in a local database file.
type SQLite struct {
	db *sql.DB
}

var _ core.Store = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; also keeps ":memory:" on a single database.
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Increment(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO usage_counter (name, total) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET total = total + 1
		RETURNING total`, counterName).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("increment usage counter: %w", err)
	}
	return total, nil
}

func (s *SQLite) Total(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT total FROM usage_counter WHERE name = ?`, counterName).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read usage counter: %w", err)
	}
	return total, nil
}

func (s *SQLite) RecordConversion(ctx context.Context, rec core.ConversionRecord) error {
	stats, err := json.Marshal(rec.Stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversions (id, product_file, image_file, layout, stats, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ProductFile, rec.ImageFile, rec.Layout, string(stats),
		rec.IPAddress, rec.UserAgent, rec.CreatedAt.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}
	return nil
}

func (s *SQLite) RecentConversions(ctx context.Context, limit int) ([]core.ConversionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_file, image_file, layout, stats, ip_address, user_agent, created_at
		FROM conversions
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	var out []core.ConversionRecord
	for rows.Next() {
		var (
			rec       core.ConversionRecord
			stats     string
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.ProductFile, &rec.ImageFile, &rec.Layout, &stats,
			&rec.IPAddress, &rec.UserAgent, &createdAt); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		if err := json.Unmarshal([]byte(stats), &rec.Stats); err != nil {
			return nil, fmt.Errorf("decode stats of %s: %w", rec.ID, err)
		}
		rec.CreatedAt = time.UnixMicro(createdAt).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
