package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/menuconv/internal/core"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS usage_counter (
  name  text PRIMARY KEY,
  total bigint NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS conversions (
  id           uuid PRIMARY KEY,
  product_file text,
  image_file   text,
  layout       text NOT NULL,
  stats        jsonb NOT NULL,
  ip_address   text,
  user_agent   text,
  created_at   timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS conversions_created_at_idx ON conversions (created_at DESC);
`

// Postgres stores the counter and history in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Postgres)(nil)

// OpenPostgres connects a pool, verifies it and creates missing tables.
func OpenPostgres(ctx context.Context, cfg Config) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return &Postgres{pool: pool}, nil
}

// NewPostgres wraps an existing pool. Tables must already exist.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Increment(ctx context.Context) (int64, error) {
	var total int64
	err := p.pool.QueryRow(ctx, `
		INSERT INTO usage_counter (name, total) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET total = usage_counter.total + 1
		RETURNING total`, counterName).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("increment usage counter: %w", err)
	}
	return total, nil
}

func (p *Postgres) Total(ctx context.Context) (int64, error) {
	var total int64
	err := p.pool.QueryRow(ctx, `SELECT total FROM usage_counter WHERE name = $1`, counterName).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read usage counter: %w", err)
	}
	return total, nil
}

func (p *Postgres) RecordConversion(ctx context.Context, rec core.ConversionRecord) error {
	stats, err := json.Marshal(rec.Stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO conversions (id, product_file, image_file, layout, stats, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		toPgUUID(rec.ID),
		toPgText(rec.ProductFile),
		toPgText(rec.ImageFile),
		rec.Layout,
		stats,
		toPgText(rec.IPAddress),
		toPgText(rec.UserAgent),
		pgtype.Timestamptz{Time: rec.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}
	return nil
}

func (p *Postgres) RecentConversions(ctx context.Context, limit int) ([]core.ConversionRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, product_file, image_file, layout, stats, ip_address, user_agent, created_at
		FROM conversions
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	var out []core.ConversionRecord
	for rows.Next() {
		var (
			id                     pgtype.UUID
			productFile, imageFile pgtype.Text
			ipAddress, userAgent   pgtype.Text
			layout                 string
			stats                  []byte
			createdAt              pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &productFile, &imageFile, &layout, &stats, &ipAddress, &userAgent, &createdAt); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		rec := core.ConversionRecord{
			ID:          uuidToString(id),
			ProductFile: productFile.String,
			ImageFile:   imageFile.String,
			Layout:      layout,
			IPAddress:   ipAddress.String,
			UserAgent:   userAgent.String,
			CreatedAt:   createdAt.Time,
		}
		if err := json.Unmarshal(stats, &rec.Stats); err != nil {
			return nil, fmt.Errorf("decode stats of %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgUUID(s string) pgtype.UUID {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
