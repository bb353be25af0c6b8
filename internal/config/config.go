// Package config loads application settings from environment variables,
// applies defaults and validates everything on startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Menu     MenuConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig selects where the usage counter and history live.
// An empty URL keeps them in memory; postgres:// URLs use PostgreSQL and
// sqlite: URLs or *.db paths use a local SQLite file.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// HistorySize bounds the in-memory history.
	HistorySize int `env:"DB_HISTORY_SIZE" default:"100"`
}

// CacheConfig controls how long finished conversions stay downloadable.
type CacheConfig struct {
	// RedisURL enables Redis; empty keeps results in memory.
	RedisURL   string        `env:"REDIS_URL"`
	TTL        time.Duration `env:"CACHE_RESULT_TTL" default:"1h"`
	MaxEntries int           `env:"CACHE_MAX_ENTRIES" default:"50"`
}

// UploadConfig holds conversion request limits.
type UploadConfig struct {
	// MaxFileSize is the maximum size of each uploaded export in bytes (default: 20MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"20971520"`

	MaxConcurrent int           `env:"UPLOAD_MAX_CONCURRENT" default:"4"`
	MaxWaitTime   time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"15s"`

	// Timeout bounds a single conversion.
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"2m"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ConvertLimit is requests per minute for conversion endpoints.
	ConvertLimit int `env:"RATE_LIMIT_CONVERT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects the /api routes with X-API-Key.
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MenuConfig holds the constants written into the import template.
type MenuConfig struct {
	// DefaultLang feeds the unsuffixed Name and Description columns.
	DefaultLang string `env:"MENU_DEFAULT_LANG" default:"fr_FR"`

	// Layout is the template layout used when a request names none.
	Layout string `env:"MENU_LAYOUT" default:"current"`

	BundleName   string  `env:"MENU_BUNDLE_NAME" default:"Choose your option"`
	LocationID   string  `env:"MENU_LOCATION_ID" default:"All locations"`
	LocationName string  `env:"MENU_LOCATION_NAME" default:"All locations"`
	DeliveryTax  float64 `env:"MENU_DELIVERY_TAX" default:"10"`
	TakeawayTax  float64 `env:"MENU_TAKEAWAY_TAX" default:"10"`
	EatInTax     float64 `env:"MENU_EAT_IN_TAX" default:"10"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
