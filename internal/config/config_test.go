package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"DATABASE_URL", "DB_URL", "REDIS_URL", "SERVER_PORT", "PORT",
		"REQUIRE_API_KEY", "API_KEYS", "TRUSTED_PROXIES", "LOG_LEVEL", "LOG_FORMAT",
		"MENU_DEFAULT_LANG", "MENU_LAYOUT", "MENU_DELIVERY_TAX",
	} {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Database.URL != "" {
		t.Errorf("Database.URL = %q, want empty", cfg.Database.URL)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want %v", cfg.Cache.TTL, time.Hour)
	}
	if cfg.Upload.MaxConcurrent != 4 {
		t.Errorf("Upload.MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, 4)
	}
	if cfg.Menu.DefaultLang != "fr_FR" {
		t.Errorf("Menu.DefaultLang = %q, want %q", cfg.Menu.DefaultLang, "fr_FR")
	}
	if cfg.Menu.Layout != "current" {
		t.Errorf("Menu.Layout = %q, want %q", cfg.Menu.Layout, "current")
	}
	if cfg.Menu.BundleName != "Choose your option" {
		t.Errorf("Menu.BundleName = %q", cfg.Menu.BundleName)
	}
	if cfg.Menu.LocationID != "All locations" {
		t.Errorf("Menu.LocationID = %q", cfg.Menu.LocationID)
	}
	if cfg.Menu.DeliveryTax != 10 {
		t.Errorf("Menu.DeliveryTax = %v, want 10", cfg.Menu.DeliveryTax)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_URL", "sqlite:/tmp/menuconv.db")
	t.Setenv("UPLOAD_MAX_WAIT_TIME", "1m30s")
	t.Setenv("MENU_DELIVERY_TAX", "5.5")
	t.Setenv("MENU_LAYOUT", "legacy")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Database.URL != "sqlite:/tmp/menuconv.db" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Upload.MaxWaitTime != 90*time.Second {
		t.Errorf("Upload.MaxWaitTime = %v, want %v", cfg.Upload.MaxWaitTime, 90*time.Second)
	}
	if cfg.Menu.DeliveryTax != 5.5 {
		t.Errorf("Menu.DeliveryTax = %v, want 5.5", cfg.Menu.DeliveryTax)
	}
	if cfg.Menu.Layout != "legacy" {
		t.Errorf("Menu.Layout = %q, want legacy", cfg.Menu.Layout)
	}
	want := []string{"10.0.0.0/8", "172.16.0.0/12"}
	if len(cfg.Security.TrustedProxies) != len(want) {
		t.Fatalf("TrustedProxies = %v, want %v", cfg.Security.TrustedProxies, want)
	}
	for i := range want {
		if cfg.Security.TrustedProxies[i] != want[i] {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], want[i])
		}
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name, env, value, wantErr string
	}{
		{"bad integer", "SERVER_PORT", "eighty", "invalid integer"},
		{"bad float", "MENU_DELIVERY_TAX", "ten", "invalid number"},
		{"port range", "SERVER_PORT", "70000", "SERVER_PORT"},
		{"unknown layout", "MENU_LAYOUT", "v3", "MENU_LAYOUT"},
		{"unknown lang", "MENU_DEFAULT_LANG", "de_DE", "MENU_DEFAULT_LANG"},
		{"log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"api key without keys", "REQUIRE_API_KEY", "true", "API_KEYS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.env, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() with %s=%q succeeded", tt.env, tt.value)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg.Server.Port = 0
	cfg.Upload.MaxFileSize = 0
	cfg.Cache.TTL = 0

	err = cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{"SERVER_PORT", "UPLOAD_MAX_FILE_SIZE", "CACHE_RESULT_TTL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %s: %v", want, err)
		}
	}
}

func TestConfig_StringMasksURLs(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{URL: "postgres://user:secret@db/menus"},
		Cache:    CacheConfig{RedisURL: "redis://:secret@cache:6379/0"},
	}
	s := cfg.String()
	if strings.Contains(s, "secret") {
		t.Errorf("String() leaks credentials: %s", s)
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() = %s, want masked URLs", s)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"", 9000, ":9000"},
		{"::1", 8080, "[::1]:8080"},
	}
	for _, tt := range tests {
		c := ServerConfig{Host: tt.host, Port: tt.port}
		if got := c.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}
