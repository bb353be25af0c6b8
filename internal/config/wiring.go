package config

import (
	"github.com/JonMunkholm/menuconv/internal/cache"
	"github.com/JonMunkholm/menuconv/internal/core"
	"github.com/JonMunkholm/menuconv/internal/store"
)

// Options returns the conversion options described by the menu settings.
func (m MenuConfig) Options() core.Options {
	return core.Options{
		Lang:       m.DefaultLang,
		BundleName: m.BundleName,
		Defaults: core.Defaults{
			LocationID:   m.LocationID,
			LocationName: m.LocationName,
			DeliveryTax:  m.DeliveryTax,
			TakeawayTax:  m.TakeawayTax,
			EatInTax:     m.EatInTax,
		},
	}
}

// ServiceConfig returns the core service settings.
func (c *Config) ServiceConfig() core.ServiceConfig {
	return core.ServiceConfig{
		Options:       c.Menu.Options(),
		Layout:        c.Menu.Layout,
		MaxConcurrent: c.Upload.MaxConcurrent,
		MaxWait:       c.Upload.MaxWaitTime,
		Timeout:       c.Upload.Timeout,
	}
}

// StoreConfig returns the usage counter and history backend settings.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		URL:             c.Database.URL,
		MaxConns:        c.Database.MaxConns,
		MinConns:        c.Database.MinConns,
		MaxConnLifetime: c.Database.MaxConnLifetime,
		MaxConnIdleTime: c.Database.MaxConnIdleTime,
		HistorySize:     c.Database.HistorySize,
	}
}

// CacheConfig returns the result cache settings.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		RedisURL:   c.Cache.RedisURL,
		TTL:        c.Cache.TTL,
		MaxEntries: c.Cache.MaxEntries,
	}
}
