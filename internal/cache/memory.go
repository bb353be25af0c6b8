package cache

import (
	"context"
	"sync"
	"time"

	"github.com/JonMunkholm/menuconv/internal/core"
)

// DefaultMaxEntries bounds the in-memory cache.
const DefaultMaxEntries = 50

type entry struct {
	res     *core.Result
	expires time.Time
}

// Memory is a process-local result store with expiry. When full, the entry
// closest to expiry is evicted.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	max     int
	now     func() time.Time
}

var _ core.ResultStore = (*Memory)(nil)

// NewMemory returns an empty cache. Non-positive values select the defaults.
func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		max:     maxEntries,
		now:     time.Now,
	}
}

func (m *Memory) Save(_ context.Context, res *core.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)
	if _, ok := m.entries[res.ID]; !ok && len(m.entries) >= m.max {
		m.evictOldest()
	}
	m.entries[res.ID] = entry{res: res, expires: now.Add(m.ttl)}
	return nil
}

func (m *Memory) Load(_ context.Context, id string) (*core.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, core.ErrConversionNotFound
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, id)
		return nil, core.ErrConversionNotFound
	}
	return e.res, nil
}

// Len returns the number of unexpired entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep(m.now())
	return len(m.entries)
}

func (m *Memory) sweep(now time.Time) {
	for id, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, id)
		}
	}
}

func (m *Memory) evictOldest() {
	var (
		oldest string
		first  time.Time
	)
	for id, e := range m.entries {
		if oldest == "" || e.expires.Before(first) {
			oldest, first = id, e.expires
		}
	}
	delete(m.entries, oldest)
}
