package store

import (
	"context"
	"sync"

	"github.com/JonMunkholm/menuconv/internal/core"
)

// DefaultHistorySize is the number of records kept by Memory.
const DefaultHistorySize = 100

// Memory is a process-local store. The counter resets on restart.
type Memory struct {
	mu      sync.Mutex
	total   int64
	history []core.ConversionRecord
	max     int
}

var _ core.Store = (*Memory)(nil)

// NewMemory returns an empty store keeping the last maxHistory records.
func NewMemory(maxHistory int) *Memory {
	if maxHistory <= 0 {
		maxHistory = DefaultHistorySize
	}
	return &Memory{max: maxHistory}
}

func (m *Memory) Increment(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total++
	return m.total, nil
}

func (m *Memory) Total(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total, nil
}

func (m *Memory) RecordConversion(_ context.Context, rec core.ConversionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, rec)
	if over := len(m.history) - m.max; over > 0 {
		m.history = append(m.history[:0:0], m.history[over:]...)
	}
	return nil
}

// RecentConversions returns up to limit records, newest first.
func (m *Memory) RecentConversions(_ context.Context, limit int) ([]core.ConversionRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.ConversionRecord, 0, min(limit, len(m.history)))
	for i := len(m.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.history[i])
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
