package rediscache

import (
	"context"
	"sync"
	"time"
)

const (
	memorySweepEvery = 128
	memoryMaxEntries = 10000
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process stand-in for the Redis cache, used when no
// Redis address is configured and in tests. Expired entries are dropped
// lazily on read and swept periodically on write; the entry count is
// bounded, with the oldest entries dropped first once full.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	order   []string
	writes  int
	max     int
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		max:     memoryMaxEntries,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if m.expired(entry) {
		delete(m.entries, key)
		return "", false
	}
	return entry.value, true
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}
	if _, exists := m.entries[key]; !exists {
		m.order = append(m.order, key)
	}
	m.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	m.evictLocked()

	m.writes++
	if m.writes%memorySweepEvery == 0 {
		m.sweepLocked()
	}
	return true
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *Memory) Exists(ctx context.Context, key string) bool {
	_, ok := m.Get(ctx, key)
	return ok
}

func (m *Memory) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt)
}

func (m *Memory) evictLocked() {
	for len(m.entries) > m.max && len(m.order) > 0 {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}
}

func (m *Memory) sweepLocked() {
	for key, entry := range m.entries {
		if m.expired(entry) {
			delete(m.entries, key)
		}
	}
	// Drop order slots whose entries were expired or deleted so the
	// slice cannot outgrow the map.
	if len(m.order) > len(m.entries) {
		kept := m.order[:0]
		for _, key := range m.order {
			if _, ok := m.entries[key]; ok {
				kept = append(kept, key)
			}
		}
		m.order = kept
	}
}
