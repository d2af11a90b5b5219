package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/commjoen/whoisintel/pkg/models"
)

// Memory is an in-process Store. Expired entries are dropped lazily on
// read, so no background sweeper is needed.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	hits    atomic.Int64
	misses  atomic.Int64
}

type memoryEntry struct {
	result    *models.LookupResult
	expiresAt time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*memoryEntry),
	}
}

// Get returns the stored result for key, or nil past its TTL.
func (m *Memory) Get(ctx context.Context, key string) (*models.LookupResult, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		m.misses.Add(1)
		return nil, nil
	}
	m.hits.Add(1)
	return entry.result, nil
}

// Set stores a result under key for the given TTL.
func (m *Memory) Set(ctx context.Context, key string, result *models.LookupResult, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = &memoryEntry{
		result:    result,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes a single entry.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Clear removes all entries.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*memoryEntry)
	return nil
}

// Stats reports live (unexpired) key count and hit/miss counters.
func (m *Memory) Stats(ctx context.Context) (models.CacheStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	keys := 0
	for _, entry := range m.entries {
		if now.Before(entry.expiresAt) {
			keys++
		}
	}
	return models.CacheStats{
		Keys:   keys,
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
	}, nil
}
