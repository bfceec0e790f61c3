package repository

import (
	"context"
	"maps"
	"sync"
	"time"
)

type MemorySettingsCache struct {
	mu        sync.RWMutex
	values    map[string]string
	expiresAt time.Time
	ttl       time.Duration
}

func NewMemorySettingsCache(ttl time.Duration) *MemorySettingsCache {
	return &MemorySettingsCache{ttl: ttl}
}

func (c *MemorySettingsCache) GetAll(ctx context.Context) (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.values == nil || time.Now().After(c.expiresAt) {
		return nil, nil
	}
	return maps.Clone(c.values), nil
}

func (c *MemorySettingsCache) SetAll(ctx context.Context, values map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values = maps.Clone(values)
	c.expiresAt = time.Now().Add(c.ttl)
	return nil
}

func (c *MemorySettingsCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values = nil
	return nil
}
