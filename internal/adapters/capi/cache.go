package capi

import (
	"sync"

	"go.trai.ch/corepm/internal/core/domain"
	"golang.org/x/sync/singleflight"
)

// descriptionCache holds parsed cores keyed by absolute path. Concurrent
// requests for the same path share one parse; failures are not cached.
type descriptionCache struct {
	mu      sync.RWMutex
	entries map[string]*domain.Core
	group   singleflight.Group
}

func (c *descriptionCache) get(path string, load func() (*domain.Core, error)) (*domain.Core, error) {
	c.mu.RLock()
	core, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return core, nil
	}

	v, err, _ := c.group.Do(path, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.entries[path]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		loaded, err := load()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.entries == nil {
			c.entries = make(map[string]*domain.Core)
		}
		c.entries[path] = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Core), nil //nolint:forcetypeassert // only cores are stored
}

// size returns the number of cached descriptions.
func (c *descriptionCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
