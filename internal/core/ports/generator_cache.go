package ports

import "go.trai.ch/corepm/internal/core/domain"

// GeneratorCache defines the interface for the persistent generator output cache.
//
//go:generate go run go.uber.org/mock/mockgen -source=generator_cache.go -destination=mocks/mock_generator_cache.go -package=mocks
type GeneratorCache interface {
	// Lookup returns the directory holding the cached output for key.
	// It returns "", false, nil when the key is not cached.
	Lookup(cacheRoot, key string) (string, bool, error)

	// Commit atomically moves scratchDir into the cache under key and records it.
	// It returns the final directory.
	Commit(cacheRoot, scratchDir string, entry domain.GeneratorCacheEntry) (string, error)

	// Entries lists the committed cache entries.
	Entries(cacheRoot string) ([]domain.GeneratorCacheEntry, error)
}
