package recurrence

import (
	"time"
)

// CacheConfig holds configuration for the compiled rule cache
type CacheConfig struct {
	TTL             time.Duration // How long a compiled rule stays cached
	MaxEntries      int           // Maximum number of entries before eviction
	CleanupInterval time.Duration // How often to sweep expired entries (0 disables the sweeper)
}

// DefaultCacheConfig suits a single form or service instance
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

// HighPerformanceCacheConfig keeps more rules around for longer
var HighPerformanceCacheConfig = CacheConfig{
	TTL:             30 * time.Minute,
	MaxEntries:      5000,
	CleanupInterval: 10 * time.Minute,
}

// LowMemoryCacheConfig is optimized for memory-constrained environments
var LowMemoryCacheConfig = CacheConfig{
	TTL:             5 * time.Minute,
	MaxEntries:      100,
	CleanupInterval: 2 * time.Minute,
}
