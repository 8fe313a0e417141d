package config

import "time"

// CacheConfig configures the Redis response cache used for the public
// product listing.  Slot availability and checkout are never cached.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool(getenv("CACHE_ENABLED", ""), true),
		TTL:          envDur(getenv("CACHE_TTL", ""), 30*time.Second),
		Prefix:       getenv("CACHE_PREFIX", "cache:catalog"),
		MaxBodyBytes: envInt(getenv("CACHE_MAX_BODY_BYTES", ""), 1<<20),
	}
}
