package config

import "time"

// RateLimitConfig configures the token bucket in front of checkout.  Each
// key (client IP, plus the account when authenticated) gets Capacity
// tokens that refill by RefillTokens every RefillInterval.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.
func LoadRateLimitConfig() RateLimitConfig {
	c := RateLimitConfig{
		Enabled:        envBool(getenv("RATE_LIMIT_ENABLED", ""), true),
		Capacity:       envInt(getenv("RATE_LIMIT_CAPACITY", ""), 10),
		RefillTokens:   envInt(getenv("RATE_LIMIT_REFILL_TOKENS", ""), 1),
		RefillInterval: envDur(getenv("RATE_LIMIT_REFILL_INTERVAL", ""), 6*time.Second),
		TTL:            envDur(getenv("RATE_LIMIT_TTL", ""), 10*time.Minute),
		Prefix:         getenv("RATE_LIMIT_PREFIX", "rl:checkout"),
	}
	return c.normalized()
}

func (c RateLimitConfig) normalized() RateLimitConfig {
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	// the bucket must outlive a full refill
	if full := time.Duration(c.Capacity/c.RefillTokens+1) * c.RefillInterval; c.TTL < full {
		c.TTL = full
	}
	return c
}
