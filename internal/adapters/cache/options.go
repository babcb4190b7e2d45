package cache

import (
	"time"

	"github.com/okian/fairway/pkg/logger"
)

// Option applies a configuration option to the WeatherCache.
type Option func(*WeatherCache)

// WithTTL sets how long cached entries live.
func WithTTL(ttl time.Duration) Option {
	return func(c *WeatherCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger for the cache.
func WithLogger(l logger.Logger) Option {
	return func(c *WeatherCache) {
		if l != nil {
			c.logger = l
		}
	}
}
