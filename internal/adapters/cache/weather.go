// Package cache provides a Redis read-through cache for daily weather.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key the cache writes.
const KeyPrefix = "fairway:weather:"

// DefaultTTL is how long a cached day is kept when no TTL is configured.
const DefaultTTL = time.Hour

// Client is the subset of the go-redis client the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// WeatherLoader loads weather from the system of record.
type WeatherLoader interface {
	WeatherOn(ctx context.Context, date time.Time) (model.Weather, error)
}

// WeatherCache serves weather from Redis and falls back to the loader on a
// miss or on any Redis failure. Misses populate the cache; lookups that find
// no weather are not cached.
type WeatherCache struct {
	client Client
	next   WeatherLoader
	ttl    time.Duration
	logger logger.Logger
}

// NewWeatherCache creates a cache in front of next.
func NewWeatherCache(client Client, next WeatherLoader, opts ...Option) *WeatherCache {
	c := &WeatherCache{
		client: client,
		next:   next,
		ttl:    DefaultTTL,
		logger: logger.Get().Named("weather_cache"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Key returns the cache key for a date.
func Key(date time.Time) string {
	return KeyPrefix + date.Format(time.DateOnly)
}

// WeatherOn implements WeatherLoader.
func (c *WeatherCache) WeatherOn(ctx context.Context, date time.Time) (model.Weather, error) {
	key := Key(date)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var w model.Weather
		jerr := json.Unmarshal(raw, &w)
		if jerr == nil {
			metrics.RecordCacheHit()
			return w, nil
		}
		c.logger.Warn(ctx, "discarding undecodable cache entry", logger.String("key", key), logger.Error(jerr))
	case errors.Is(err, redis.Nil):
	default:
		metrics.RecordErrorByComponent("weather_cache", "get")
		c.logger.Warn(ctx, "weather cache read failed", logger.String("key", key), logger.Error(err))
	}
	metrics.RecordCacheMiss()

	w, err := c.next.WeatherOn(ctx, date)
	if err != nil {
		return model.Weather{}, err
	}

	data, err := json.Marshal(w)
	if err != nil {
		return w, nil //nolint:nilerr // a value that cannot be cached is still served
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		metrics.RecordErrorByComponent("weather_cache", "set")
		c.logger.Warn(ctx, "weather cache write failed", logger.String("key", key), logger.Error(err))
	}
	return w, nil
}

// Connect parses a redis:// URL, creates a client and pings it.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
