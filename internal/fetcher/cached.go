package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
)

// RedisCache is the subset of *redis.Client the cache needs.
type RedisCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Cached serves recent upstream entries from redis. Only successful
// upstream responses that synthesize cleanly are stored; cache errors fall
// through to upstream.
type Cached struct {
	next   SentimentSource
	cache  RedisCache
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCached wraps next with a read-through cache under key.
func NewCached(next SentimentSource, cache RedisCache, key string, ttl time.Duration, logger zerolog.Logger) *Cached {
	return &Cached{
		next:   next,
		cache:  cache,
		key:    key,
		ttl:    ttl,
		logger: logger.With().Str("component", "fng_cache").Str("key", key).Logger(),
	}
}

// NewRedisClient builds a client from either host:port or a redis:// URL.
func NewRedisClient(addr string) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

// FetchEntries returns cached entries when present, otherwise calls upstream.
func (c *Cached) FetchEntries(ctx context.Context) ([]sentiment.RawEntry, error) {
	data, err := c.cache.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var entries []sentiment.RawEntry
		if jsonErr := json.Unmarshal(data, &entries); jsonErr == nil {
			c.logger.Debug().Int("rows", len(entries)).Msg("cache hit")
			return entries, nil
		}
		c.logger.Warn().Msg("discarding undecodable cache entry")
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn().Err(err).Msg("cache read failed; using upstream")
	}

	entries, err := c.next.FetchEntries(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := sentiment.Synthesize(entries); err != nil {
		c.logger.Warn().Err(err).Msg("upstream payload rejected; not caching")
		return entries, nil
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := c.cache.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Msg("cache write failed")
		}
	}
	return entries, nil
}

var _ SentimentSource = (*Cached)(nil)
