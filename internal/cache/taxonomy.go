// Package cache provides a Redis read-through cache for taxonomy lookups.
//
// An import resolves the same handful of attribute names and term names on
// every row, so lookups are cached for a short TTL. Misses are cached too.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/productimport/internal/importer"
)

// KV is the subset of redis.Cmdable used by the cache.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Term slugs are cached with this prefix so an empty value can mean
// "no such term".
const termFound = "="

// TaxonomyCache wraps a TaxonomyResolver. Redis errors are logged and the
// lookup falls through to the wrapped resolver.
type TaxonomyCache struct {
	next   importer.TaxonomyResolver
	kv     KV
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewTaxonomyCache creates a cache in front of next.
func NewTaxonomyCache(next importer.TaxonomyResolver, kv KV, ttl time.Duration, logger *slog.Logger) *TaxonomyCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaxonomyCache{next: next, kv: kv, ttl: ttl, prefix: "productimport:tax:", logger: logger}
}

func (c *TaxonomyCache) AttributeTaxonomyID(ctx context.Context, name string) (int64, error) {
	key := c.prefix + "id:" + name
	if v, ok := c.get(ctx, key); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return id, nil
		}
	}

	id, err := c.next.AttributeTaxonomyID(ctx, name)
	if err != nil {
		return 0, err
	}
	c.set(ctx, key, strconv.FormatInt(id, 10))
	return id, nil
}

func (c *TaxonomyCache) AttributeTaxonomyName(ctx context.Context, id int64) (string, error) {
	key := c.prefix + "name:" + strconv.FormatInt(id, 10)
	if v, ok := c.get(ctx, key); ok {
		return v, nil
	}

	name, err := c.next.AttributeTaxonomyName(ctx, id)
	if err != nil {
		return "", err
	}
	c.set(ctx, key, name)
	return name, nil
}

func (c *TaxonomyCache) TermSlug(ctx context.Context, taxonomy, name string) (string, bool, error) {
	key := c.prefix + "term:" + taxonomy + ":" + name
	if v, ok := c.get(ctx, key); ok {
		if v == "" {
			return "", false, nil
		}
		if slug, ok := strings.CutPrefix(v, termFound); ok {
			return slug, true, nil
		}
	}

	slug, found, err := c.next.TermSlug(ctx, taxonomy, name)
	if err != nil {
		return "", false, err
	}
	if found {
		c.set(ctx, key, termFound+slug)
	} else {
		c.set(ctx, key, "")
	}
	return slug, found, nil
}

func (c *TaxonomyCache) get(ctx context.Context, key string) (string, bool) {
	v, err := c.kv.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.logger.Warn("taxonomy cache read failed", "key", key, "error", err)
		return "", false
	}
	return v, true
}

func (c *TaxonomyCache) set(ctx context.Context, key, value string) {
	if err := c.kv.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("taxonomy cache write failed", "key", key, "error", err)
	}
}
