package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/quillhaven/journal-backend/internal/platform/envutil"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
	"github.com/quillhaven/journal-backend/internal/summarize"
)

// SummaryCache holds generated summary trees keyed by the combined content
// hash of the entries that produced them. Keys carry only hashes, never text
// from the entries themselves.
type SummaryCache interface {
	Get(ctx context.Context, key string) (*summarize.SummaryTree, bool, error)
	Set(ctx context.Context, key string, tree *summarize.SummaryTree) error
	Invalidate(ctx context.Context, keys ...string) error
	Close() error
}

type summaryCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewSummaryCache(log *logger.Logger) (SummaryCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(envutil.Str("REDIS_ADDR", ""))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttl := envutil.Duration("SUMMARY_CACHE_TTL", 24*time.Hour)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &summaryCache{
		log: log.With("service", "RedisSummaryCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func cacheKey(key string) string {
	return "summary_tree:" + key
}

func (c *summaryCache) Get(ctx context.Context, key string) (*summarize.SummaryTree, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, fmt.Errorf("summary cache not initialized")
	}
	raw, err := c.rdb.Get(ctx, cacheKey(key)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var tree summarize.SummaryTree
	if err := json.Unmarshal(raw, &tree); err != nil {
		// A corrupt payload is treated as a miss and dropped.
		c.log.Warn("Dropping unreadable cached summary tree", "error", err)
		_ = c.rdb.Del(ctx, cacheKey(key)).Err()
		return nil, false, nil
	}
	return &tree, true, nil
}

func (c *summaryCache) Set(ctx context.Context, key string, tree *summarize.SummaryTree) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("summary cache not initialized")
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(key), raw, c.ttl).Err()
}

func (c *summaryCache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("summary cache not initialized")
	}
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, cacheKey(k))
	}
	return c.rdb.Del(ctx, full...).Err()
}

func (c *summaryCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
