package service

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/propelre/leadpulse/internal/catalog/domain"
	"github.com/propelre/leadpulse/internal/config"
	"github.com/propelre/leadpulse/internal/matching/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const matchCacheTTL = 10 * time.Minute

// NewRedis returns nil when no address is configured; the matcher then runs
// uncached.
func NewRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

// matchCache is a read-through cache over redis. It is never authoritative:
// any redis failure degrades to recomputing the match.
type matchCache struct {
	rdb *redis.Client
	log *zap.Logger
}

func newMatchCache(rdb *redis.Client, log *zap.Logger) *matchCache {
	return &matchCache{rdb: rdb, log: log.Named("matching.cache")}
}

func (c *matchCache) get(ctx context.Context, key string) ([]domain.MatchResult, bool) {
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var results []domain.MatchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		c.log.Debug("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return results, true
}

func (c *matchCache) set(ctx context.Context, key string, results []domain.MatchResult) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, matchCacheTTL).Err(); err != nil {
		c.log.Debug("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey fingerprints the candidate set and config so a stale candidate
// list can never serve another request's ranking.
func cacheKey(buyerID snowflake.ID, candidates []catalogdomain.Property, cfg domain.MatchConfig) string {
	h := fnv.New64a()
	for _, property := range candidates {
		fmt.Fprintf(h, "%d:%s;", property.ID, property.UpdatedAt.UTC().Format(time.RFC3339))
	}
	cfgRaw, _ := json.Marshal(cfg)
	h.Write(cfgRaw)
	return fmt.Sprintf("leadpulse:match:%d:%x", buyerID, h.Sum64())
}
