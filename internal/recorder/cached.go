package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"PropertyProspector/internal/logger"
	"PropertyProspector/internal/model"
)

const cacheKeyPrefix = "analysis:"

// NewRedisClient creates a redis client for the analysis cache.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
}

// CachedStore reads analyses through a redis cache in front of another Store.
// Redis failures are logged and never fail the call; the inner store stays authoritative.
type CachedStore struct {
	inner  Store
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStore wraps inner. A non-positive ttl means entries do not expire.
func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration, l *zap.Logger) *CachedStore {
	if ttl < 0 {
		ttl = 0
	}
	return &CachedStore{inner: inner, rdb: rdb, ttl: ttl, logger: logger.OrNop(l)}
}

func cacheKey(id string) string { return cacheKeyPrefix + id }

func (c *CachedStore) Save(ctx context.Context, result model.PropertyAnalysisResult) (string, error) {
	id, err := c.inner.Save(ctx, result)
	if err != nil {
		return "", err
	}
	c.invalidate(ctx, id)
	return id, nil
}

func (c *CachedStore) Load(ctx context.Context, id string) (*model.PropertyAnalysisResult, error) {
	key := cacheKey(id)
	if val, err := c.rdb.Get(ctx, key).Result(); err == nil {
		var cached model.PropertyAnalysisResult
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			return &cached, nil
		}
		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	result, err := c.inner.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(result); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return result, nil
}

func (c *CachedStore) ListByUser(ctx context.Context, userID string) ([]model.AnalysisSummary, error) {
	return c.inner.ListByUser(ctx, userID)
}

func (c *CachedStore) SetFavorite(ctx context.Context, id string, favorite bool) error {
	defer c.invalidate(ctx, id)
	return c.inner.SetFavorite(ctx, id, favorite)
}

func (c *CachedStore) SetNotes(ctx context.Context, id string, notes string) error {
	defer c.invalidate(ctx, id)
	return c.inner.SetNotes(ctx, id, notes)
}

func (c *CachedStore) SetStatus(ctx context.Context, id string, status model.AnalysisStatus) error {
	defer c.invalidate(ctx, id)
	return c.inner.SetStatus(ctx, id, status)
}

// ArchiveStale drops every cached analysis when any record changed status.
func (c *CachedStore) ArchiveStale(ctx context.Context, olderThan time.Time) (int, error) {
	n, err := c.inner.ArchiveStale(ctx, olderThan)
	if err != nil || n == 0 {
		return n, err
	}

	iter := c.rdb.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache scan failed", zap.Error(err))
	}
	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn("cache purge failed", zap.Int("keys", len(keys)), zap.Error(err))
		}
	}
	return n, nil
}

func (c *CachedStore) Close() error {
	return errors.Join(c.inner.Close(), c.rdb.Close())
}

func (c *CachedStore) invalidate(ctx context.Context, id string) {
	if err := c.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
}
