package submission

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/iwvelando/lead-intake/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "leadintake:submission:"

// NewRedisClient creates a client for the configured Redis instance.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
}

// CachedStore is a read-through Redis cache in front of another Store.
// Cache failures are logged and never fail the request.
type CachedStore struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStore wraps next with a Redis cache.
func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{next: next, client: client, ttl: ttl, logger: logger}
}

// Insert writes through to the backing store and then populates the cache.
func (c *CachedStore) Insert(ctx context.Context, s Submission) error {
	if err := c.next.Insert(ctx, s); err != nil {
		return err
	}
	c.put(ctx, s)
	return nil
}

// List always reads from the backing store.
func (c *CachedStore) List(ctx context.Context) ([]Submission, error) {
	return c.next.List(ctx)
}

// Get serves from the cache when possible.
func (c *CachedStore) Get(ctx context.Context, id string) (Submission, error) {
	raw, err := c.client.Get(ctx, cacheKeyPrefix+id).Bytes()
	if err == nil {
		var s Submission
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, nil
		}
		c.logger.Warn("discarding undecodable cache entry",
			zap.String("op", "submission.CachedStore.Get"),
			zap.String("id", id))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache read failed",
			zap.String("op", "submission.CachedStore.Get"),
			zap.String("id", id),
			zap.Error(err))
	}

	s, err := c.next.Get(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	c.put(ctx, s)
	return s, nil
}

// Delete removes from the backing store and invalidates the cache entry.
func (c *CachedStore) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	if err := c.client.Del(ctx, cacheKeyPrefix+id).Err(); err != nil {
		c.logger.Warn("cache invalidation failed",
			zap.String("op", "submission.CachedStore.Delete"),
			zap.String("id", id),
			zap.Error(err))
	}
	return nil
}

// Ping checks Redis and, when supported, the backing store.
func (c *CachedStore) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return err
	}
	if p, ok := c.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *CachedStore) put(ctx context.Context, s Submission) {
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+s.ID, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed",
			zap.String("op", "submission.CachedStore.put"),
			zap.String("id", s.ID),
			zap.Error(err))
	}
}
