package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/scid-pd-engine/internal/domain"
)

const profileKeyPrefix = "scid_pd:profile:"

// CachedStore fronts a Store with two read-through tiers: an in-process LRU of decoded
// profiles and an optional Redis cache of their JSON encoding. Saves write through both tiers.
type CachedStore struct {
	next     Store
	memory   *lru.Cache[string, []byte]
	redis    redis.UniversalClient
	redisTTL time.Duration
	logger   *logrus.Logger
	stats    cacheCounters
}

type cacheCounters struct {
	memoryHits  atomic.Int64
	redisHits   atomic.Int64
	misses      atomic.Int64
	redisErrors atomic.Int64
}

// CacheStats is a snapshot of cache effectiveness.
type CacheStats struct {
	MemoryHits  int64 `json:"memory_hits"`
	RedisHits   int64 `json:"redis_hits"`
	Misses      int64 `json:"misses"`
	RedisErrors int64 `json:"redis_errors"`
}

// NewRedisClient builds a Redis client from the cache configuration.
func NewRedisClient(cfg domain.CacheConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.PoolTimeout > 0 {
		opts.PoolTimeout = cfg.PoolTimeout
	}
	return redis.NewClient(opts), nil
}

// NewCachedStore wraps next. redisClient may be nil, in which case only the memory tier is used.
func NewCachedStore(next Store, memorySize int, redisClient redis.UniversalClient, redisTTL time.Duration, logger *logrus.Logger) (*CachedStore, error) {
	memory, err := lru.New[string, []byte](memorySize)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &CachedStore{
		next:     next,
		memory:   memory,
		redis:    redisClient,
		redisTTL: redisTTL,
		logger:   logger,
	}, nil
}

// Stats returns the cache counters.
func (s *CachedStore) Stats() CacheStats {
	return CacheStats{
		MemoryHits:  s.stats.memoryHits.Load(),
		RedisHits:   s.stats.redisHits.Load(),
		Misses:      s.stats.misses.Load(),
		RedisErrors: s.stats.redisErrors.Load(),
	}
}

// SaveProfile writes to the backing store, then to both cache tiers.
func (s *CachedStore) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	if err := s.next.SaveProfile(ctx, profile); err != nil {
		return err
	}
	data, err := marshalProfile(profile)
	if err != nil {
		return err
	}
	s.memory.Add(profile.ID, data)
	s.setInRedis(ctx, profile.ID, data)
	return nil
}

// GetProfile reads memory, then Redis, then the backing store.
func (s *CachedStore) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	if data, ok := s.memory.Get(id); ok {
		s.stats.memoryHits.Add(1)
		return unmarshalProfile(data)
	}

	if data := s.getFromRedis(ctx, id); data != nil {
		s.stats.redisHits.Add(1)
		s.logger.WithFields(logrus.Fields{
			"profile_id": id,
			"cache_tier": "redis",
		}).Debug("Cache hit in Redis")
		s.memory.Add(id, data)
		return unmarshalProfile(data)
	}

	s.stats.misses.Add(1)
	profile, err := s.next.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := marshalProfile(profile); err == nil {
		s.memory.Add(id, data)
		s.setInRedis(ctx, id, data)
	}
	return profile, nil
}

// ListProfiles is served by the backing store.
func (s *CachedStore) ListProfiles(ctx context.Context, limit, offset int) ([]*domain.Profile, error) {
	return s.next.ListProfiles(ctx, limit, offset)
}

// CountProfiles is served by the backing store.
func (s *CachedStore) CountProfiles(ctx context.Context) (int, error) {
	return s.next.CountProfiles(ctx)
}

// DeleteProfile deletes from the backing store and evicts both tiers.
// DeleteProfile deletes from the backing store before evicting, so a concurrent read cannot
// re-warm the caches with the deleted profile.
func (s *CachedStore) DeleteProfile(ctx context.Context, id string) error {
	err := s.next.DeleteProfile(ctx, id)

	s.memory.Remove(id)
	if s.redis != nil {
		if rerr := s.redis.Del(ctx, profileKeyPrefix+id).Err(); rerr != nil {
			s.redisFailure(rerr, "del", id)
		}
	}
	return err
}

// ExportJSON exports from the backing store.
func (s *CachedStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	return s.next.ExportJSON(ctx, writer)
}

// ImportJSON imports through the cache so imported profiles are warm.
func (s *CachedStore) ImportJSON(ctx context.Context, reader io.Reader) (int, int, error) {
	return importJSON(ctx, s, reader)
}

// Close closes the backing store. The Redis client is owned by the caller.
func (s *CachedStore) Close() error {
	s.memory.Purge()
	return s.next.Close()
}

func (s *CachedStore) getFromRedis(ctx context.Context, id string) []byte {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, profileKeyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.redisFailure(err, "get", id)
		}
		return nil
	}
	return data
}

func (s *CachedStore) setInRedis(ctx context.Context, id string, data []byte) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, profileKeyPrefix+id, data, s.redisTTL).Err(); err != nil {
		s.redisFailure(err, "set", id)
	}
}

func (s *CachedStore) redisFailure(err error, op, id string) {
	s.stats.redisErrors.Add(1)
	s.logger.WithFields(logrus.Fields{
		"profile_id": id,
		"operation":  op,
		"error":      err.Error(),
	}).Warn("Redis cache operation failed")
}

var _ Store = (*CachedStore)(nil)
