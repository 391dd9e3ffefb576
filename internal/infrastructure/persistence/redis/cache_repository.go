// Package redis provides the Redis-backed catalog cache. Calls go through a
// circuit breaker; while Redis is unavailable the repository serves from an
// in-process fallback cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/internal/infrastructure/config"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
)

const (
	keyPrefix = "foodgram:"
	scanBatch = 200
)

// BreakerSettings tunes the circuit breaker.
type BreakerSettings struct {
	MaxFailures uint32
	Timeout     time.Duration
}

// CacheRepository implements outbound.CacheRepository on Redis
type CacheRepository struct {
	client   redis.UniversalClient
	breaker  *gobreaker.CircuitBreaker[[]byte]
	fallback outbound.CacheRepository
	logger   *zap.Logger
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// NewClient builds a Redis client from configuration
func NewClient(cfg config.RedisConfig) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{cfg.Addr()},
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  10 * time.Second,
	})
}

// NewCacheRepository wraps client with a circuit breaker. fallback serves
// reads and writes while the breaker is open or Redis fails.
func NewCacheRepository(client redis.UniversalClient, fallback outbound.CacheRepository, settings BreakerSettings, logger *zap.Logger) *CacheRepository {
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 5
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	log := logger.Named("redis-cache")

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &CacheRepository{
		client:   client,
		breaker:  breaker,
		fallback: fallback,
		logger:   log,
	}
}

// State reports the breaker state, for health checks.
func (r *CacheRepository) State() gobreaker.State {
	return r.breaker.State()
}

// Get retrieves a value from Redis, or from the fallback when Redis is unavailable
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.breaker.Execute(func() ([]byte, error) {
		return r.client.Get(ctx, keyPrefix+key).Bytes()
	})
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, redis.Nil):
		return nil, outbound.ErrCacheMiss
	default:
		r.logger.Debug("Cache get degraded to fallback", zap.String("key", key), zap.Error(err))
		return r.fallback.Get(ctx, key)
	}
}

// Set stores a value with TTL. The fallback is always written so it stays
// warm for the next outage.
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.fallback.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	_, err := r.breaker.Execute(func() ([]byte, error) {
		return nil, r.client.Set(ctx, keyPrefix+key, value, ttl).Err()
	})
	if err != nil {
		r.logger.Debug("Cache set skipped redis", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// Delete removes keys from Redis and the fallback
func (r *CacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.fallback.Delete(ctx, keys...); err != nil {
		return err
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = keyPrefix + key
	}
	_, err := r.breaker.Execute(func() ([]byte, error) {
		return nil, r.client.Del(ctx, prefixed...).Err()
	})
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// DeleteByPrefix removes every key starting with prefix using SCAN
func (r *CacheRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	if err := r.fallback.DeleteByPrefix(ctx, prefix); err != nil {
		return err
	}

	_, err := r.breaker.Execute(func() ([]byte, error) {
		iter := r.client.Scan(ctx, 0, keyPrefix+prefix+"*", scanBatch).Iterator()
		batch := make([]string, 0, scanBatch)
		for iter.Next(ctx) {
			batch = append(batch, iter.Val())
			if len(batch) == scanBatch {
				if err := r.client.Del(ctx, batch...).Err(); err != nil {
					return nil, err
				}
				batch = batch[:0]
			}
		}
		if err := iter.Err(); err != nil {
			return nil, err
		}
		if len(batch) > 0 {
			return nil, r.client.Del(ctx, batch...).Err()
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("cache delete by prefix: %w", err)
	}
	return nil
}

// Ping checks connectivity without going through the breaker
func (r *CacheRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (r *CacheRepository) Close() error {
	return r.client.Close()
}
