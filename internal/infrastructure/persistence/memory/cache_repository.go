// Package memory provides in-memory cache repository implementation
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alchemorsel/foodgram/internal/ports/outbound"
)

// DefaultTTL applies when Set is called with a zero ttl.
const DefaultTTL = 24 * time.Hour

// CacheItem represents a cached item
type CacheItem struct {
	Value     []byte
	ExpiresAt time.Time
}

func (i CacheItem) expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// CacheRepository implements in-memory cache repository
type CacheRepository struct {
	data  map[string]CacheItem
	mutex sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates a new in-memory cache repository. Expired
// entries are swept every cleanupInterval until Close is called; a
// non-positive interval disables the sweeper.
func NewCacheRepository(cleanupInterval time.Duration) *CacheRepository {
	repo := &CacheRepository{
		data: make(map[string]CacheItem),
		stop: make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go repo.cleanup(cleanupInterval)
	}

	return repo
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mutex.RLock()
	item, exists := r.data[key]
	r.mutex.RUnlock()

	if !exists {
		return nil, outbound.ErrCacheMiss
	}

	if item.expired(time.Now()) {
		r.mutex.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if current, ok := r.data[key]; ok && current.expired(time.Now()) {
			delete(r.data, key)
		}
		r.mutex.Unlock()
		return nil, outbound.ErrCacheMiss
	}

	return item.Value, nil
}

// Set stores a value in cache with TTL
func (r *CacheRepository) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.data[key] = CacheItem{
		Value:     append([]byte(nil), value...),
		ExpiresAt: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes keys from cache
func (r *CacheRepository) Delete(_ context.Context, keys ...string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, key := range keys {
		delete(r.data, key)
	}
	return nil
}

// DeleteByPrefix removes every key starting with prefix
func (r *CacheRepository) DeleteByPrefix(_ context.Context, prefix string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for key := range r.data {
		if strings.HasPrefix(key, prefix) {
			delete(r.data, key)
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included
func (r *CacheRepository) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.data)
}

// Close stops the cleanup goroutine
func (r *CacheRepository) Close() error {
	r.once.Do(func() { close(r.stop) })
	return nil
}

// cleanup removes expired items
func (r *CacheRepository) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweep(time.Now())
		}
	}
}

func (r *CacheRepository) sweep(now time.Time) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for key, item := range r.data {
		if item.expired(now) {
			delete(r.data, key)
		}
	}
}
