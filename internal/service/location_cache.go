// internal/service/location_cache.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/geo"
	"github.com/AryanKumarOfficial/bloodchain/pkg/redisclient"
)

// LocationCache holds the most recent known coordinate per donor. It is the
// eventually-consistent side table fed by the high-frequency location
// stream: reads never block a matching round, and a stale or missing entry
// means the donor is skipped, not waited for.
//
// Lookups go memory first, then Redis. The Redis layer is optional; with a
// nil client the cache is memory-only.
type LocationCache struct {
	mu     sync.RWMutex
	data   map[string]locationEntry
	redis  *redisclient.Client
	maxAge time.Duration
	logger *zap.Logger
}

type locationEntry struct {
	Coord     geo.Coordinate `json:"coord"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func NewLocationCache(redis *redisclient.Client, maxAge time.Duration, logger *zap.Logger) *LocationCache {
	cache := &LocationCache{
		data:   make(map[string]locationEntry),
		redis:  redis,
		maxAge: maxAge,
		logger: logger,
	}

	// Start cleanup goroutine
	go cache.cleanup()

	return cache
}

// Update writes the donor's latest coordinate through both layers.
// Redis failures are logged; the memory layer always wins.
func (c *LocationCache) Update(ctx context.Context, userID string, coord geo.Coordinate) {
	entry := locationEntry{Coord: coord, UpdatedAt: time.Now()}

	c.mu.Lock()
	c.data[userID] = entry
	c.mu.Unlock()

	if c.redis == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Error("failed to marshal location entry", zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, c.key(userID), data, c.maxAge); err != nil {
		c.logger.Error("failed to cache location in redis",
			zap.Error(err),
			zap.String("user_id", userID))
	}
}

// Get returns the donor's last known coordinate. A missing or stale entry
// yields ok=false; callers treat that as "unknown location".
func (c *LocationCache) Get(ctx context.Context, userID string) (geo.Coordinate, bool) {
	c.mu.RLock()
	entry, exists := c.data[userID]
	c.mu.RUnlock()

	if exists && time.Since(entry.UpdatedAt) <= c.maxAge {
		return entry.Coord, true
	}

	if c.redis == nil {
		return geo.Coordinate{}, false
	}

	data, err := c.redis.Get(ctx, c.key(userID))
	if err != nil {
		return geo.Coordinate{}, false
	}

	var cached locationEntry
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		c.logger.Warn("corrupt location entry in redis",
			zap.String("user_id", userID), zap.Error(err))
		return geo.Coordinate{}, false
	}
	if time.Since(cached.UpdatedAt) > c.maxAge {
		return geo.Coordinate{}, false
	}

	// repopulate the memory layer for the next lookup
	c.mu.Lock()
	c.data[userID] = cached
	c.mu.Unlock()

	return cached.Coord, true
}

// Delete removes the donor's entry from both layers.
func (c *LocationCache) Delete(ctx context.Context, userID string) {
	c.mu.Lock()
	delete(c.data, userID)
	c.mu.Unlock()

	if c.redis != nil {
		if err := c.redis.Delete(ctx, c.key(userID)); err != nil {
			c.logger.Warn("failed to delete location from redis",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// Size returns the number of entries in the memory layer.
func (c *LocationCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *LocationCache) key(userID string) string {
	return fmt.Sprintf("donor:location:%s", userID)
}

// cleanup periodically removes expired entries
func (c *LocationCache) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for userID, entry := range c.data {
			if now.Sub(entry.UpdatedAt) > c.maxAge {
				delete(c.data, userID)
			}
		}
		c.mu.Unlock()
	}
}
