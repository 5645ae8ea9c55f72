/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package l2cache provides the implementation for L2 caching backed by Redis.
package l2cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/my-own-web-services/filez/internal/system/cache/constants"
	"github.com/my-own-web-services/filez/internal/system/cache/model"
	"github.com/my-own-web-services/filez/internal/system/config"
	"github.com/my-own-web-services/filez/internal/system/log"
)

const loggerComponentName = "L2Cache"

// L2Cache implements the CacheInterface over a shared Redis instance so that
// cache entries survive process restarts and are shared across replicas.
// Values are stored JSON-encoded under a namespaced key.
type L2Cache[T any] struct {
	enabled bool
	client  *redis.Client
	prefix  string
	ttl     time.Duration
}

// NewL2Cache creates a new L2 cache over the configured Redis backend. The
// namespace isolates caches of different entity kinds from each other.
func NewL2Cache[T any](cfg config.CacheLevelConfig, namespace string) model.CacheInterface[T] {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	if !cfg.Enabled {
		logger.Debug("L2 cache is disabled")
		return &L2Cache[T]{enabled: false}
	}
	if cfg.Address == "" {
		logger.Warn("L2 cache is enabled but no address is configured, disabling")
		return &L2Cache[T]{enabled: false}
	}

	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = constants.L2DefaultTTL * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	logger.Debug("Initializing L2 cache", log.String("address", cfg.Address),
		log.String("namespace", namespace), log.Any("ttl", ttl))

	return &L2Cache[T]{
		enabled: true,
		client:  client,
		prefix:  "filez:cache:" + namespace + ":",
		ttl:     ttl,
	}
}

// Set adds or updates an entry in the L2 cache.
func (l2 *L2Cache[T]) Set(key model.CacheKey, value T) error {
	if !l2.enabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	if err := l2.client.Set(context.Background(), l2.prefix+key.ToString(), data, l2.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set L2 cache entry: %w", err)
	}
	return nil
}

// Get retrieves a value from the L2 cache. Backend failures are reported as
// misses so that callers fall through to the source of truth.
func (l2 *L2Cache[T]) Get(key model.CacheKey) (T, bool) {
	var zero T
	if !l2.enabled {
		return zero, false
	}

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	data, err := l2.client.Get(context.Background(), l2.prefix+key.ToString()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error("Failed to read L2 cache entry", log.String("key", key.ToString()), log.Error(err))
		}
		return zero, false
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		logger.Error("Failed to unmarshal L2 cache entry", log.String("key", key.ToString()), log.Error(err))
		return zero, false
	}

	return value, true
}

// Delete removes an entry from the L2 cache.
func (l2 *L2Cache[T]) Delete(key model.CacheKey) error {
	if !l2.enabled {
		return nil
	}
	if err := l2.client.Del(context.Background(), l2.prefix+key.ToString()).Err(); err != nil {
		return fmt.Errorf("failed to delete L2 cache entry: %w", err)
	}
	return nil
}

// Clear removes all entries in this cache's namespace.
func (l2 *L2Cache[T]) Clear() error {
	if !l2.enabled {
		return nil
	}

	ctx := context.Background()
	iter := l2.client.Scan(ctx, 0, l2.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := l2.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to clear L2 cache entry: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan L2 cache namespace: %w", err)
	}
	return nil
}

// IsEnabled returns whether the cache is enabled.
func (l2 *L2Cache[T]) IsEnabled() bool {
	return l2.enabled
}

// GetStats returns cache statistics. The L2 level keeps no hit, miss or
// eviction counters; only Enabled is reported.
func (l2 *L2Cache[T]) GetStats() model.CacheStat {
	return model.CacheStat{Enabled: l2.enabled}
}
