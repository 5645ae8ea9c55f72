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

// Package manager provides the cache manager that orchestrates the cache levels.
package manager

import (
	"time"

	"github.com/my-own-web-services/filez/internal/system/cache/l1cache"
	"github.com/my-own-web-services/filez/internal/system/cache/l2cache"
	"github.com/my-own-web-services/filez/internal/system/cache/model"
	"github.com/my-own-web-services/filez/internal/system/config"
	"github.com/my-own-web-services/filez/internal/system/log"
)

const loggerComponentName = "CacheManager"

// CacheManagerInterface defines the layered cache contract used by services.
type CacheManagerInterface[T any] interface {
	Set(key model.CacheKey, value T) error
	Get(key model.CacheKey) (T, bool)
	Delete(key model.CacheKey) error
	Clear() error
	IsEnabled() bool
}

// CacheManager composes the in-memory L1 and the distributed L2 cache. Reads
// hit L1 first; an L2 hit is promoted into L1 before returning.
type CacheManager[T any] struct {
	enabled bool
	l1Cache model.CacheInterface[T]
	l2Cache model.CacheInterface[T]
}

// NewCacheManager creates a cache manager for the given entity namespace,
// reading the layer configuration from the runtime config.
func NewCacheManager[T any](namespace string) CacheManagerInterface[T] {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	cacheConfig := config.GetFilezRuntime().Config.Cache
	if !cacheConfig.L1.Enabled && !cacheConfig.L2.Enabled {
		logger.Debug("Cache system is disabled", log.String("namespace", namespace))
		return &CacheManager[T]{enabled: false}
	}

	return &CacheManager[T]{
		enabled: true,
		l1Cache: l1cache.NewL1Cache[T](
			cacheConfig.L1.Enabled,
			cacheConfig.L1.MaxSize,
			time.Duration(cacheConfig.L1.TTLSeconds)*time.Second,
		),
		l2Cache: l2cache.NewL2Cache[T](cacheConfig.L2, namespace),
	}
}

// Set stores a value in every enabled cache level.
func (cm *CacheManager[T]) Set(key model.CacheKey, value T) error {
	if !cm.enabled {
		return nil
	}
	if err := cm.l1Cache.Set(key, value); err != nil {
		return err
	}
	return cm.l2Cache.Set(key, value)
}

// Get retrieves a value, trying L1 before L2 and promoting L2 hits.
func (cm *CacheManager[T]) Get(key model.CacheKey) (T, bool) {
	if !cm.enabled {
		var zero T
		return zero, false
	}

	if value, found := cm.l1Cache.Get(key); found {
		return value, true
	}

	if value, found := cm.l2Cache.Get(key); found {
		logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))
		if err := cm.l1Cache.Set(key, value); err != nil {
			logger.Error("Failed to promote cache entry to L1", log.String("key", key.ToString()), log.Error(err))
		}
		return value, true
	}

	var zero T
	return zero, false
}

// Delete removes an entry from every cache level.
func (cm *CacheManager[T]) Delete(key model.CacheKey) error {
	if !cm.enabled {
		return nil
	}
	if err := cm.l1Cache.Delete(key); err != nil {
		return err
	}
	return cm.l2Cache.Delete(key)
}

// Clear removes all entries from every cache level.
func (cm *CacheManager[T]) Clear() error {
	if !cm.enabled {
		return nil
	}
	if err := cm.l1Cache.Clear(); err != nil {
		return err
	}
	return cm.l2Cache.Clear()
}

// IsEnabled returns whether any cache level is enabled.
func (cm *CacheManager[T]) IsEnabled() bool {
	return cm.enabled
}
