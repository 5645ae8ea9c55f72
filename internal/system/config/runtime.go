/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
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

package config

import (
	"errors"
	"sync"
)

// FilezRuntime holds the process-wide runtime configuration. It is initialized
// once at startup and treated as immutable afterwards.
type FilezRuntime struct {
	FilezHome string
	Config    Config
}

var (
	runtime *FilezRuntime
	mu      sync.RWMutex
)

// InitializeFilezRuntime initializes the process-wide runtime with the given
// home directory and configuration. It fails if the runtime is already
// initialized; tests must call ResetFilezRuntime between runs.
func InitializeFilezRuntime(filezHome string, cfg *Config) error {
	mu.Lock()
	defer mu.Unlock()

	if runtime != nil {
		return errors.New("filez runtime is already initialized")
	}
	if cfg == nil {
		return errors.New("config must not be nil")
	}

	runtime = &FilezRuntime{
		FilezHome: filezHome,
		Config:    *cfg,
	}
	return nil
}

// GetFilezRuntime returns the process-wide runtime. It panics when called
// before InitializeFilezRuntime; that is a programming error, not a runtime
// condition.
func GetFilezRuntime() *FilezRuntime {
	mu.RLock()
	defer mu.RUnlock()

	if runtime == nil {
		panic("filez runtime accessed before initialization")
	}
	return runtime
}

// ResetFilezRuntime clears the process-wide runtime. Intended for tests.
func ResetFilezRuntime() {
	mu.Lock()
	defer mu.Unlock()
	runtime = nil
}
