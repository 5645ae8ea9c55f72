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

// Package config handles loading and access of the deployment configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DataSource holds the connection configuration for a single database.
type DataSource struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	Path     string `yaml:"path"`
	Options  string `yaml:"options"`
}

// DatabaseConfig groups the data sources used by the server.
type DatabaseConfig struct {
	Filez DataSource `yaml:"filez"`
}

// CacheLevelConfig configures a single cache layer.
type CacheLevelConfig struct {
	Enabled        bool   `yaml:"enabled"`
	MaxSize        int    `yaml:"max_size"`
	TTLSeconds     int    `yaml:"ttl_seconds"`
	EvictionPolicy string `yaml:"eviction_policy"`
	// Address is the backend address for distributed cache layers.
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
}

// CacheConfig groups the cache layer configurations.
type CacheConfig struct {
	L1 CacheLevelConfig `yaml:"l1"`
	L2 CacheLevelConfig `yaml:"l2"`
}

// SecretsConfig configures the generated-secrets file handling.
type SecretsConfig struct {
	// GeneratedSecretsPath is the path of the generated-secrets env file
	// relative to the deployment home.
	GeneratedSecretsPath string `yaml:"generated_secrets_path"`
}

// Config is the root configuration structure for the server.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Secrets  SecretsConfig  `yaml:"secrets"`
}

// LoadConfig reads and parses the YAML configuration file at the given path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}
