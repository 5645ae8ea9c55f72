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

// Package provider resolves database clients from the deployment configuration.
package provider

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	// Postgres driver registration.
	_ "github.com/lib/pq"
	// SQLite driver registration.
	_ "modernc.org/sqlite"

	"github.com/my-own-web-services/filez/internal/system/config"
	"github.com/my-own-web-services/filez/internal/system/database/client"
	"github.com/my-own-web-services/filez/internal/system/database/model"
)

const (
	dataSourceTypePostgres = "postgres"
	dataSourceTypeSQLite   = "sqlite"

	// DatabaseNameFilez identifies the filez data source.
	DatabaseNameFilez = "filez"
)

// DBProviderInterface defines the contract for obtaining database clients.
type DBProviderInterface interface {
	// GetDBClient returns a client for the named data source. The caller owns
	// the client and must Close it.
	GetDBClient(dbName string) (client.DBClientInterface, error)
}

type dbProvider struct{}

type dbConfig struct {
	driverName string
	dsn        string
}

// NewDBProvider creates a new database provider reading from the runtime configuration.
func NewDBProvider() DBProviderInterface {
	return &dbProvider{}
}

// GetDBClient returns a database client for the named data source.
func (p *dbProvider) GetDBClient(dbName string) (client.DBClientInterface, error) {
	var dataSource config.DataSource
	switch dbName {
	case DatabaseNameFilez:
		dataSource = config.GetFilezRuntime().Config.Database.Filez
	default:
		return nil, fmt.Errorf("unknown database name: %s", dbName)
	}

	cfg := p.getDBConfig(dataSource)
	db, err := sql.Open(cfg.driverName, cfg.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbName, err)
	}

	return client.NewDBClient(model.NewDB(db), cfg.driverName), nil
}

// getDBConfig builds the driver name and DSN for the given data source.
func (p *dbProvider) getDBConfig(dataSource config.DataSource) dbConfig {
	switch dataSource.Type {
	case dataSourceTypeSQLite:
		path := dataSource.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(config.GetFilezRuntime().FilezHome, path)
		}

		options := strings.TrimPrefix(dataSource.Options, "?")
		dsn := path + "?"
		if options != "" {
			dsn += options + "&"
		}
		// Foreign keys are enforced for membership and policy relations.
		dsn += "_pragma=foreign_keys(1)"

		return dbConfig{driverName: dataSourceTypeSQLite, dsn: dsn}
	default:
		sslMode := dataSource.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			dataSource.Hostname, dataSource.Port, dataSource.Username,
			dataSource.Password, dataSource.Database, sslMode)

		return dbConfig{driverName: dataSourceTypePostgres, dsn: dsn}
	}
}
