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

// Package client provides the database client used by the store layer.
package client

import (
	"context"
	"fmt"

	"github.com/my-own-web-services/filez/internal/system/database/model"
	"github.com/my-own-web-services/filez/internal/system/log"
)

const loggerComponentName = "DBClient"

// DBClientInterface defines the interface the store layer uses for database access.
// Query results are returned as ordered column-name keyed rows.
type DBClientInterface interface {
	Query(query model.DBQuery, args ...interface{}) ([]map[string]interface{}, error)
	QueryContext(ctx context.Context, query model.DBQuery, args ...interface{}) ([]map[string]interface{}, error)
	Execute(query model.DBQuery, args ...interface{}) (int64, error)
	ExecuteContext(ctx context.Context, query model.DBQuery, args ...interface{}) (int64, error)
	BeginTx() (model.TxInterface, error)
	Close() error
	// DBType returns the backend type ("postgres" or "sqlite") so that stores
	// can bind backend-specific argument shapes (array binding vs. expanded
	// placeholder lists).
	DBType() string
}

// DBClient is the implementation of DBClientInterface over a DBInterface.
type DBClient struct {
	db     model.DBInterface
	dbType string
}

// NewDBClient creates a new database client for the given database and type.
func NewDBClient(db model.DBInterface, dbType string) DBClientInterface {
	return &DBClient{
		db:     db,
		dbType: dbType,
	}
}

// Query executes a query and returns the result rows.
func (c *DBClient) Query(query model.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
	return c.QueryContext(context.Background(), query, args...)
}

// QueryContext executes a query with the given context and returns the result rows.
func (c *DBClient) QueryContext(ctx context.Context, query model.DBQuery,
	args ...interface{}) ([]map[string]interface{}, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	sqlQuery := query.GetQuery(c.dbType)
	rows, err := c.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error("Failed to execute query", log.String("queryId", query.ID), log.Error(err))
		return nil, fmt.Errorf("failed to execute query %s: %w", query.ID, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logger.Error("Failed to close result rows", log.String("queryId", query.ID), log.Error(closeErr))
		}
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns for query %s: %w", query.ID, err)
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan result row for query %s: %w", query.ID, err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate result rows for query %s: %w", query.ID, err)
	}

	return results, nil
}

// Execute executes a query without returning rows and returns the affected row count.
func (c *DBClient) Execute(query model.DBQuery, args ...interface{}) (int64, error) {
	return c.ExecuteContext(context.Background(), query, args...)
}

// ExecuteContext executes a query with the given context and returns the affected row count.
func (c *DBClient) ExecuteContext(ctx context.Context, query model.DBQuery, args ...interface{}) (int64, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	sqlQuery := query.GetQuery(c.dbType)
	result, err := c.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error("Failed to execute statement", log.String("queryId", query.ID), log.Error(err))
		return 0, fmt.Errorf("failed to execute query %s: %w", query.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows for query %s: %w", query.ID, err)
	}

	return rowsAffected, nil
}

// BeginTx starts a new transaction on the underlying database.
func (c *DBClient) BeginTx() (model.TxInterface, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return model.NewTx(tx, c.dbType), nil
}

// Close closes the underlying database connection.
func (c *DBClient) Close() error {
	return c.db.Close()
}

// DBType returns the backend type of the underlying database.
func (c *DBClient) DBType() string {
	return c.dbType
}
