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

// Package app provides lookup of the mows apps requests are made through.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/my-own-web-services/filez/internal/authz"
	dbmodel "github.com/my-own-web-services/filez/internal/system/database/model"
	"github.com/my-own-web-services/filez/internal/system/database/provider"
	"github.com/my-own-web-services/filez/internal/system/log"
)

// ErrAppNotFound is returned when no app exists for the given id.
var ErrAppNotFound = errors.New("app not found")

var (
	queryGetAppByID = dbmodel.DBQuery{
		ID:          "ASQ-APP-001",
		Query:       `SELECT id, name, trusted FROM mows_apps WHERE id = $1`,
		SQLiteQuery: `SELECT id, name, trusted FROM mows_apps WHERE id = ?`,
	}
)

// AppStoreInterface defines the persistence operations for mows apps.
type AppStoreInterface interface {
	GetAppByID(ctx context.Context, id authz.AppID) (*authz.MowsApp, error)
}

type appStore struct {
	dbProvider provider.DBProviderInterface
}

// NewAppStore creates a new app store over the configured filez database.
func NewAppStore() AppStoreInterface {
	return &appStore{dbProvider: provider.NewDBProvider()}
}

// GetAppByID retrieves a single app by its id.
func (st *appStore) GetAppByID(ctx context.Context, id authz.AppID) (*authz.MowsApp, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "AppStore"))

	dbClient, err := st.dbProvider.GetDBClient(provider.DatabaseNameFilez)
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}
	defer func() {
		if closeErr := dbClient.Close(); closeErr != nil {
			logger.Error("Failed to close database client", log.Error(closeErr))
		}
	}()

	results, err := dbClient.QueryContext(ctx, queryGetAppByID, id.String())
	if err != nil {
		logger.Error("Failed to execute query", log.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrAppNotFound
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("unexpected number of results: %d", len(results))
	}

	return buildAppFromResultRow(results[0])
}

// buildAppFromResultRow constructs a MowsApp from a database result row.
func buildAppFromResultRow(row map[string]interface{}) (*authz.MowsApp, error) {
	appID, err := rowAppID(row, "id")
	if err != nil {
		return nil, err
	}

	name, ok := rowAsString(row["name"])
	if !ok {
		return nil, errors.New("failed to parse name as string")
	}

	trusted, err := rowBool(row["trusted"])
	if err != nil {
		return nil, err
	}

	return &authz.MowsApp{ID: appID, Name: name, Trusted: trusted}, nil
}

func rowAppID(row map[string]interface{}, column string) (authz.AppID, error) {
	raw, ok := rowAsString(row[column])
	if !ok {
		return authz.AppID{}, fmt.Errorf("failed to parse %s as string", column)
	}
	var appID authz.AppID
	if err := appID.UnmarshalText([]byte(raw)); err != nil {
		return authz.AppID{}, fmt.Errorf("failed to parse %s as UUID: %w", column, err)
	}
	return appID, nil
}

func rowAsString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

// rowBool parses a boolean column, tolerating the numeric form sqlite stores.
func rowBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case string:
		return v == "1" || v == "true" || v == "t", nil
	case []byte:
		s := string(v)
		return s == "1" || s == "true" || s == "t", nil
	default:
		return false, errors.New("failed to parse trusted as bool")
	}
}
