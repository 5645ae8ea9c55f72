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

// Package user provides lookup of filez users and their group memberships.
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/my-own-web-services/filez/internal/authz"
	dbmodel "github.com/my-own-web-services/filez/internal/system/database/model"
	"github.com/my-own-web-services/filez/internal/system/database/provider"
	"github.com/my-own-web-services/filez/internal/system/log"
)

// ErrUserNotFound is returned when no user exists for the given id.
var ErrUserNotFound = errors.New("user not found")

var (
	queryGetUserByID = dbmodel.DBQuery{
		ID:          "ASQ-USER-001",
		Query:       `SELECT id, user_type, display_name FROM users WHERE id = $1`,
		SQLiteQuery: `SELECT id, user_type, display_name FROM users WHERE id = ?`,
	}
	queryListUserGroupIDs = dbmodel.DBQuery{
		ID:          "ASQ-USER-002",
		Query:       `SELECT user_group_id FROM user_user_group_members WHERE user_id = $1 ORDER BY user_group_id ASC`,
		SQLiteQuery: `SELECT user_group_id FROM user_user_group_members WHERE user_id = ? ORDER BY user_group_id ASC`,
	}
)

// UserStoreInterface defines the persistence operations for filez users.
type UserStoreInterface interface {
	GetUserByID(ctx context.Context, id authz.UserID) (*authz.FilezUser, error)
	// ListUserGroupIDs returns the user groups the user belongs to, in
	// ascending id order. Authorization checks receive this list as the
	// subject's group memberships.
	ListUserGroupIDs(ctx context.Context, id authz.UserID) ([]authz.UserGroupID, error)
}

type userStore struct {
	dbProvider provider.DBProviderInterface
}

// NewUserStore creates a new user store over the configured filez database.
func NewUserStore() UserStoreInterface {
	return &userStore{dbProvider: provider.NewDBProvider()}
}

// GetUserByID retrieves a single user by its id.
func (st *userStore) GetUserByID(ctx context.Context, id authz.UserID) (*authz.FilezUser, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "UserStore"))

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

	results, err := dbClient.QueryContext(ctx, queryGetUserByID, id.String())
	if err != nil {
		logger.Error("Failed to execute query", log.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrUserNotFound
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("unexpected number of results: %d", len(results))
	}

	return buildUserFromResultRow(results[0])
}

// ListUserGroupIDs returns the ids of the user groups the user belongs to.
func (st *userStore) ListUserGroupIDs(ctx context.Context, id authz.UserID) ([]authz.UserGroupID, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "UserStore"))

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

	results, err := dbClient.QueryContext(ctx, queryListUserGroupIDs, id.String())
	if err != nil {
		logger.Error("Failed to execute query", log.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	groupIDs := make([]authz.UserGroupID, 0, len(results))
	for _, row := range results {
		raw, ok := rowAsString(row["user_group_id"])
		if !ok {
			return nil, errors.New("failed to parse user_group_id as string")
		}
		var groupID authz.UserGroupID
		if err := groupID.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("failed to parse user_group_id as UUID: %w", err)
		}
		groupIDs = append(groupIDs, groupID)
	}

	return groupIDs, nil
}

// buildUserFromResultRow constructs a FilezUser from a database result row.
func buildUserFromResultRow(row map[string]interface{}) (*authz.FilezUser, error) {
	rawID, ok := rowAsString(row["id"])
	if !ok {
		return nil, errors.New("failed to parse id as string")
	}
	var userID authz.UserID
	if err := userID.UnmarshalText([]byte(rawID)); err != nil {
		return nil, fmt.Errorf("failed to parse id as UUID: %w", err)
	}

	userType, ok := rowAsString(row["user_type"])
	if !ok {
		return nil, errors.New("failed to parse user_type as string")
	}

	var displayName string
	if row["display_name"] != nil {
		displayName, ok = rowAsString(row["display_name"])
		if !ok {
			return nil, errors.New("failed to parse display_name as string")
		}
	}

	return &authz.FilezUser{
		ID:          userID,
		Type:        authz.UserType(userType),
		DisplayName: displayName,
	}, nil
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
