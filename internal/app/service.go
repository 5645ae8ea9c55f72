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

package app

import (
	"context"
	"errors"

	"github.com/my-own-web-services/filez/internal/authz"
	"github.com/my-own-web-services/filez/internal/system/cache/manager"
	cachemodel "github.com/my-own-web-services/filez/internal/system/cache/model"
	"github.com/my-own-web-services/filez/internal/system/error/serviceerror"
	"github.com/my-own-web-services/filez/internal/system/log"
)

// Service error definitions for the app service.
var (
	// ErrorAppNotFound is returned when the requested app does not exist.
	ErrorAppNotFound = serviceerror.ServiceError{
		Code:             "APP-1001",
		Type:             serviceerror.ClientErrorType,
		Error:            "App not found",
		ErrorDescription: "No app exists for the given ID",
	}
)

// AppServiceInterface defines the contract for app lookups.
type AppServiceInterface interface {
	// GetApp resolves the app for the given id. Every authorization check runs
	// in an app context, so lookups are cached; app records change rarely and
	// the authorization outcome itself is never cached.
	GetApp(ctx context.Context, id authz.AppID) (*authz.MowsApp, *serviceerror.ServiceError)
}

type appService struct {
	store  AppStoreInterface
	cache  manager.CacheManagerInterface[*authz.MowsApp]
	logger *log.Logger
}

// NewAppService creates a new app service with the configured cache layers.
func NewAppService() AppServiceInterface {
	return &appService{
		store:  NewAppStore(),
		cache:  manager.NewCacheManager[*authz.MowsApp]("app"),
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "AppService")),
	}
}

// GetApp resolves an app by id, consulting the cache first.
func (s *appService) GetApp(ctx context.Context, id authz.AppID) (*authz.MowsApp, *serviceerror.ServiceError) {
	logger := s.logger.WithContext(ctx)

	cacheKey := cachemodel.CacheKey(id.String())
	if cached, found := s.cache.Get(cacheKey); found {
		return cached, nil
	}

	app, err := s.store.GetAppByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppNotFound) {
			return nil, &ErrorAppNotFound
		}
		logger.Error("Failed to get app", log.Error(err))
		return nil, serviceerror.CustomServiceError(serviceerror.InternalServerError, err.Error())
	}

	if cacheErr := s.cache.Set(cacheKey, app); cacheErr != nil {
		logger.Error("Failed to cache app", log.Error(cacheErr))
	}

	return app, nil
}
