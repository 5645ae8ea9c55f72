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

package authz

import (
	"github.com/my-own-web-services/filez/internal/system/error/serviceerror"
)

// Service error definitions for the authorization engine. Codes are stable;
// callers switch on them to distinguish failure kinds.
var (
	// ErrorNoResourceIDs is returned when a batch evaluation is requested with
	// an empty resource id list.
	ErrorNoResourceIDs = serviceerror.ServiceError{
		Code:             "AUTHZ-1001",
		Type:             serviceerror.ClientErrorType,
		Error:            "No resource IDs provided",
		ErrorDescription: "A batch access control check requires at least one resource ID",
	}
	// ErrorUnknownResourceType is returned when no descriptor exists for the
	// requested resource type.
	ErrorUnknownResourceType = serviceerror.ServiceError{
		Code:             "AUTHZ-1002",
		Type:             serviceerror.ClientErrorType,
		Error:            "Unknown resource type",
		ErrorDescription: "The requested resource type has no authorization descriptor",
	}
	// ErrorAccessDenied is returned by AuthResult.Verify when access was denied.
	ErrorAccessDenied = serviceerror.ServiceError{
		Code:             "AUTHZ-1003",
		Type:             serviceerror.ClientErrorType,
		Error:            "Access denied",
		ErrorDescription: "The caller is not permitted to perform the requested action",
	}
	// ErrorCatalogFailure is returned when the ownership or membership fetch failed.
	ErrorCatalogFailure = serviceerror.ServiceError{
		Code:             "AUTHZ-5001",
		Type:             serviceerror.ServerErrorType,
		Error:            "Catalog failure",
		ErrorDescription: "Failed to fetch resource ownership or membership information",
	}
	// ErrorPolicyStoreFailure is returned when a policy fetch failed.
	ErrorPolicyStoreFailure = serviceerror.ServiceError{
		Code:             "AUTHZ-5002",
		Type:             serviceerror.ServerErrorType,
		Error:            "Policy store failure",
		ErrorDescription: "Failed to fetch access policies",
	}
	// ErrorMalformedPolicy is returned when a policy fetched for resource
	// indexing carries no resource id. The policy store is inconsistent; the
	// record must not be silently dropped.
	ErrorMalformedPolicy = serviceerror.ServiceError{
		Code:             "AUTHZ-5003",
		Type:             serviceerror.ServerErrorType,
		Error:            "Malformed access policy",
		ErrorDescription: "An access policy fetched by resource ID is missing its resource ID",
	}
)

// Verify returns nil when access was granted and ErrorAccessDenied otherwise.
// Handlers use it to turn a denial into an error return in one step.
func (r *AuthResult) Verify() *serviceerror.ServiceError {
	if r.IsAllowed() {
		return nil
	}
	return &ErrorAccessDenied
}
