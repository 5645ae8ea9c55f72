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
	"github.com/google/uuid"
)

// Typed identifier wrappers. Identifiers of different resource kinds are not
// interchangeable; the wrappers make cross-use a compile error while keeping
// value semantics, comparability and text marshaling from the embedded UUID.

// UserID identifies a filez user.
type UserID struct{ uuid.UUID }

// UserGroupID identifies a user group.
type UserGroupID struct{ uuid.UUID }

// AppID identifies a mows app.
type AppID struct{ uuid.UUID }

// AccessPolicyID identifies an access policy.
type AccessPolicyID struct{ uuid.UUID }

// ResourceID identifies a resource of the type the surrounding call names.
type ResourceID struct{ uuid.UUID }

// FileID identifies a file.
type FileID struct{ uuid.UUID }

// FileGroupID identifies a file group.
type FileGroupID struct{ uuid.UUID }

// NewUserID returns a random UserID.
func NewUserID() UserID { return UserID{uuid.New()} }

// NewUserGroupID returns a random UserGroupID.
func NewUserGroupID() UserGroupID { return UserGroupID{uuid.New()} }

// NewAppID returns a random AppID.
func NewAppID() AppID { return AppID{uuid.New()} }

// NewAccessPolicyID returns a random AccessPolicyID.
func NewAccessPolicyID() AccessPolicyID { return AccessPolicyID{uuid.New()} }

// NewResourceID returns a random ResourceID.
func NewResourceID() ResourceID { return ResourceID{uuid.New()} }

// AsResourceID converts a FileID into the generic resource identifier used by
// the engine.
func (id FileID) AsResourceID() ResourceID { return ResourceID{id.UUID} }

// AsResourceID converts a FileGroupID into the generic resource identifier.
func (id FileGroupID) AsResourceID() ResourceID { return ResourceID{id.UUID} }

// UserType classifies a filez user.
type UserType string

const (
	// UserTypeSuperAdmin users bypass all policy evaluation.
	UserTypeSuperAdmin UserType = "SuperAdmin"
	// UserTypeRegular is the default user type.
	UserTypeRegular UserType = "Regular"
	// UserTypeKeyAccess users authenticate with an access key instead of a session.
	UserTypeKeyAccess UserType = "KeyAccess"
)

// FilezUser is the requesting identity for an authorization check. A nil
// *FilezUser means the caller is anonymous.
type FilezUser struct {
	ID          UserID   `json:"id"`
	Type        UserType `json:"user_type"`
	DisplayName string   `json:"display_name"`
}

// MowsApp is the application context a request is made through. Trusted apps
// are eligible for the owned-resources fast path.
type MowsApp struct {
	ID      AppID  `json:"id"`
	Name    string `json:"name"`
	Trusted bool   `json:"trusted"`
}

// ResourceType is the closed enumeration of resource kinds policies can speak about.
type ResourceType string

const (
	ResourceTypeFile            ResourceType = "File"
	ResourceTypeFileGroup       ResourceType = "FileGroup"
	ResourceTypeUser            ResourceType = "User"
	ResourceTypeUserGroup       ResourceType = "UserGroup"
	ResourceTypeStorageLocation ResourceType = "StorageLocation"
	ResourceTypeAccessPolicy    ResourceType = "AccessPolicy"
	ResourceTypeStorageQuota    ResourceType = "StorageQuota"
	ResourceTypeFilezJob        ResourceType = "FilezJob"
	ResourceTypeMowsApp         ResourceType = "MowsApp"
)

// AccessPolicyEffect is the effect of a policy. Deny overrides Allow.
type AccessPolicyEffect string

const (
	AccessPolicyEffectAllow AccessPolicyEffect = "Allow"
	AccessPolicyEffectDeny  AccessPolicyEffect = "Deny"
)

// AccessPolicySubjectType names who a policy applies to.
type AccessPolicySubjectType string

const (
	// SubjectTypeUser policies apply to the single user in SubjectID.
	SubjectTypeUser AccessPolicySubjectType = "User"
	// SubjectTypeUserGroup policies apply to members of the user group in SubjectID.
	SubjectTypeUserGroup AccessPolicySubjectType = "UserGroup"
	// SubjectTypeServerMember policies apply to any authenticated user.
	SubjectTypeServerMember AccessPolicySubjectType = "ServerMember"
	// SubjectTypePublic policies apply to everyone, including anonymous callers.
	SubjectTypePublic AccessPolicySubjectType = "Public"
)

// AccessPolicy is a single structured authorization rule.
type AccessPolicy struct {
	ID      AccessPolicyID
	Name    string
	OwnerID UserID
	Effect  AccessPolicyEffect
	// ResourceType is the resource kind this policy speaks about.
	ResourceType ResourceType
	// ResourceID is the specific resource (direct policy) or the resource group
	// (resource-group policy). nil marks a type-level policy.
	ResourceID  *ResourceID
	SubjectType AccessPolicySubjectType
	// SubjectID is meaningful for User and UserGroup subjects only.
	SubjectID uuid.UUID
	// Actions this policy covers. Treated as a set.
	Actions []Action
	// ContextAppIDs are the apps this policy is scoped to. Treated as a set.
	ContextAppIDs []AppID
}

// AuthEvaluation is the per-resource outcome of an authorization check.
type AuthEvaluation struct {
	// ResourceID is nil for type-level evaluations.
	ResourceID *ResourceID `json:"resource_id,omitempty"`
	IsAllowed  bool        `json:"is_allowed"`
	Reason     AuthReason  `json:"reason"`
}

// AuthResult is the outcome of an authorization check across all requested resources.
type AuthResult struct {
	// AccessGranted is true only when every evaluation is allowed.
	AccessGranted bool             `json:"access_granted"`
	Evaluations   []AuthEvaluation `json:"evaluations"`
}

// IsAllowed reports whether access was granted for all requested resources.
func (r *AuthResult) IsAllowed() bool {
	return r.AccessGranted
}

// IsDenied reports whether access was denied for at least one requested resource.
func (r *AuthResult) IsDenied() bool {
	return !r.AccessGranted
}
