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

// ResourceDescriptor declares how a resource type participates in
// authorization: where its rows live, whether it has an owner, and whether it
// can belong to a resource group. Adding a new resource type means adding a
// row here plus (optionally) a membership relation; the engine does not change.
type ResourceDescriptor struct {
	ResourceType ResourceType
	Table        string
	IDColumn     string
	// OwnerColumn is empty when the resource type has no ownership; the owned
	// short-circuit and the ownership ladder rung do not apply then.
	OwnerColumn string
	// GroupType is the resource type representing a group of this resource.
	// Empty when the resource does not participate in resource-group policies.
	GroupType ResourceType
	// Membership relation, set if and only if GroupType is set.
	GroupMembershipTable            string
	GroupMembershipResourceIDColumn string
	GroupMembershipGroupIDColumn    string
}

// HasOwner reports whether the resource type has an ownership column.
func (d ResourceDescriptor) HasOwner() bool {
	return d.OwnerColumn != ""
}

// HasResourceGroups reports whether the resource type can belong to a resource group.
func (d ResourceDescriptor) HasResourceGroups() bool {
	return d.GroupType != ""
}

// resourceDescriptors is the closed, process-wide descriptor table.
var resourceDescriptors = map[ResourceType]ResourceDescriptor{
	ResourceTypeFile: {
		ResourceType: ResourceTypeFile,
		Table:        "files",
		IDColumn:     "id",
		OwnerColumn:  "owner_id",

		GroupType:                       ResourceTypeFileGroup,
		GroupMembershipTable:            "file_file_group_members",
		GroupMembershipResourceIDColumn: "file_id",
		GroupMembershipGroupIDColumn:    "file_group_id",
	},
	ResourceTypeFileGroup: {
		ResourceType: ResourceTypeFileGroup,
		Table:        "file_groups",
		IDColumn:     "id",
		OwnerColumn:  "owner_id",
	},
	ResourceTypeUser: {
		ResourceType: ResourceTypeUser,
		Table:        "users",
		IDColumn:     "id",
		// Users own themselves.
		OwnerColumn: "id",
	},
	ResourceTypeUserGroup: {
		ResourceType: ResourceTypeUserGroup,
		Table:        "user_groups",
		IDColumn:     "id",
		OwnerColumn:  "owner_id",
	},
	ResourceTypeStorageLocation: {
		ResourceType: ResourceTypeStorageLocation,
		Table:        "storage_locations",
		IDColumn:     "id",
	},
	ResourceTypeAccessPolicy: {
		ResourceType: ResourceTypeAccessPolicy,
		Table:        "access_policies",
		IDColumn:     "id",
		OwnerColumn:  "owner_id",
	},
	ResourceTypeStorageQuota: {
		ResourceType: ResourceTypeStorageQuota,
		Table:        "storage_quotas",
		IDColumn:     "id",
		OwnerColumn:  "owner_id",
	},
	ResourceTypeFilezJob: {
		ResourceType: ResourceTypeFilezJob,
		Table:        "filez_jobs",
		IDColumn:     "id",
		OwnerColumn:  "owner_id",
	},
	ResourceTypeMowsApp: {
		ResourceType: ResourceTypeMowsApp,
		Table:        "mows_apps",
		IDColumn:     "id",
	},
}

// DescriptorFor returns the descriptor for the given resource type.
func DescriptorFor(resourceType ResourceType) (ResourceDescriptor, bool) {
	descriptor, ok := resourceDescriptors[resourceType]
	return descriptor, ok
}
