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

// AuthReasonKind discriminates the AuthReason variants.
type AuthReasonKind string

const (
	AuthReasonSuperAdmin AuthReasonKind = "SuperAdmin"
	AuthReasonOwned      AuthReasonKind = "Owned"

	AuthReasonAllowedByPubliclyAccessible           AuthReasonKind = "AllowedByPubliclyAccessible"
	AuthReasonAllowedByServerAccessible             AuthReasonKind = "AllowedByServerAccessible"
	AuthReasonAllowedByDirectUserPolicy             AuthReasonKind = "AllowedByDirectUserPolicy"
	AuthReasonAllowedByDirectUserGroupPolicy        AuthReasonKind = "AllowedByDirectUserGroupPolicy"
	AuthReasonAllowedByResourceGroupUserPolicy      AuthReasonKind = "AllowedByResourceGroupUserPolicy"
	AuthReasonAllowedByResourceGroupUserGroupPolicy AuthReasonKind = "AllowedByResourceGroupUserGroupPolicy"

	AuthReasonDeniedByPubliclyAccessible           AuthReasonKind = "DeniedByPubliclyAccessible"
	AuthReasonDeniedByServerAccessible             AuthReasonKind = "DeniedByServerAccessible"
	AuthReasonDeniedByDirectUserPolicy             AuthReasonKind = "DeniedByDirectUserPolicy"
	AuthReasonDeniedByDirectUserGroupPolicy        AuthReasonKind = "DeniedByDirectUserGroupPolicy"
	AuthReasonDeniedByResourceGroupUserPolicy      AuthReasonKind = "DeniedByResourceGroupUserPolicy"
	AuthReasonDeniedByResourceGroupUserGroupPolicy AuthReasonKind = "DeniedByResourceGroupUserGroupPolicy"

	AuthReasonNoMatchingAllowPolicy AuthReasonKind = "NoMatchingAllowPolicy"
	AuthReasonResourceNotFound      AuthReasonKind = "ResourceNotFound"
)

// AuthReason captures why an evaluation reached its outcome, with enough
// payload for a UI to point at the responsible policy.
type AuthReason struct {
	Kind AuthReasonKind `json:"kind"`
	// PolicyID is set for every policy-derived reason.
	PolicyID *AccessPolicyID `json:"policy_id,omitempty"`
	// ViaUserGroupID is set when the policy matched through a user-group subject.
	ViaUserGroupID *UserGroupID `json:"via_user_group_id,omitempty"`
	// OnResourceGroupID is set when the policy matched through a resource group.
	OnResourceGroupID *ResourceID `json:"on_resource_group_id,omitempty"`
}

func reasonSuperAdmin() AuthReason {
	return AuthReason{Kind: AuthReasonSuperAdmin}
}

func reasonOwned() AuthReason {
	return AuthReason{Kind: AuthReasonOwned}
}

func reasonNoMatchingAllowPolicy() AuthReason {
	return AuthReason{Kind: AuthReasonNoMatchingAllowPolicy}
}

func reasonResourceNotFound() AuthReason {
	return AuthReason{Kind: AuthReasonResourceNotFound}
}

// reasonFromDirectPolicy derives the reason for a policy matched directly on a
// resource (or at type level). Allow and Deny produce the symmetric variants
// for every subject type.
func reasonFromDirectPolicy(policy AccessPolicy) AuthReason {
	policyID := policy.ID
	reason := AuthReason{PolicyID: &policyID}

	allowed := policy.Effect == AccessPolicyEffectAllow
	switch policy.SubjectType {
	case SubjectTypeUser:
		if allowed {
			reason.Kind = AuthReasonAllowedByDirectUserPolicy
		} else {
			reason.Kind = AuthReasonDeniedByDirectUserPolicy
		}
	case SubjectTypeUserGroup:
		viaGroup := UserGroupID{policy.SubjectID}
		reason.ViaUserGroupID = &viaGroup
		if allowed {
			reason.Kind = AuthReasonAllowedByDirectUserGroupPolicy
		} else {
			reason.Kind = AuthReasonDeniedByDirectUserGroupPolicy
		}
	case SubjectTypePublic:
		if allowed {
			reason.Kind = AuthReasonAllowedByPubliclyAccessible
		} else {
			reason.Kind = AuthReasonDeniedByPubliclyAccessible
		}
	case SubjectTypeServerMember:
		if allowed {
			reason.Kind = AuthReasonAllowedByServerAccessible
		} else {
			reason.Kind = AuthReasonDeniedByServerAccessible
		}
	}
	return reason
}

// reasonFromResourceGroupPolicy derives the reason for a policy matched via a
// resource group the evaluated resource belongs to. OnResourceGroupID is set
// for every subject type. Public and ServerMember subjects keep the direct
// variants since no group mediates the subject side.
func reasonFromResourceGroupPolicy(policy AccessPolicy, resourceGroupID ResourceID) AuthReason {
	policyID := policy.ID
	reason := AuthReason{PolicyID: &policyID, OnResourceGroupID: &resourceGroupID}

	allowed := policy.Effect == AccessPolicyEffectAllow
	switch policy.SubjectType {
	case SubjectTypeUser:
		if allowed {
			reason.Kind = AuthReasonAllowedByResourceGroupUserPolicy
		} else {
			reason.Kind = AuthReasonDeniedByResourceGroupUserPolicy
		}
	case SubjectTypeUserGroup:
		viaGroup := UserGroupID{policy.SubjectID}
		reason.ViaUserGroupID = &viaGroup
		if allowed {
			reason.Kind = AuthReasonAllowedByResourceGroupUserGroupPolicy
		} else {
			reason.Kind = AuthReasonDeniedByResourceGroupUserGroupPolicy
		}
	case SubjectTypePublic:
		if allowed {
			reason.Kind = AuthReasonAllowedByPubliclyAccessible
		} else {
			reason.Kind = AuthReasonDeniedByPubliclyAccessible
		}
	case SubjectTypeServerMember:
		if allowed {
			reason.Kind = AuthReasonAllowedByServerAccessible
		} else {
			reason.Kind = AuthReasonDeniedByServerAccessible
		}
	}
	return reason
}
