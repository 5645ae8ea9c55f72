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

// Package authz implements the access control engine of the filez service.
// Given a requesting subject, an app context, a resource type, an action and a
// batch of resource ids it decides whether the request is permitted and
// produces a per-resource, audit-grade justification.
package authz

import (
	"bytes"
	"context"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/my-own-web-services/filez/internal/system/error/serviceerror"
	"github.com/my-own-web-services/filez/internal/system/log"
)

const loggerComponentName = "AuthorizationEngine"

// ResourceOwner is one row of a batched ownership fetch. A row being present
// means the resource exists; OwnerID is nil only for resource types without an
// ownership column.
type ResourceOwner struct {
	ResourceID ResourceID
	OwnerID    *UserID
}

// GroupMembership is one row of a batched resource-group membership fetch.
type GroupMembership struct {
	ResourceID ResourceID
	GroupID    ResourceID
}

// CatalogInterface is the read side of the resource catalog the engine consults.
type CatalogInterface interface {
	// FetchOwners returns one row per existing resource. For resource types
	// without an ownership column existence is still established and OwnerID
	// is nil on every row.
	FetchOwners(ctx context.Context, resourceType ResourceType, ids []ResourceID) ([]ResourceOwner, error)

	// FetchGroupMemberships returns the resource-group memberships of the
	// given resources. Resources without memberships produce no rows.
	FetchGroupMemberships(ctx context.Context, resourceType ResourceType, ids []ResourceID) ([]GroupMembership, error)
}

// PolicyStoreInterface is the policy fetch contract the engine consumes. Both
// operations filter by app context, action and subject relevance server-side.
type PolicyStoreInterface interface {
	FetchPoliciesForResources(ctx context.Context, resourceType ResourceType, resourceIDs []ResourceID,
		appID AppID, action Action, subject SubjectFilter) ([]AccessPolicy, error)

	FetchTypeLevelPolicies(ctx context.Context, resourceType ResourceType,
		appID AppID, action Action, subject SubjectFilter) ([]AccessPolicy, error)
}

// AuthorizationEngineInterface defines the contract for access control checks.
type AuthorizationEngineInterface interface {
	// CheckResourcesAccessControl decides whether the subject may perform the
	// action on the given resources in the given app context.
	//
	// A nil subject is an anonymous caller. A nil resourceIDs slice requests a
	// type-level decision; a non-nil empty slice is an error
	// (ErrorNoResourceIDs). A non-nil ServiceError indicates a processing
	// failure, never a denial: denials are evaluations in the returned result.
	CheckResourcesAccessControl(ctx context.Context, subject *FilezUser, subjectGroupIDs []UserGroupID,
		app *MowsApp, resourceType ResourceType, resourceIDs []ResourceID, action Action,
	) (*AuthResult, *serviceerror.ServiceError)
}

// authorizationEngine is the default implementation of AuthorizationEngineInterface.
// It is stateless; a single instance serves concurrent requests.
type authorizationEngine struct {
	catalog  CatalogInterface
	policies PolicyStoreInterface
	logger   *log.Logger
	tracer   trace.Tracer
}

// NewAuthorizationEngine creates an engine over the given catalog and policy store.
func NewAuthorizationEngine(catalog CatalogInterface, policies PolicyStoreInterface) AuthorizationEngineInterface {
	return &authorizationEngine{
		catalog:  catalog,
		policies: policies,
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
		tracer:   otel.Tracer("filez/authz"),
	}
}

// CheckResourcesAccessControl evaluates the precedence ladder for every
// requested resource with a bounded number of store calls: owners, direct
// policies, group memberships and group policies are each fetched in one
// batched query regardless of how many resource ids are supplied.
func (e *authorizationEngine) CheckResourcesAccessControl(ctx context.Context, subject *FilezUser,
	subjectGroupIDs []UserGroupID, app *MowsApp, resourceType ResourceType, resourceIDs []ResourceID,
	action Action) (*AuthResult, *serviceerror.ServiceError) {
	logger := e.logger.WithContext(ctx)

	ctx, span := e.tracer.Start(ctx, "authz.CheckResourcesAccessControl",
		trace.WithAttributes(
			attribute.String("resource_type", string(resourceType)),
			attribute.String("action", string(action)),
			attribute.Int("resource_count", len(resourceIDs)),
		))
	defer span.End()

	descriptor, ok := DescriptorFor(resourceType)
	if !ok {
		return nil, &ErrorUnknownResourceType
	}

	// Super admins bypass all catalog and policy lookups.
	if subject != nil && subject.Type == UserTypeSuperAdmin {
		return superAdminResult(resourceIDs), nil
	}

	if resourceIDs == nil {
		return e.checkTypeLevel(ctx, subject, subjectGroupIDs, app, descriptor, action)
	}
	if len(resourceIDs) == 0 {
		return nil, &ErrorNoResourceIDs
	}

	subjectFilter := NewSubjectFilter(subject, subjectGroupIDs)

	// Step 1: resource existence and ownership, one batched query.
	ownerRows, err := e.catalog.FetchOwners(ctx, resourceType, resourceIDs)
	if err != nil {
		logger.Error("Failed to fetch resource owners",
			log.String("resourceType", string(resourceType)), log.Error(err))
		return nil, serviceerror.CustomServiceError(ErrorCatalogFailure, err.Error())
	}

	owners := make(map[ResourceID]*UserID, len(ownerRows))
	for _, row := range ownerRows {
		owners[row.ResourceID] = row.OwnerID
	}

	// Trusted apps skip policy evaluation when the subject owns every
	// requested resource. A latency optimization only: it must not change
	// outcomes relative to the slow path.
	if descriptor.HasOwner() && app.Trusted && subject != nil &&
		len(ownerRows) == len(resourceIDs) && allOwnedBy(ownerRows, subject.ID) {
		return ownedResult(resourceIDs), nil
	}

	// Step 2: direct policies, one batched query.
	directPolicies, err := e.policies.FetchPoliciesForResources(ctx, resourceType, resourceIDs,
		app.ID, action, subjectFilter)
	if err != nil {
		logger.Error("Failed to fetch direct access policies",
			log.String("resourceType", string(resourceType)), log.Error(err))
		return nil, serviceerror.CustomServiceError(ErrorPolicyStoreFailure, err.Error())
	}

	directPoliciesByResource, svcErr := indexPoliciesByResource(directPolicies)
	if svcErr != nil {
		return nil, svcErr
	}

	// Step 3: resource-group memberships and their policies, one query each.
	membershipsByResource := make(map[ResourceID][]ResourceID)
	groupPoliciesByGroup := make(map[ResourceID][]AccessPolicy)

	if descriptor.HasResourceGroups() {
		memberships, err := e.catalog.FetchGroupMemberships(ctx, resourceType, resourceIDs)
		if err != nil {
			logger.Error("Failed to fetch resource group memberships",
				log.String("resourceType", string(resourceType)), log.Error(err))
			return nil, serviceerror.CustomServiceError(ErrorCatalogFailure, err.Error())
		}

		groupIDSet := make(map[ResourceID]struct{})
		for _, membership := range memberships {
			membershipsByResource[membership.ResourceID] =
				append(membershipsByResource[membership.ResourceID], membership.GroupID)
			groupIDSet[membership.GroupID] = struct{}{}
		}
		// Ascending group order makes tie-breaking between multiple denying
		// or allowing groups reproducible.
		for resourceID := range membershipsByResource {
			sortResourceIDs(membershipsByResource[resourceID])
		}

		if len(groupIDSet) > 0 {
			groupIDs := make([]ResourceID, 0, len(groupIDSet))
			for groupID := range groupIDSet {
				groupIDs = append(groupIDs, groupID)
			}
			sortResourceIDs(groupIDs)

			groupPolicies, err := e.policies.FetchPoliciesForResources(ctx, descriptor.GroupType,
				groupIDs, app.ID, action, subjectFilter)
			if err != nil {
				logger.Error("Failed to fetch resource group access policies",
					log.String("resourceGroupType", string(descriptor.GroupType)), log.Error(err))
				return nil, serviceerror.CustomServiceError(ErrorPolicyStoreFailure, err.Error())
			}

			groupPoliciesByGroup, svcErr = indexPoliciesByResource(groupPolicies)
			if svcErr != nil {
				return nil, svcErr
			}
		}
	}

	// Step 4: per-resource evaluation over the in-memory indexes.
	evaluations := make([]AuthEvaluation, 0, len(resourceIDs))
	for _, resourceID := range resourceIDs {
		evaluations = append(evaluations, evaluateResource(resourceID, subject, descriptor,
			owners, directPoliciesByResource, membershipsByResource, groupPoliciesByGroup))
	}

	accessGranted := true
	for _, evaluation := range evaluations {
		if !evaluation.IsAllowed {
			accessGranted = false
			break
		}
	}

	if logger.IsDebugEnabled() && !accessGranted {
		logger.Debug("Access denied for at least one resource",
			log.String("resourceType", string(resourceType)),
			log.String("action", string(action)),
			log.Int("resourceCount", len(resourceIDs)))
	}

	return &AuthResult{AccessGranted: accessGranted, Evaluations: evaluations}, nil
}

// evaluateResource applies the precedence ladder to a single resource:
// existence, direct deny, resource-group deny, ownership, direct allow,
// resource-group allow, default deny.
func evaluateResource(resourceID ResourceID, subject *FilezUser, descriptor ResourceDescriptor,
	owners map[ResourceID]*UserID, directPolicies map[ResourceID][]AccessPolicy,
	memberships map[ResourceID][]ResourceID, groupPolicies map[ResourceID][]AccessPolicy) AuthEvaluation {
	id := resourceID
	evaluation := AuthEvaluation{
		ResourceID: &id,
		IsAllowed:  false,
		Reason:     reasonNoMatchingAllowPolicy(),
	}

	ownerID, exists := owners[resourceID]
	if !exists {
		evaluation.Reason = reasonResourceNotFound()
		return evaluation
	}

	// Direct deny.
	if policy, found := findPolicyByEffect(directPolicies[resourceID], AccessPolicyEffectDeny); found {
		evaluation.Reason = reasonFromDirectPolicy(policy)
		return evaluation
	}

	// Resource-group deny. Groups are iterated in ascending id order; the
	// first denying group wins.
	for _, groupID := range memberships[resourceID] {
		if policy, found := findPolicyByEffect(groupPolicies[groupID], AccessPolicyEffectDeny); found {
			evaluation.Reason = reasonFromResourceGroupPolicy(policy, groupID)
			return evaluation
		}
	}

	// Ownership.
	if descriptor.HasOwner() && subject != nil && ownerID != nil && *ownerID == subject.ID {
		evaluation.IsAllowed = true
		evaluation.Reason = reasonOwned()
		return evaluation
	}

	// Direct allow.
	if policy, found := findPolicyByEffect(directPolicies[resourceID], AccessPolicyEffectAllow); found {
		evaluation.IsAllowed = true
		evaluation.Reason = reasonFromDirectPolicy(policy)
		return evaluation
	}

	// Resource-group allow.
	for _, groupID := range memberships[resourceID] {
		if policy, found := findPolicyByEffect(groupPolicies[groupID], AccessPolicyEffectAllow); found {
			evaluation.IsAllowed = true
			evaluation.Reason = reasonFromResourceGroupPolicy(policy, groupID)
			return evaluation
		}
	}

	// No rule granted access; the default deny stands.
	return evaluation
}

// checkTypeLevel evaluates the no-resource-ids path: a single evaluation from
// the type-level policies, deny taking precedence over allow.
func (e *authorizationEngine) checkTypeLevel(ctx context.Context, subject *FilezUser,
	subjectGroupIDs []UserGroupID, app *MowsApp, descriptor ResourceDescriptor,
	action Action) (*AuthResult, *serviceerror.ServiceError) {
	logger := e.logger.WithContext(ctx)

	subjectFilter := NewSubjectFilter(subject, subjectGroupIDs)

	typeLevelPolicies, err := e.policies.FetchTypeLevelPolicies(ctx, descriptor.ResourceType,
		app.ID, action, subjectFilter)
	if err != nil {
		logger.Error("Failed to fetch type-level access policies",
			log.String("resourceType", string(descriptor.ResourceType)), log.Error(err))
		return nil, serviceerror.CustomServiceError(ErrorPolicyStoreFailure, err.Error())
	}

	sortPoliciesByID(typeLevelPolicies)

	if policy, found := findPolicyByEffect(typeLevelPolicies, AccessPolicyEffectDeny); found {
		return &AuthResult{
			AccessGranted: false,
			Evaluations: []AuthEvaluation{
				{IsAllowed: false, Reason: reasonFromDirectPolicy(policy)},
			},
		}, nil
	}

	if policy, found := findPolicyByEffect(typeLevelPolicies, AccessPolicyEffectAllow); found {
		return &AuthResult{
			AccessGranted: true,
			Evaluations: []AuthEvaluation{
				{IsAllowed: true, Reason: reasonFromDirectPolicy(policy)},
			},
		}, nil
	}

	return &AuthResult{
		AccessGranted: false,
		Evaluations: []AuthEvaluation{
			{IsAllowed: false, Reason: reasonNoMatchingAllowPolicy()},
		},
	}, nil
}

// superAdminResult allows every requested resource without further lookups.
func superAdminResult(resourceIDs []ResourceID) *AuthResult {
	if resourceIDs == nil {
		return &AuthResult{
			AccessGranted: true,
			Evaluations: []AuthEvaluation{
				{IsAllowed: true, Reason: reasonSuperAdmin()},
			},
		}
	}

	evaluations := make([]AuthEvaluation, 0, len(resourceIDs))
	for _, resourceID := range resourceIDs {
		id := resourceID
		evaluations = append(evaluations, AuthEvaluation{
			ResourceID: &id,
			IsAllowed:  true,
			Reason:     reasonSuperAdmin(),
		})
	}
	return &AuthResult{AccessGranted: true, Evaluations: evaluations}
}

// ownedResult allows every requested resource with the Owned reason.
func ownedResult(resourceIDs []ResourceID) *AuthResult {
	evaluations := make([]AuthEvaluation, 0, len(resourceIDs))
	for _, resourceID := range resourceIDs {
		id := resourceID
		evaluations = append(evaluations, AuthEvaluation{
			ResourceID: &id,
			IsAllowed:  true,
			Reason:     reasonOwned(),
		})
	}
	return &AuthResult{AccessGranted: true, Evaluations: evaluations}
}

// allOwnedBy reports whether every owner row names the given user as owner.
func allOwnedBy(rows []ResourceOwner, userID UserID) bool {
	for _, row := range rows {
		if row.OwnerID == nil || *row.OwnerID != userID {
			return false
		}
	}
	return true
}

// indexPoliciesByResource groups policies by their resource id, keeping each
// bucket sorted by ascending policy id so that the recorded reason is
// deterministic. A policy without a resource id in this position marks an
// inconsistent policy store.
func indexPoliciesByResource(policies []AccessPolicy) (map[ResourceID][]AccessPolicy, *serviceerror.ServiceError) {
	indexed := make(map[ResourceID][]AccessPolicy, len(policies))
	for _, policy := range policies {
		if policy.ResourceID == nil {
			return nil, &ErrorMalformedPolicy
		}
		indexed[*policy.ResourceID] = append(indexed[*policy.ResourceID], policy)
	}
	for resourceID := range indexed {
		sortPoliciesByID(indexed[resourceID])
	}
	return indexed, nil
}

// findPolicyByEffect returns the first policy with the given effect. The input
// is sorted by ascending policy id.
func findPolicyByEffect(policies []AccessPolicy, effect AccessPolicyEffect) (AccessPolicy, bool) {
	for _, policy := range policies {
		if policy.Effect == effect {
			return policy, true
		}
	}
	return AccessPolicy{}, false
}

func sortPoliciesByID(policies []AccessPolicy) {
	sort.Slice(policies, func(i, j int) bool {
		return bytes.Compare(policies[i].ID.UUID[:], policies[j].ID.UUID[:]) < 0
	})
}

func sortResourceIDs(ids []ResourceID) {
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i].UUID[:], ids[j].UUID[:]) < 0
	})
}
