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
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// TestMain enables debug-level logging for the package test binary so that the
// debug branches in the engine are exercised.
func TestMain(m *testing.M) {
	_ = os.Setenv("LOG_LEVEL", "debug")
	os.Exit(m.Run())
}

// MockCatalog is a mock implementation of CatalogInterface.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FetchOwners(ctx context.Context, resourceType ResourceType,
	ids []ResourceID) ([]ResourceOwner, error) {
	ret := m.Called(ctx, resourceType, ids)
	var owners []ResourceOwner
	if r0 := ret.Get(0); r0 != nil {
		owners = r0.([]ResourceOwner)
	}
	return owners, ret.Error(1)
}

func (m *MockCatalog) FetchGroupMemberships(ctx context.Context, resourceType ResourceType,
	ids []ResourceID) ([]GroupMembership, error) {
	ret := m.Called(ctx, resourceType, ids)
	var memberships []GroupMembership
	if r0 := ret.Get(0); r0 != nil {
		memberships = r0.([]GroupMembership)
	}
	return memberships, ret.Error(1)
}

var _ CatalogInterface = (*MockCatalog)(nil)

// MockPolicyStore is a mock implementation of PolicyStoreInterface.
type MockPolicyStore struct {
	mock.Mock
}

func (m *MockPolicyStore) FetchPoliciesForResources(ctx context.Context, resourceType ResourceType,
	resourceIDs []ResourceID, appID AppID, action Action, subject SubjectFilter) ([]AccessPolicy, error) {
	ret := m.Called(ctx, resourceType, resourceIDs, appID, action, subject)
	var policies []AccessPolicy
	if r0 := ret.Get(0); r0 != nil {
		policies = r0.([]AccessPolicy)
	}
	return policies, ret.Error(1)
}

func (m *MockPolicyStore) FetchTypeLevelPolicies(ctx context.Context, resourceType ResourceType,
	appID AppID, action Action, subject SubjectFilter) ([]AccessPolicy, error) {
	ret := m.Called(ctx, resourceType, appID, action, subject)
	var policies []AccessPolicy
	if r0 := ret.Get(0); r0 != nil {
		policies = r0.([]AccessPolicy)
	}
	return policies, ret.Error(1)
}

var _ PolicyStoreInterface = (*MockPolicyStore)(nil)

// EngineTestSuite is the test suite for the authorization engine.
type EngineTestSuite struct {
	suite.Suite
	mockCatalog  *MockCatalog
	mockPolicies *MockPolicyStore
	engine       AuthorizationEngineInterface

	subject *FilezUser
	app     *MowsApp
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) SetupTest() {
	suite.mockCatalog = new(MockCatalog)
	suite.mockPolicies = new(MockPolicyStore)
	suite.engine = NewAuthorizationEngine(suite.mockCatalog, suite.mockPolicies)

	suite.subject = &FilezUser{ID: NewUserID(), Type: UserTypeRegular}
	suite.app = &MowsApp{ID: NewAppID(), Name: "test-app", Trusted: false}
}

// sequentialResourceID returns a ResourceID with a fixed, ordered UUID so that
// ascending-id tie-breaking is predictable in tests.
func sequentialResourceID(n int) ResourceID {
	return ResourceID{uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))}
}

func sequentialPolicyID(n int) AccessPolicyID {
	return AccessPolicyID{uuid.MustParse(fmt.Sprintf("11111111-0000-0000-0000-%012d", n))}
}

func ownerRow(id ResourceID, owner UserID) ResourceOwner {
	ownerID := owner
	return ResourceOwner{ResourceID: id, OwnerID: &ownerID}
}

func directPolicy(id AccessPolicyID, resourceID ResourceID, effect AccessPolicyEffect,
	subjectType AccessPolicySubjectType, subjectID uuid.UUID) AccessPolicy {
	rid := resourceID
	return AccessPolicy{
		ID:           id,
		Effect:       effect,
		ResourceType: ResourceTypeFile,
		ResourceID:   &rid,
		SubjectType:  subjectType,
		SubjectID:    subjectID,
	}
}

// ---------------------------------------------------------------------------
// Short-circuits and input validation
// ---------------------------------------------------------------------------

func (suite *EngineTestSuite) TestSuperAdminShortCircuit() {
	superAdmin := &FilezUser{ID: NewUserID(), Type: UserTypeSuperAdmin}
	ids := []ResourceID{sequentialResourceID(1), sequentialResourceID(2)}

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), superAdmin, nil,
		suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(svcErr)
	suite.True(result.AccessGranted)
	suite.Len(result.Evaluations, 2)
	for i, evaluation := range result.Evaluations {
		suite.True(evaluation.IsAllowed)
		suite.Equal(AuthReasonSuperAdmin, evaluation.Reason.Kind)
		suite.Equal(ids[i], *evaluation.ResourceID)
	}

	// No catalog or policy lookups may occur.
	suite.mockCatalog.AssertNotCalled(suite.T(), "FetchOwners")
	suite.mockCatalog.AssertNotCalled(suite.T(), "FetchGroupMemberships")
	suite.mockPolicies.AssertNotCalled(suite.T(), "FetchPoliciesForResources")
	suite.mockPolicies.AssertNotCalled(suite.T(), "FetchTypeLevelPolicies")
}

func (suite *EngineTestSuite) TestSuperAdminTypeLevel() {
	superAdmin := &FilezUser{ID: NewUserID(), Type: UserTypeSuperAdmin}

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), superAdmin, nil,
		suite.app, ResourceTypeFile, nil, ActionFilezFilesCreate)

	suite.Nil(svcErr)
	suite.True(result.AccessGranted)
	suite.Len(result.Evaluations, 1)
	suite.Nil(result.Evaluations[0].ResourceID)
	suite.Equal(AuthReasonSuperAdmin, result.Evaluations[0].Reason.Kind)
	suite.mockPolicies.AssertNotCalled(suite.T(), "FetchTypeLevelPolicies")
}

func (suite *EngineTestSuite) TestEmptyResourceIDs() {
	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, []ResourceID{}, ActionFilezFilesGet)

	suite.Nil(result)
	suite.Require().NotNil(svcErr)
	suite.Equal(ErrorNoResourceIDs.Code, svcErr.Code)
	suite.mockCatalog.AssertNotCalled(suite.T(), "FetchOwners")
}

func (suite *EngineTestSuite) TestUnknownResourceType() {
	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceType("Bogus"), []ResourceID{sequentialResourceID(1)}, ActionFilezFilesGet)

	suite.Nil(result)
	suite.Require().NotNil(svcErr)
	suite.Equal(ErrorUnknownResourceType.Code, svcErr.Code)
}

func (suite *EngineTestSuite) TestTrustedOwnerFastPath() {
	ids := []ResourceID{sequentialResourceID(1), sequentialResourceID(2)}
	trustedApp := &MowsApp{ID: suite.app.ID, Name: "trusted-app", Trusted: true}

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return([]ResourceOwner{
			ownerRow(ids[0], suite.subject.ID),
			ownerRow(ids[1], suite.subject.ID),
		}, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		trustedApp, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(svcErr)
	suite.True(result.AccessGranted)
	for _, evaluation := range result.Evaluations {
		suite.True(evaluation.IsAllowed)
		suite.Equal(AuthReasonOwned, evaluation.Reason.Kind)
	}

	// The fast path stops after the single owners query.
	suite.mockCatalog.AssertNumberOfCalls(suite.T(), "FetchOwners", 1)
	suite.mockCatalog.AssertNotCalled(suite.T(), "FetchGroupMemberships")
	suite.mockPolicies.AssertNotCalled(suite.T(), "FetchPoliciesForResources")
}

func (suite *EngineTestSuite) TestTrustedFastPathRequiresAllOwned() {
	ids := []ResourceID{sequentialResourceID(1), sequentialResourceID(2)}
	trustedApp := &MowsApp{ID: suite.app.ID, Name: "trusted-app", Trusted: true}
	otherUser := NewUserID()

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return([]ResourceOwner{
			ownerRow(ids[0], suite.subject.ID),
			ownerRow(ids[1], otherUser),
		}, nil)
	suite.mockCatalog.On("FetchGroupMemberships", mock.Anything, ResourceTypeFile, ids).
		Return(nil, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFile, ids,
		suite.app.ID, ActionFilezFilesGet, mock.Anything).Return(nil, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		trustedApp, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(svcErr)
	suite.False(result.AccessGranted)
	suite.Equal(AuthReasonOwned, result.Evaluations[0].Reason.Kind)
	suite.Equal(AuthReasonNoMatchingAllowPolicy, result.Evaluations[1].Reason.Kind)
}

// ---------------------------------------------------------------------------
// Batch evaluation ladder
// ---------------------------------------------------------------------------

// Scenario: untrusted app, first resource owned by the subject, second owned
// by somebody else with no applicable policy.
func (suite *EngineTestSuite) TestOwnedAndDefaultDeny() {
	ids := []ResourceID{sequentialResourceID(1), sequentialResourceID(2)}
	otherUser := NewUserID()

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return([]ResourceOwner{
			ownerRow(ids[0], suite.subject.ID),
			ownerRow(ids[1], otherUser),
		}, nil)
	suite.mockCatalog.On("FetchGroupMemberships", mock.Anything, ResourceTypeFile, ids).
		Return(nil, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFile, ids,
		suite.app.ID, ActionFilezFilesGet, mock.Anything).Return(nil, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(svcErr)
	suite.False(result.AccessGranted)
	suite.True(result.Evaluations[0].IsAllowed)
	suite.Equal(AuthReasonOwned, result.Evaluations[0].Reason.Kind)
	suite.False(result.Evaluations[1].IsAllowed)
	suite.Equal(AuthReasonNoMatchingAllowPolicy, result.Evaluations[1].Reason.Kind)
}

// Scenario: a public direct allow is overridden by a resource-group deny
// targeting the subject.
func (suite *EngineTestSuite) TestResourceGroupDenyOverridesDirectAllow() {
	resourceID := sequentialResourceID(3)
	groupID := sequentialResourceID(100)
	ids := []ResourceID{resourceID}
	allowPolicy := directPolicy(sequentialPolicyID(1), resourceID, AccessPolicyEffectAllow,
		SubjectTypePublic, uuid.Nil)
	denyPolicy := directPolicy(sequentialPolicyID(2), groupID, AccessPolicyEffectDeny,
		SubjectTypeUser, suite.subject.ID.UUID)
	denyPolicy.ResourceType = ResourceTypeFileGroup

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return([]ResourceOwner{ownerRow(resourceID, NewUserID())}, nil)
	suite.mockCatalog.On("FetchGroupMemberships", mock.Anything, ResourceTypeFile, ids).
		Return([]GroupMembership{{ResourceID: resourceID, GroupID: groupID}}, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFile, ids,
		suite.app.ID, ActionFilezFilesGet, mock.Anything).Return([]AccessPolicy{allowPolicy}, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFileGroup,
		[]ResourceID{groupID}, suite.app.ID, ActionFilezFilesGet, mock.Anything).
		Return([]AccessPolicy{denyPolicy}, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(svcErr)
	suite.False(result.AccessGranted)
	evaluation := result.Evaluations[0]
	suite.False(evaluation.IsAllowed)
	suite.Equal(AuthReasonDeniedByResourceGroupUserPolicy, evaluation.Reason.Kind)
	suite.Equal(denyPolicy.ID, *evaluation.Reason.PolicyID)
	suite.Equal(groupID, *evaluation.Reason.OnResourceGroupID)
}

// A direct deny beats ownership: deny policies take precedence over every
// allow path, and Public denies report the corrected DeniedBy reason.
func (suite *EngineTestSuite) TestDirectDenyOverridesOwnership() {
	resourceID := sequentialResourceID(4)
	ids := []ResourceID{resourceID}
	denyPolicy := directPolicy(sequentialPolicyID(1), resourceID, AccessPolicyEffectDeny,
		SubjectTypePublic, uuid.Nil)

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return([]ResourceOwner{ownerRow(resourceID, suite.subject.ID)}, nil)
	suite.mockCatalog.On("FetchGroupMemberships", mock.Anything, ResourceTypeFile, ids).
		Return(nil, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFile, ids,
		suite.app.ID, ActionFilezFilesGet, mock.Anything).Return([]AccessPolicy{denyPolicy}, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(svcErr)
	suite.False(result.AccessGranted)
	suite.Equal(AuthReasonDeniedByPubliclyAccessible, result.Evaluations[0].Reason.Kind)
	suite.Equal(denyPolicy.ID, *result.Evaluations[0].Reason.PolicyID)
}

func (suite *EngineTestSuite) TestDirectAllowViaUserGroup() {
	resourceID := sequentialResourceID(5)
	ids := []ResourceID{resourceID}
	groupID := NewUserGroupID()
	allowPolicy := directPolicy(sequentialPolicyID(1), resourceID, AccessPolicyEffectAllow,
		SubjectTypeUserGroup, groupID.UUID)

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return([]ResourceOwner{ownerRow(resourceID, NewUserID())}, nil)
	suite.mockCatalog.On("FetchGroupMemberships", mock.Anything, ResourceTypeFile, ids).
		Return(nil, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFile, ids,
		suite.app.ID, ActionFilezFilesGet, mock.Anything).Return([]AccessPolicy{allowPolicy}, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject,
		[]UserGroupID{groupID}, suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(svcErr)
	suite.True(result.AccessGranted)
	evaluation := result.Evaluations[0]
	suite.Equal(AuthReasonAllowedByDirectUserGroupPolicy, evaluation.Reason.Kind)
	suite.Equal(groupID, *evaluation.Reason.ViaUserGroupID)
}

func (suite *EngineTestSuite) TestResourceGroupAllow() {
	resourceID := sequentialResourceID(6)
	groupID := sequentialResourceID(101)
	ids := []ResourceID{resourceID}
	userGroupID := NewUserGroupID()
	allowPolicy := directPolicy(sequentialPolicyID(1), groupID, AccessPolicyEffectAllow,
		SubjectTypeUserGroup, userGroupID.UUID)
	allowPolicy.ResourceType = ResourceTypeFileGroup

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return([]ResourceOwner{ownerRow(resourceID, NewUserID())}, nil)
	suite.mockCatalog.On("FetchGroupMemberships", mock.Anything, ResourceTypeFile, ids).
		Return([]GroupMembership{{ResourceID: resourceID, GroupID: groupID}}, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFile, ids,
		suite.app.ID, ActionFilezFilesGet, mock.Anything).Return(nil, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFileGroup,
		[]ResourceID{groupID}, suite.app.ID, ActionFilezFilesGet, mock.Anything).
		Return([]AccessPolicy{allowPolicy}, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject,
		[]UserGroupID{userGroupID}, suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(svcErr)
	suite.True(result.AccessGranted)
	evaluation := result.Evaluations[0]
	suite.Equal(AuthReasonAllowedByResourceGroupUserGroupPolicy, evaluation.Reason.Kind)
	suite.Equal(userGroupID, *evaluation.Reason.ViaUserGroupID)
	suite.Equal(groupID, *evaluation.Reason.OnResourceGroupID)
}

// The first denying group in ascending id order wins when several groups deny.
func (suite *EngineTestSuite) TestDeterministicGroupTieBreaking() {
	resourceID := sequentialResourceID(7)
	lowGroupID := sequentialResourceID(200)
	highGroupID := sequentialResourceID(201)
	ids := []ResourceID{resourceID}

	lowDeny := directPolicy(sequentialPolicyID(1), lowGroupID, AccessPolicyEffectDeny,
		SubjectTypePublic, uuid.Nil)
	lowDeny.ResourceType = ResourceTypeFileGroup
	highDeny := directPolicy(sequentialPolicyID(2), highGroupID, AccessPolicyEffectDeny,
		SubjectTypePublic, uuid.Nil)
	highDeny.ResourceType = ResourceTypeFileGroup

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return([]ResourceOwner{ownerRow(resourceID, NewUserID())}, nil)
	// Memberships are returned in descending order on purpose.
	suite.mockCatalog.On("FetchGroupMemberships", mock.Anything, ResourceTypeFile, ids).
		Return([]GroupMembership{
			{ResourceID: resourceID, GroupID: highGroupID},
			{ResourceID: resourceID, GroupID: lowGroupID},
		}, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFile, ids,
		suite.app.ID, ActionFilezFilesGet, mock.Anything).Return(nil, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFileGroup,
		[]ResourceID{lowGroupID, highGroupID}, suite.app.ID, ActionFilezFilesGet, mock.Anything).
		Return([]AccessPolicy{highDeny, lowDeny}, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(svcErr)
	suite.Equal(lowGroupID, *result.Evaluations[0].Reason.OnResourceGroupID)
	suite.Equal(lowDeny.ID, *result.Evaluations[0].Reason.PolicyID)
}

func (suite *EngineTestSuite) TestResourceNotFound() {
	existing := sequentialResourceID(8)
	missing := sequentialResourceID(9)
	ids := []ResourceID{existing, missing}

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return([]ResourceOwner{ownerRow(existing, suite.subject.ID)}, nil)
	suite.mockCatalog.On("FetchGroupMemberships", mock.Anything, ResourceTypeFile, ids).
		Return(nil, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFile, ids,
		suite.app.ID, ActionFilezFilesGet, mock.Anything).Return(nil, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(svcErr)
	suite.False(result.AccessGranted)
	suite.True(result.Evaluations[0].IsAllowed)
	suite.Equal(AuthReasonResourceNotFound, result.Evaluations[1].Reason.Kind)
	suite.NotNil(result.Verify())
}

// Anonymous callers can only be allowed through Public policies; the engine
// passes an anonymous subject filter to the store.
func (suite *EngineTestSuite) TestAnonymousCaller() {
	resourceID := sequentialResourceID(10)
	ids := []ResourceID{resourceID}
	allowPolicy := directPolicy(sequentialPolicyID(1), resourceID, AccessPolicyEffectAllow,
		SubjectTypePublic, uuid.Nil)

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return([]ResourceOwner{ownerRow(resourceID, NewUserID())}, nil)
	suite.mockCatalog.On("FetchGroupMemberships", mock.Anything, ResourceTypeFile, ids).
		Return(nil, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFile, ids,
		suite.app.ID, ActionFilezFilesGet,
		mock.MatchedBy(func(f SubjectFilter) bool { return f.IsAnonymous() })).
		Return([]AccessPolicy{allowPolicy}, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), nil, nil,
		suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(svcErr)
	suite.True(result.AccessGranted)
	suite.Equal(AuthReasonAllowedByPubliclyAccessible, result.Evaluations[0].Reason.Kind)
	suite.Nil(result.Verify())
}

// Resource types without resource groups skip the membership and group policy
// queries entirely.
func (suite *EngineTestSuite) TestNoResourceGroupQueriesForUngroupedTypes() {
	resourceID := sequentialResourceID(11)
	ids := []ResourceID{resourceID}

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFileGroup, ids).
		Return([]ResourceOwner{ownerRow(resourceID, suite.subject.ID)}, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFileGroup, ids,
		suite.app.ID, ActionFileGroupsGet, mock.Anything).Return(nil, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFileGroup, ids, ActionFileGroupsGet)

	suite.Nil(svcErr)
	suite.True(result.AccessGranted)
	suite.mockCatalog.AssertNotCalled(suite.T(), "FetchGroupMemberships")
}

// Resource types without an ownership column still establish existence; the
// trusted fast path and the ownership rung do not apply.
func (suite *EngineTestSuite) TestNoOwnerTypeExistence() {
	resourceID := sequentialResourceID(12)
	ids := []ResourceID{resourceID}
	trustedApp := &MowsApp{ID: suite.app.ID, Name: "trusted-app", Trusted: true}

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeStorageLocation, ids).
		Return([]ResourceOwner{{ResourceID: resourceID}}, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeStorageLocation, ids,
		suite.app.ID, ActionStorageLocationsGet, mock.Anything).Return(nil, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		trustedApp, ResourceTypeStorageLocation, ids, ActionStorageLocationsGet)

	suite.Nil(svcErr)
	suite.False(result.AccessGranted)
	suite.Equal(AuthReasonNoMatchingAllowPolicy, result.Evaluations[0].Reason.Kind)
}

// The trusted fast path may change reasons but never outcomes.
func (suite *EngineTestSuite) TestTrustedFastPathEquivalence() {
	ids := []ResourceID{sequentialResourceID(13), sequentialResourceID(14)}
	owners := []ResourceOwner{
		ownerRow(ids[0], suite.subject.ID),
		ownerRow(ids[1], suite.subject.ID),
	}

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).Return(owners, nil)
	suite.mockCatalog.On("FetchGroupMemberships", mock.Anything, ResourceTypeFile, ids).
		Return(nil, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFile, ids,
		suite.app.ID, ActionFilezFilesGet, mock.Anything).Return(nil, nil)

	slowResult, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)
	suite.Nil(svcErr)

	trustedApp := &MowsApp{ID: suite.app.ID, Name: "trusted-app", Trusted: true}
	fastResult, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		trustedApp, ResourceTypeFile, ids, ActionFilezFilesGet)
	suite.Nil(svcErr)

	suite.Equal(slowResult.AccessGranted, fastResult.AccessGranted)
	for i := range slowResult.Evaluations {
		suite.Equal(slowResult.Evaluations[i].IsAllowed, fastResult.Evaluations[i].IsAllowed)
	}
}

// The number of store calls is constant regardless of the batch size.
func (suite *EngineTestSuite) TestBoundedQueries() {
	ids := make([]ResourceID, 0, 50)
	owners := make([]ResourceOwner, 0, 50)
	memberships := make([]GroupMembership, 0, 50)
	groupID := sequentialResourceID(999)
	for i := 1; i <= 50; i++ {
		id := sequentialResourceID(i)
		ids = append(ids, id)
		owners = append(owners, ownerRow(id, NewUserID()))
		memberships = append(memberships, GroupMembership{ResourceID: id, GroupID: groupID})
	}

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).Return(owners, nil)
	suite.mockCatalog.On("FetchGroupMemberships", mock.Anything, ResourceTypeFile, ids).
		Return(memberships, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, mock.Anything, mock.Anything,
		suite.app.ID, ActionFilezFilesGet, mock.Anything).Return(nil, nil)

	_, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(svcErr)
	suite.mockCatalog.AssertNumberOfCalls(suite.T(), "FetchOwners", 1)
	suite.mockCatalog.AssertNumberOfCalls(suite.T(), "FetchGroupMemberships", 1)
	suite.mockPolicies.AssertNumberOfCalls(suite.T(), "FetchPoliciesForResources", 2)
}

// ---------------------------------------------------------------------------
// Type-level evaluation
// ---------------------------------------------------------------------------

// Scenario: a type-level deny targeting the subject beats a type-level public allow.
func (suite *EngineTestSuite) TestTypeLevelDenyPrecedence() {
	allowPolicy := AccessPolicy{
		ID:           sequentialPolicyID(1),
		Effect:       AccessPolicyEffectAllow,
		ResourceType: ResourceTypeFile,
		SubjectType:  SubjectTypePublic,
	}
	denyPolicy := AccessPolicy{
		ID:           sequentialPolicyID(2),
		Effect:       AccessPolicyEffectDeny,
		ResourceType: ResourceTypeFile,
		SubjectType:  SubjectTypeUser,
		SubjectID:    suite.subject.ID.UUID,
	}

	suite.mockPolicies.On("FetchTypeLevelPolicies", mock.Anything, ResourceTypeFile,
		suite.app.ID, ActionFilezFilesCreate, mock.Anything).
		Return([]AccessPolicy{allowPolicy, denyPolicy}, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, nil, ActionFilezFilesCreate)

	suite.Nil(svcErr)
	suite.False(result.AccessGranted)
	suite.Len(result.Evaluations, 1)
	evaluation := result.Evaluations[0]
	suite.Nil(evaluation.ResourceID)
	suite.Equal(AuthReasonDeniedByDirectUserPolicy, evaluation.Reason.Kind)
	suite.Equal(denyPolicy.ID, *evaluation.Reason.PolicyID)
	suite.mockCatalog.AssertNotCalled(suite.T(), "FetchOwners")
}

// ServerMember denies report the corrected DeniedByServerAccessible reason.
func (suite *EngineTestSuite) TestTypeLevelServerMemberDenyReason() {
	denyPolicy := AccessPolicy{
		ID:           sequentialPolicyID(1),
		Effect:       AccessPolicyEffectDeny,
		ResourceType: ResourceTypeFile,
		SubjectType:  SubjectTypeServerMember,
	}

	suite.mockPolicies.On("FetchTypeLevelPolicies", mock.Anything, ResourceTypeFile,
		suite.app.ID, ActionFilezFilesCreate, mock.Anything).
		Return([]AccessPolicy{denyPolicy}, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, nil, ActionFilezFilesCreate)

	suite.Nil(svcErr)
	suite.Equal(AuthReasonDeniedByServerAccessible, result.Evaluations[0].Reason.Kind)
}

func (suite *EngineTestSuite) TestTypeLevelAllow() {
	allowPolicy := AccessPolicy{
		ID:           sequentialPolicyID(1),
		Effect:       AccessPolicyEffectAllow,
		ResourceType: ResourceTypeFile,
		SubjectType:  SubjectTypeServerMember,
	}

	suite.mockPolicies.On("FetchTypeLevelPolicies", mock.Anything, ResourceTypeFile,
		suite.app.ID, ActionFilezFilesCreate, mock.Anything).
		Return([]AccessPolicy{allowPolicy}, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, nil, ActionFilezFilesCreate)

	suite.Nil(svcErr)
	suite.True(result.AccessGranted)
	suite.Equal(AuthReasonAllowedByServerAccessible, result.Evaluations[0].Reason.Kind)
}

func (suite *EngineTestSuite) TestTypeLevelNoMatchingPolicy() {
	suite.mockPolicies.On("FetchTypeLevelPolicies", mock.Anything, ResourceTypeFile,
		suite.app.ID, ActionFilezFilesCreate, mock.Anything).Return(nil, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, nil, ActionFilezFilesCreate)

	suite.Nil(svcErr)
	suite.False(result.AccessGranted)
	suite.Equal(AuthReasonNoMatchingAllowPolicy, result.Evaluations[0].Reason.Kind)
}

// ---------------------------------------------------------------------------
// Failure semantics
// ---------------------------------------------------------------------------

func (suite *EngineTestSuite) TestCatalogFailure() {
	ids := []ResourceID{sequentialResourceID(20)}
	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return(nil, errors.New("connection refused"))

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(result)
	suite.Require().NotNil(svcErr)
	suite.Equal(ErrorCatalogFailure.Code, svcErr.Code)
}

func (suite *EngineTestSuite) TestMembershipFetchFailure() {
	ids := []ResourceID{sequentialResourceID(21)}
	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return([]ResourceOwner{ownerRow(ids[0], NewUserID())}, nil)
	suite.mockCatalog.On("FetchGroupMemberships", mock.Anything, ResourceTypeFile, ids).
		Return(nil, errors.New("connection reset"))
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFile, ids,
		suite.app.ID, ActionFilezFilesGet, mock.Anything).Return(nil, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(result)
	suite.Require().NotNil(svcErr)
	suite.Equal(ErrorCatalogFailure.Code, svcErr.Code)
}

func (suite *EngineTestSuite) TestPolicyStoreFailure() {
	ids := []ResourceID{sequentialResourceID(22)}
	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return([]ResourceOwner{ownerRow(ids[0], NewUserID())}, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFile, ids,
		suite.app.ID, ActionFilezFilesGet, mock.Anything).
		Return(nil, errors.New("query timeout"))

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(result)
	suite.Require().NotNil(svcErr)
	suite.Equal(ErrorPolicyStoreFailure.Code, svcErr.Code)
}

func (suite *EngineTestSuite) TestMalformedPolicy() {
	ids := []ResourceID{sequentialResourceID(23)}
	malformed := AccessPolicy{
		ID:           sequentialPolicyID(1),
		Effect:       AccessPolicyEffectAllow,
		ResourceType: ResourceTypeFile,
		SubjectType:  SubjectTypePublic,
		// ResourceID missing on a policy fetched by resource id.
	}

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return([]ResourceOwner{ownerRow(ids[0], NewUserID())}, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFile, ids,
		suite.app.ID, ActionFilezFilesGet, mock.Anything).
		Return([]AccessPolicy{malformed}, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(result)
	suite.Require().NotNil(svcErr)
	suite.Equal(ErrorMalformedPolicy.Code, svcErr.Code)
}

// Deterministic policy ordering: with two denies on the same resource the
// lower policy id is recorded.
func (suite *EngineTestSuite) TestDeterministicPolicyOrdering() {
	resourceID := sequentialResourceID(24)
	ids := []ResourceID{resourceID}
	lowDeny := directPolicy(sequentialPolicyID(1), resourceID, AccessPolicyEffectDeny,
		SubjectTypePublic, uuid.Nil)
	highDeny := directPolicy(sequentialPolicyID(2), resourceID, AccessPolicyEffectDeny,
		SubjectTypePublic, uuid.Nil)

	suite.mockCatalog.On("FetchOwners", mock.Anything, ResourceTypeFile, ids).
		Return([]ResourceOwner{ownerRow(resourceID, NewUserID())}, nil)
	suite.mockCatalog.On("FetchGroupMemberships", mock.Anything, ResourceTypeFile, ids).
		Return(nil, nil)
	suite.mockPolicies.On("FetchPoliciesForResources", mock.Anything, ResourceTypeFile, ids,
		suite.app.ID, ActionFilezFilesGet, mock.Anything).
		Return([]AccessPolicy{highDeny, lowDeny}, nil)

	result, svcErr := suite.engine.CheckResourcesAccessControl(context.Background(), suite.subject, nil,
		suite.app, ResourceTypeFile, ids, ActionFilezFilesGet)

	suite.Nil(svcErr)
	suite.Equal(lowDeny.ID, *result.Evaluations[0].Reason.PolicyID)
}
