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

package authz

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/my-own-web-services/filez/internal/system/database/client"
	dbmodel "github.com/my-own-web-services/filez/internal/system/database/model"
	"github.com/my-own-web-services/filez/internal/system/database/provider"
	dbutils "github.com/my-own-web-services/filez/internal/system/database/utils"
	"github.com/my-own-web-services/filez/internal/system/log"
)

const storeLoggerComponentName = "AuthorizationStore"

// sqlCatalog implements CatalogInterface over the filez database.
type sqlCatalog struct {
	dbProvider provider.DBProviderInterface
}

// NewSQLCatalog creates a catalog backed by the configured filez database.
func NewSQLCatalog() CatalogInterface {
	return &sqlCatalog{dbProvider: provider.NewDBProvider()}
}

// sqlPolicyStore implements PolicyStoreInterface over the filez database.
type sqlPolicyStore struct {
	dbProvider provider.DBProviderInterface
}

// NewSQLPolicyStore creates a policy store backed by the configured filez database.
func NewSQLPolicyStore() PolicyStoreInterface {
	return &sqlPolicyStore{dbProvider: provider.NewDBProvider()}
}

// NewSQLAuthorizationEngine wires the engine to the SQL catalog and policy store.
func NewSQLAuthorizationEngine() AuthorizationEngineInterface {
	return NewAuthorizationEngine(NewSQLCatalog(), NewSQLPolicyStore())
}

// FetchOwners fetches existence and ownership for all requested resources in a
// single query. For resource types without an ownership column a degenerate
// id-presence query establishes existence and OwnerID stays nil.
func (c *sqlCatalog) FetchOwners(ctx context.Context, resourceType ResourceType,
	ids []ResourceID) ([]ResourceOwner, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, storeLoggerComponentName))

	descriptor, ok := DescriptorFor(resourceType)
	if !ok {
		return nil, fmt.Errorf("no descriptor for resource type %s", resourceType)
	}
	if err := validateDescriptorIdentifiers(descriptor); err != nil {
		return nil, err
	}

	dbClient, err := c.dbProvider.GetDBClient(provider.DatabaseNameFilez)
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}
	defer closeClient(dbClient, logger)

	selectColumns := fmt.Sprintf("%s AS resource_id", descriptor.IDColumn)
	if descriptor.HasOwner() {
		selectColumns = fmt.Sprintf("%s AS resource_id, %s AS owner_id",
			descriptor.IDColumn, descriptor.OwnerColumn)
	}

	idClause, args := buildIDListClause(dbClient.DBType(), descriptor.IDColumn, ids, nil)
	query := dbmodel.DBQuery{
		ID: "ASQ-AUTHZ-001",
		Query: fmt.Sprintf("SELECT %s FROM %s WHERE %s",
			selectColumns, descriptor.Table, idClause),
	}

	rows, err := dbClient.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resource owners: %w", err)
	}

	owners := make([]ResourceOwner, 0, len(rows))
	for _, row := range rows {
		resourceUUID, err := rowUUID(row, "resource_id")
		if err != nil {
			return nil, fmt.Errorf("failed to parse owner row: %w", err)
		}
		owner := ResourceOwner{ResourceID: ResourceID{resourceUUID}}
		if descriptor.HasOwner() {
			ownerUUID, err := rowUUID(row, "owner_id")
			if err != nil {
				return nil, fmt.Errorf("failed to parse owner row: %w", err)
			}
			owner.OwnerID = &UserID{ownerUUID}
		}
		owners = append(owners, owner)
	}

	return owners, nil
}

// FetchGroupMemberships fetches the resource-group memberships of all
// requested resources in a single query over the membership relation.
func (c *sqlCatalog) FetchGroupMemberships(ctx context.Context, resourceType ResourceType,
	ids []ResourceID) ([]GroupMembership, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, storeLoggerComponentName))

	descriptor, ok := DescriptorFor(resourceType)
	if !ok {
		return nil, fmt.Errorf("no descriptor for resource type %s", resourceType)
	}
	if !descriptor.HasResourceGroups() {
		return nil, nil
	}
	if err := validateDescriptorIdentifiers(descriptor); err != nil {
		return nil, err
	}

	dbClient, err := c.dbProvider.GetDBClient(provider.DatabaseNameFilez)
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}
	defer closeClient(dbClient, logger)

	idClause, args := buildIDListClause(dbClient.DBType(),
		descriptor.GroupMembershipResourceIDColumn, ids, nil)
	query := dbmodel.DBQuery{
		ID: "ASQ-AUTHZ-002",
		Query: fmt.Sprintf("SELECT %s AS resource_id, %s AS group_id FROM %s WHERE %s",
			descriptor.GroupMembershipResourceIDColumn, descriptor.GroupMembershipGroupIDColumn,
			descriptor.GroupMembershipTable, idClause),
	}

	rows, err := dbClient.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group memberships: %w", err)
	}

	memberships := make([]GroupMembership, 0, len(rows))
	for _, row := range rows {
		resourceUUID, err := rowUUID(row, "resource_id")
		if err != nil {
			return nil, fmt.Errorf("failed to parse membership row: %w", err)
		}
		groupUUID, err := rowUUID(row, "group_id")
		if err != nil {
			return nil, fmt.Errorf("failed to parse membership row: %w", err)
		}
		memberships = append(memberships, GroupMembership{
			ResourceID: ResourceID{resourceUUID},
			GroupID:    ResourceID{groupUUID},
		})
	}

	return memberships, nil
}

// FetchPoliciesForResources fetches the policies speaking about any of the
// given resources, filtered by app context, action and subject relevance, in a
// single query ordered by ascending policy id.
func (s *sqlPolicyStore) FetchPoliciesForResources(ctx context.Context, resourceType ResourceType,
	resourceIDs []ResourceID, appID AppID, action Action, subject SubjectFilter) ([]AccessPolicy, error) {
	return s.fetchPolicies(ctx, resourceType, resourceIDs, appID, action, subject)
}

// FetchTypeLevelPolicies fetches the policies with no resource id for the
// given resource type, filtered by app context, action and subject relevance.
func (s *sqlPolicyStore) FetchTypeLevelPolicies(ctx context.Context, resourceType ResourceType,
	appID AppID, action Action, subject SubjectFilter) ([]AccessPolicy, error) {
	return s.fetchPolicies(ctx, resourceType, nil, appID, action, subject)
}

// fetchPolicies builds and runs the policy fetch. A nil resourceIDs slice
// selects type-level policies (resource_id IS NULL).
func (s *sqlPolicyStore) fetchPolicies(ctx context.Context, resourceType ResourceType,
	resourceIDs []ResourceID, appID AppID, action Action, subject SubjectFilter) ([]AccessPolicy, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, storeLoggerComponentName))

	dbClient, err := s.dbProvider.GetDBClient(provider.DatabaseNameFilez)
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}
	defer closeClient(dbClient, logger)

	dbType := dbClient.DBType()
	args := make([]interface{}, 0, 8)
	conditions := make([]string, 0, 5)

	if resourceIDs == nil {
		conditions = append(conditions, "resource_id IS NULL")
	} else {
		clause, clauseArgs := buildIDListClause(dbType, "resource_id", resourceIDs, args)
		conditions = append(conditions, clause)
		args = clauseArgs
	}

	conditions = append(conditions, fmt.Sprintf("resource_type = %s", nextPlaceholder(dbType, &args, string(resourceType))))
	conditions = append(conditions, buildArrayContainsClause(dbType, &args, "context_app_ids", appID.String(), true))
	conditions = append(conditions, buildArrayContainsClause(dbType, &args, "actions", string(action), false))
	conditions = append(conditions, buildSubjectClause(dbType, &args, subject))

	query := dbmodel.DBQuery{
		ID: "ASQ-AUTHZ-003",
		Query: fmt.Sprintf("SELECT %s FROM access_policies WHERE %s ORDER BY id ASC",
			policySelectColumns(dbType), strings.Join(conditions, " AND ")),
	}
	if resourceIDs == nil {
		query.ID = "ASQ-AUTHZ-004"
	}

	rows, err := dbClient.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch access policies: %w", err)
	}

	policies := make([]AccessPolicy, 0, len(rows))
	for _, row := range rows {
		policy, err := buildPolicyFromResultRow(row)
		if err != nil {
			logger.Error("Failed to build access policy from result row", log.Error(err))
			return nil, fmt.Errorf("failed to build access policy from result row: %w", err)
		}
		policies = append(policies, policy)
	}

	return policies, nil
}

// policySelectColumns returns the select list for policy fetches. Array
// columns are flattened to comma-separated text so that both backends produce
// the same row shape.
func policySelectColumns(dbType string) string {
	if dbType == "postgres" {
		return "id, name, owner_id, effect, resource_type, resource_id, subject_type, subject_id, " +
			"array_to_string(context_app_ids, ',') AS context_app_ids, " +
			"array_to_string(actions, ',') AS actions"
	}
	return "id, name, owner_id, effect, resource_type, resource_id, subject_type, subject_id, " +
		"context_app_ids, actions"
}

// buildIDListClause renders a bulk id filter: array binding on postgres, an
// expanded placeholder list on sqlite. It appends the bound values to args and
// returns the updated slice.
func buildIDListClause(dbType, column string, ids []ResourceID,
	args []interface{}) (string, []interface{}) {
	if dbType == "postgres" {
		idStrings := make([]string, 0, len(ids))
		for _, id := range ids {
			idStrings = append(idStrings, id.String())
		}
		args = append(args, pq.Array(idStrings))
		return fmt.Sprintf("%s = ANY($%d)", column, len(args)), args
	}

	placeholders := dbutils.SQLitePlaceholders(len(ids))
	for _, id := range ids {
		args = append(args, id.String())
	}
	return fmt.Sprintf("%s IN (%s)", column, placeholders), args
}

// nextPlaceholder appends the value to args and returns the matching
// placeholder token for the backend.
func nextPlaceholder(dbType string, args *[]interface{}, value interface{}) string {
	*args = append(*args, value)
	if dbType == "postgres" {
		return fmt.Sprintf("$%d", len(*args))
	}
	return "?"
}

// buildArrayContainsClause renders "column contains value". Postgres stores
// the column as a native array; sqlite stores it as comma-separated text and
// matches with delimiter-padded instr.
func buildArrayContainsClause(dbType string, args *[]interface{}, column, value string, isUUIDArray bool) string {
	placeholder := nextPlaceholder(dbType, args, value)
	if dbType == "postgres" {
		cast := "text[]"
		if isUUIDArray {
			cast = "uuid[]"
		}
		return fmt.Sprintf("%s @> ARRAY[%s]::%s", column, placeholder, cast)
	}
	return fmt.Sprintf("instr(',' || %s || ',', ',' || %s || ',') > 0", column, placeholder)
}

// buildSubjectClause renders the subject-relevance predicate. Anonymous
// callers see Public policies only; authenticated callers additionally match
// ServerMember, their own User policies and their groups' UserGroup policies.
func buildSubjectClause(dbType string, args *[]interface{}, subject SubjectFilter) string {
	if subject.IsAnonymous() {
		return "subject_type = 'Public'"
	}

	disjuncts := []string{
		"subject_type = 'Public'",
		"subject_type = 'ServerMember'",
		fmt.Sprintf("(subject_type = 'User' AND subject_id = %s)",
			nextPlaceholder(dbType, args, subject.UserID.String())),
	}

	if len(subject.UserGroupIDs) > 0 {
		if dbType == "postgres" {
			groupStrings := make([]string, 0, len(subject.UserGroupIDs))
			for _, groupID := range subject.UserGroupIDs {
				groupStrings = append(groupStrings, groupID.String())
			}
			*args = append(*args, pq.Array(groupStrings))
			disjuncts = append(disjuncts,
				fmt.Sprintf("(subject_type = 'UserGroup' AND subject_id = ANY($%d))", len(*args)))
		} else {
			placeholders := dbutils.SQLitePlaceholders(len(subject.UserGroupIDs))
			for _, groupID := range subject.UserGroupIDs {
				*args = append(*args, groupID.String())
			}
			disjuncts = append(disjuncts,
				fmt.Sprintf("(subject_type = 'UserGroup' AND subject_id IN (%s))", placeholders))
		}
	}

	return "(" + strings.Join(disjuncts, " OR ") + ")"
}

// buildPolicyFromResultRow constructs an AccessPolicy from a database result row.
func buildPolicyFromResultRow(row map[string]interface{}) (AccessPolicy, error) {
	policyUUID, err := rowUUID(row, "id")
	if err != nil {
		return AccessPolicy{}, err
	}
	ownerUUID, err := rowUUID(row, "owner_id")
	if err != nil {
		return AccessPolicy{}, err
	}
	name, err := rowString(row, "name")
	if err != nil {
		return AccessPolicy{}, err
	}
	effect, err := rowString(row, "effect")
	if err != nil {
		return AccessPolicy{}, err
	}
	resourceTypeValue, err := rowString(row, "resource_type")
	if err != nil {
		return AccessPolicy{}, err
	}
	subjectType, err := rowString(row, "subject_type")
	if err != nil {
		return AccessPolicy{}, err
	}

	policy := AccessPolicy{
		ID:           AccessPolicyID{policyUUID},
		Name:         name,
		OwnerID:      UserID{ownerUUID},
		Effect:       AccessPolicyEffect(effect),
		ResourceType: ResourceType(resourceTypeValue),
		SubjectType:  AccessPolicySubjectType(subjectType),
	}

	if row["resource_id"] != nil {
		resourceUUID, err := rowUUID(row, "resource_id")
		if err != nil {
			return AccessPolicy{}, err
		}
		policy.ResourceID = &ResourceID{resourceUUID}
	}

	if row["subject_id"] != nil {
		subjectUUID, err := rowUUID(row, "subject_id")
		if err != nil {
			return AccessPolicy{}, err
		}
		policy.SubjectID = subjectUUID
	}

	if appIDsValue, err := rowString(row, "context_app_ids"); err == nil && appIDsValue != "" {
		for _, raw := range strings.Split(appIDsValue, ",") {
			appUUID, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				return AccessPolicy{}, fmt.Errorf("failed to parse context app id '%s': %w", raw, err)
			}
			policy.ContextAppIDs = append(policy.ContextAppIDs, AppID{appUUID})
		}
	}

	if actionsValue, err := rowString(row, "actions"); err == nil && actionsValue != "" {
		for _, raw := range strings.Split(actionsValue, ",") {
			policy.Actions = append(policy.Actions, Action(strings.TrimSpace(raw)))
		}
	}

	return policy, nil
}

// validateDescriptorIdentifiers guards the identifiers interpolated into
// catalog queries. Descriptors are compile-time constants; this catches a bad
// edit before it reaches the database.
func validateDescriptorIdentifiers(descriptor ResourceDescriptor) error {
	identifiers := []string{descriptor.Table, descriptor.IDColumn}
	if descriptor.HasOwner() {
		identifiers = append(identifiers, descriptor.OwnerColumn)
	}
	if descriptor.HasResourceGroups() {
		identifiers = append(identifiers, descriptor.GroupMembershipTable,
			descriptor.GroupMembershipResourceIDColumn, descriptor.GroupMembershipGroupIDColumn)
	}
	for _, identifier := range identifiers {
		if err := dbutils.ValidateIdentifier(identifier); err != nil {
			return err
		}
	}
	return nil
}

// rowString extracts a string column from a result row, tolerating []byte values.
func rowString(row map[string]interface{}, column string) (string, error) {
	value, ok := row[column]
	if !ok || value == nil {
		return "", fmt.Errorf("column %s is missing", column)
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("failed to parse %s as string", column)
	}
}

// rowUUID extracts a UUID column from a result row.
func rowUUID(row map[string]interface{}, column string) (uuid.UUID, error) {
	raw, err := rowString(row, column)
	if err != nil {
		return uuid.Nil, err
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse %s as UUID: %w", column, err)
	}
	return parsed, nil
}

// closeClient closes a database client, logging a failure instead of masking
// the caller's error.
func closeClient(dbClient client.DBClientInterface, logger *log.Logger) {
	if err := dbClient.Close(); err != nil {
		logger.Error("Failed to close database client", log.Error(err))
	}
}
