package authz

import (
	"strconv"

	"github.com/google/uuid"
)

// Cache key namespace. Every cached artifact of the engine lives under
// "authz:" so operational tooling can reason about it as one family.
const (
	userMatrixPrefix = "authz:user-matrix:"
	roleUsersPrefix  = "authz:role-users:"
	groupUsersPrefix = "authz:group-users:"
)

// UserMatrixKey is the cache key of a user's platform permission matrix. It
// is also the prefix of every per-tenant sub-key, which is what lets a
// single pattern delete drop all of a user's cached matrices at once.
func UserMatrixKey(userID uuid.UUID) string {
	return userMatrixPrefix + userID.String()
}

// TenantMatrixKey is the cache key of a user's permission matrix within one
// tenant. It extends UserMatrixKey so the user's matrix pattern covers it.
func TenantMatrixKey(userID, tenantID uuid.UUID) string {
	return UserMatrixKey(userID) + ":tenant:" + tenantID.String()
}

// UserMatrixPattern matches every cached matrix key belonging to the user.
func UserMatrixPattern(userID uuid.UUID) string {
	return UserMatrixKey(userID) + "*"
}

// AllMatricesPattern matches every cached matrix key of every user.
func AllMatricesPattern() string {
	return userMatrixPrefix + "*"
}

// RoleUsersKey is the secondary index set holding the ids of users whose
// grant set currently depends on the role.
func RoleUsersKey(roleID int64) string {
	return roleUsersPrefix + strconv.FormatInt(roleID, 10)
}

// GroupUsersKey is the secondary index set holding the ids of users whose
// grant set currently depends on the group.
func GroupUsersKey(groupID uuid.UUID) string {
	return groupUsersPrefix + groupID.String()
}
