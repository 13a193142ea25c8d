package authz

import (
	"context"

	"github.com/google/uuid"
)

// GrantStore is the read-only port the aggregator queries. Implementations
// must be safe for concurrent use; read-committed visibility is sufficient
// (grants are read as of query time, never transactionally pinned).
type GrantStore interface {
	// IsTenantMember reports whether the user belongs to the tenant. The
	// aggregator uses it as the cheap fail-closed gate before any tenant
	// query.
	IsTenantMember(ctx context.Context, userID, tenantID uuid.UUID) (bool, error)

	// PlatformRoleIDs returns the ids of the caller's roles that are not
	// owned by any tenant.
	PlatformRoleIDs(ctx context.Context, userID uuid.UUID) ([]int64, error)

	// TenantRoleIDs returns the ids of the caller's roles owned by the
	// given tenant.
	TenantRoleIDs(ctx context.Context, userID, tenantID uuid.UUID) ([]int64, error)

	// RolePermissionCodes returns the permission codes attached to any of
	// the given roles. Order and duplicates are unspecified; the
	// aggregator normalizes.
	RolePermissionCodes(ctx context.Context, roleIDs []int64) ([]string, error)

	// GroupIDs returns the ids of every group the user is a member of.
	// Group membership is tenant-agnostic.
	GroupIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// AssignmentCodes returns the permission codes of Allow assignments in
	// the tenant whose subject matches the caller directly, any of the
	// given role subject ids, or any of the given groups.
	//
	// Deny assignments are stored but deliberately not folded in: the
	// granted set is additive, and subtractive deny would silently change
	// the meaning of every cached matrix and issued token claim.
	AssignmentCodes(ctx context.Context, tenantID, userID uuid.UUID, roleSubjectIDs, groupIDs []uuid.UUID) ([]string, error)
}
