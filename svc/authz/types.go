package authz

import (
	"github.com/google/uuid"

	"github.com/drawdeck/authzkit/pkg/subject"
)

// Scope is the breadth at which a permission requirement is evaluated.
type Scope string

const (
	// ScopePlatform evaluates against the caller's platform-wide grants.
	ScopePlatform Scope = "platform"
	// ScopeTenant evaluates against the caller's grants inside one tenant.
	ScopeTenant Scope = "tenant"
	// ScopeSelf restricts an operation to the caller's own identity; the
	// match itself runs against the platform grant surface.
	ScopeSelf Scope = "self"
)

// Requirement describes what a protected operation demands from the caller.
// TenantID is consulted only for ScopeTenant, TargetUserID only for
// ScopeSelf; leaving a required field zero fails the check.
type Requirement struct {
	Code         string
	Scope        Scope
	TenantID     uuid.UUID
	TargetUserID uuid.UUID
}

// Decision is the effect of an explicit permission assignment.
type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionDeny  Decision = "deny"
)

// Role is a named permission container, either platform-scoped
// (TenantID == uuid.Nil) or owned by one tenant.
type Role struct {
	ID       int64
	Name     string
	TenantID uuid.UUID
}

// Assignment is an explicit subject-based grant, independent of the
// role→permission link. ResourceNodeID, when set, narrows the grant to a
// subtree of the tenant's resource hierarchy.
type Assignment struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	Subject        subject.Subject
	Decision       Decision
	Code           string
	ResourceNodeID *uuid.UUID
}
