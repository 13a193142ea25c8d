package authn

import "github.com/google/uuid"

// UserType classifies platform accounts. Platform operators have no tenant;
// tenant admins and members always belong to exactly one tenant.
type UserType string

const (
	UserTypePlatform    UserType = "platform"
	UserTypeTenantAdmin UserType = "tenant_admin"
	UserTypeMember      UserType = "member"
)

// Identity is the authenticated caller as seen by the authorization engine.
// It is produced from a validated access token; a zero Identity means the
// request is anonymous.
type Identity struct {
	UserID   uuid.UUID
	TenantID uuid.UUID // uuid.Nil for platform users
	Type     UserType

	// Permissions is the raw comma-separated permission claim computed at
	// authentication time. It may lag behind the live grant stores until
	// the caller re-authenticates; the token lifetime bounds the staleness.
	Permissions string
}

// Authenticated reports whether the identity refers to a real user.
func (i Identity) Authenticated() bool {
	return i.UserID != uuid.Nil
}
