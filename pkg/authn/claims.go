package authn

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claim names for the non-registered fields. Kept short: the permissions
// claim in particular can grow large for heavily privileged users.
const (
	ClaimTenantID    = "tid"
	ClaimUserType    = "utp"
	ClaimPermissions = "prm"
)

// Claims is the JWT payload issued at login/refresh time. Subject holds the
// user id; Permissions holds the comma-separated permission codes computed by
// the granted-permission aggregator at token issuance.
type Claims struct {
	TenantID    string `json:"tid,omitempty"`
	UserType    string `json:"utp,omitempty"`
	Permissions string `json:"prm,omitempty"`
	jwt.RegisteredClaims
}

// Identity maps validated claims to the caller identity used by the
// evaluator and the token fast path.
func (c Claims) Identity() (Identity, error) {
	userID, err := uuid.Parse(strings.TrimSpace(c.Subject))
	if err != nil {
		return Identity{}, errors.Join(ErrInvalidClaims, err)
	}

	tenantID := uuid.Nil
	if tid := strings.TrimSpace(c.TenantID); tid != "" {
		tenantID, err = uuid.Parse(tid)
		if err != nil {
			return Identity{}, errors.Join(ErrInvalidClaims, err)
		}
	}

	return Identity{
		UserID:      userID,
		TenantID:    tenantID,
		Type:        UserType(c.UserType),
		Permissions: c.Permissions,
	}, nil
}

// NewClaims builds the claim set for an identity. The registered claims
// (expiry, issuer, etc.) are left for the token issuer to fill in.
func NewClaims(identity Identity) Claims {
	c := Claims{
		UserType:    string(identity.Type),
		Permissions: identity.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: identity.UserID.String(),
		},
	}
	if identity.TenantID != uuid.Nil {
		c.TenantID = identity.TenantID.String()
	}
	return c
}
