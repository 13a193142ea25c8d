package authn

import "errors"

var (
	// ErrInvalidClaims is returned when token claims cannot be mapped to an
	// identity (bad subject, bad tenant id).
	ErrInvalidClaims = errors.New("authn: invalid token claims")

	// ErrNoIdentity is returned when the context carries no identity.
	ErrNoIdentity = errors.New("authn: no identity in context")
)
