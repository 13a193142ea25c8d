package authz

import "errors"

var (
	// ErrStoreFailure wraps grant-store query errors surfaced by the
	// aggregator. Callers must treat it as deny, not as a bypass.
	ErrStoreFailure = errors.New("authz: grant store query failed")
)
